package resolve

import (
	"context"
	"strings"

	"github.com/chriserikbarnes/medrecpro/internal/logfields"
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/observability"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// factorKeySep joins identifier value and system into the ledger's textual
// natural key for an unresolved contributing factor.
const factorKeySep = "|"

// resolveInteractions persists each issue element with its contributing
// factors and consequences. A factor references an identified substance by
// identifier; when no document has declared that substance yet the factor is
// skipped, recorded in the pending ledger, and retried later.
func (r *Resolver) resolveInteractions(ctx context.Context, sectionID int64, sectionNode *markup.Node, rep *report.Report) error {
	for _, issueNode := range sectionNode.Find("issue") {
		code := issueNode.Child("code")
		if code == nil || code.Attr("code") == "" {
			rep.Warnf("interaction issue without code skipped")
			continue
		}

		issue := model.InteractionIssue{
			SectionID:       sectionID,
			InteractionCode: code.Attr("code"),
			CodeSystem:      code.Attr("codeSystem"),
		}
		if t := issueNode.Child("text"); t != nil {
			if text := t.FlattenText(); text != "" {
				issue.Text = &text
			}
		}
		persisted, created, err := store.GetOrCreateInteractionIssue(ctx, r.store, issue)
		if err != nil {
			return err
		}
		r.count(created, "interaction_issue", rep)

		for _, factor := range issueNode.ChildrenNamed("contributingFactor") {
			if err := r.resolveFactor(ctx, persisted, factor, rep); err != nil {
				return err
			}
		}
		for _, cons := range issueNode.ChildrenNamed("consequence") {
			if err := r.resolveConsequence(ctx, persisted, cons, rep); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Resolver) resolveFactor(ctx context.Context, issue model.InteractionIssue, factorNode *markup.Node, rep *report.Report) error {
	code := factorNode.Child("code")
	if code == nil || code.Attr("code") == "" {
		rep.Warnf("contributing factor without code on issue %s skipped", issue.InteractionCode)
		return nil
	}
	ident := model.SubstanceIdentifier{
		IdentifierValue:  code.Attr("code"),
		IdentifierSystem: code.Attr("codeSystem"),
	}

	substance, err := r.store.FindSubstanceByIdentifier(ctx, ident)
	if err != nil {
		return err
	}
	if substance.IsNone() {
		key := factorNaturalKey(ident)
		rep.Warnf("contributing factor %s not found for issue %s", ident.IdentifierValue, issue.InteractionCode)
		r.rec.RecordResolutionMiss(string(model.PendingInteractionFactor))
		observability.Warn(ctx, "interaction factor unresolved",
			logfields.RefKind(string(model.PendingInteractionFactor)),
			logfields.NaturalKey(key))
		return r.recordPending(ctx, model.PendingInteractionFactor, key, issue.ID, rep)
	}

	_, created, err := store.GetOrCreateContributingFactor(ctx, r.store, model.ContributingFactor{
		IssueID:           issue.ID,
		FactorSubstanceID: substance.MustGet().ID,
	})
	if err != nil {
		return err
	}
	r.count(created, "contributing_factor", rep)
	return nil
}

func (r *Resolver) resolveConsequence(ctx context.Context, issue model.InteractionIssue, consNode *markup.Node, rep *report.Report) error {
	value := consNode.Child("value")
	if value == nil || value.Attr("code") == "" {
		rep.Warnf("consequence without value on issue %s skipped", issue.InteractionCode)
		return nil
	}
	cons := model.InteractionConsequence{
		IssueID:              issue.ID,
		ConsequenceValueCode: value.Attr("code"),
		ConsequenceSystem:    optionalAttr(value, "codeSystem"),
		DisplayName:          optionalAttr(value, "displayName"),
	}
	_, created, err := store.GetOrCreateInteractionConsequence(ctx, r.store, cons)
	if err != nil {
		return err
	}
	r.count(created, "interaction_consequence", rep)
	return nil
}

func factorNaturalKey(ident model.SubstanceIdentifier) string {
	return ident.IdentifierValue + factorKeySep + ident.IdentifierSystem
}

func parseFactorKey(key string) (model.SubstanceIdentifier, bool) {
	value, system, ok := strings.Cut(key, factorKeySep)
	if !ok || value == "" {
		return model.SubstanceIdentifier{}, false
	}
	return model.SubstanceIdentifier{IdentifierValue: value, IdentifierSystem: system}, true
}

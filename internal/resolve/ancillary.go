package resolve

import (
	"context"
	"regexp"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// nctPattern is the registry format for a clinical trial identifier. A
// malformed identifier is never persisted.
var nctPattern = regexp.MustCompile(`^NCT\d{8}$`)

// resolveAncillary persists clinical trial links from protocol elements and
// billing unit links from policy elements.
func (r *Resolver) resolveAncillary(ctx context.Context, sectionID int64, sectionNode *markup.Node, rep *report.Report) error {
	for _, protocol := range sectionNode.Find("protocol") {
		id := protocol.Child("id")
		if id == nil || id.Attr("extension") == "" {
			rep.Warnf("protocol without trial identifier skipped")
			continue
		}
		trial := id.Attr("extension")
		if !nctPattern.MatchString(trial) {
			rep.Warnf("malformed trial identifier %q skipped", trial)
			continue
		}
		_, created, err := store.GetOrCreateClinicalTrialLink(ctx, r.store, model.ClinicalTrialLink{
			SectionID:       sectionID,
			TrialIdentifier: trial,
			Registry:        optionalAttr(id, "root"),
		})
		if err != nil {
			return err
		}
		r.count(created, "clinical_trial_link", rep)
	}

	for _, policy := range sectionNode.Find("policy") {
		code := policy.Child("code")
		if code == nil || code.Attr("code") == "" {
			rep.Warnf("billing policy without code skipped")
			continue
		}
		link := model.BillingUnitLink{
			SectionID:       sectionID,
			BillingUnitCode: code.Attr("code"),
		}
		if pkg := policy.Child("packageCode"); pkg != nil {
			link.PackageCode = optionalAttr(pkg, "code")
		}
		_, created, err := store.GetOrCreateBillingUnitLink(ctx, r.store, link)
		if err != nil {
			return err
		}
		r.count(created, "billing_unit_link", rep)
	}
	return nil
}

// Package section orchestrates the per-section pipeline: validate the
// section's declared identity, persist the Section record, build the content
// tree, run index resolution, and recurse into nested sections. No failure
// escapes the orchestrator: every error is captured, logged with its
// correlation fields, and folded into the aggregated report, so a broken
// section never takes its siblings down with it.
package section

import (
	"context"
	"fmt"

	"github.com/chriserikbarnes/medrecpro/internal/content"
	"github.com/chriserikbarnes/medrecpro/internal/errors"
	"github.com/chriserikbarnes/medrecpro/internal/logfields"
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/metrics"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/observability"
	"github.com/chriserikbarnes/medrecpro/internal/progress"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/resolve"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// Orchestrator drives the section pipeline. One orchestrator serves a whole
// ingestion run.
type Orchestrator struct {
	store    store.Store
	content  *content.Builder
	resolver *resolve.Resolver
	rec      metrics.Recorder
	prog     progress.Reporter
}

// NewOrchestrator wires the section pipeline over the given store. Nil
// recorder and reporter default to no-ops.
func NewOrchestrator(s store.Store, rec metrics.Recorder, prog progress.Reporter) *Orchestrator {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if prog == nil {
		prog = progress.Noop{}
	}
	return &Orchestrator{
		store:    s,
		content:  content.NewBuilder(s, rec),
		resolver: resolve.NewResolver(s, rec),
		rec:      rec,
		prog:     prog,
	}
}

// Process runs the pipeline for one section element and recurses into its
// nested sections. documentID scopes every record; parentID is nil for
// top-level sections; seq is the section's 1-based position among its
// persisted siblings. Failures are recorded in rep, never returned.
func (o *Orchestrator) Process(ctx context.Context, documentID int64, parentID *int64, seq int, node *markup.Node, rep *report.Report) {
	defer func() {
		if p := recover(); p != nil {
			err := errors.NewRuntime(fmt.Sprintf("panic during section processing: %v", p), nil)
			observability.Error(ctx, "section processing panicked", logfields.Error(err))
			rep.Errorf("%s", err.Error())
			o.rec.RecordSection(false)
		}
	}()

	sec, err := o.persistSection(ctx, documentID, parentID, seq, node, rep)
	if err != nil {
		observability.Error(ctx, "section rejected", logfields.Error(err))
		rep.Errorf("%s", err.Error())
		o.rec.RecordSection(false)
		return
	}
	ctx = observability.WithSection(ctx, sec.Code)
	o.prog.Step(ctx, "section %s", sec.SectionGUID)

	ok := true
	if text := node.Child("text"); text != nil {
		if err := o.content.BuildSectionContent(ctx, documentID, sec.ID, text, rep); err != nil {
			observability.Error(ctx, "content build failed", logfields.Error(err))
			rep.Errorf("content build failed for section %s: %v", sec.SectionGUID, err)
			ok = false
		}
	}
	if ok {
		if err := o.resolver.ResolveSection(ctx, documentID, sec.ID, node, rep); err != nil {
			observability.Error(ctx, "index resolution failed", logfields.Error(err))
			rep.Errorf("index resolution failed for section %s: %v", sec.SectionGUID, err)
			ok = false
		}
	}
	o.rec.RecordSection(ok)

	childSeq := 0
	for _, component := range node.ChildrenNamed("component") {
		child := component.Child("section")
		if child == nil {
			continue
		}
		childSeq++
		o.Process(ctx, documentID, &sec.ID, childSeq, child, rep)
	}
}

// persistSection validates the section's declared identity and finds or
// creates its record. A section without a GUID or code is fatal to the
// section.
func (o *Orchestrator) persistSection(ctx context.Context, documentID int64, parentID *int64, seq int, node *markup.Node, rep *report.Report) (model.Section, error) {
	id := node.Child("id")
	if id == nil || id.Attr("root") == "" {
		return model.Section{}, errors.NewContext("section without id root")
	}
	guid, err := model.NormalizeGUID(id.Attr("root"))
	if err != nil {
		return model.Section{}, errors.NewContext(err.Error())
	}
	code := node.Child("code")
	if code == nil || code.Attr("code") == "" {
		return model.Section{}, errors.NewContext("section without code")
	}

	sec := model.Section{
		DocumentID:     documentID,
		ParentID:       parentID,
		SectionGUID:    guid,
		Code:           code.Attr("code"),
		CodeSystem:     code.Attr("codeSystem"),
		SequenceNumber: seq,
	}
	if title := node.Child("title"); title != nil {
		if t := title.FlattenText(); t != "" {
			sec.Title = &t
		}
	}
	if et := node.Child("effectiveTime"); et != nil {
		if v := et.Attr("value"); v != "" {
			sec.EffectiveTime = &v
		}
	}

	persisted, created, err := store.GetOrCreateSection(ctx, o.store, sec)
	if err != nil {
		return model.Section{}, err
	}
	if created {
		rep.AddCreated(1)
		o.rec.RecordCreated("section")
	} else {
		o.rec.RecordDedupHit("section")
	}
	return persisted, nil
}

// Package ingest drives whole-document ingestion: parse the markup, persist
// the document record, register its media assets, process every section, and
// report the aggregated outcome. Documents are independent of each other; a
// failed file never stops the run.
package ingest

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/chriserikbarnes/medrecpro/internal/content"
	"github.com/chriserikbarnes/medrecpro/internal/errors"
	"github.com/chriserikbarnes/medrecpro/internal/events"
	"github.com/chriserikbarnes/medrecpro/internal/logfields"
	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/metrics"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/observability"
	"github.com/chriserikbarnes/medrecpro/internal/progress"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/resolve"
	"github.com/chriserikbarnes/medrecpro/internal/section"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// Options configures an Ingestor. Zero values disable the optional
// collaborators.
type Options struct {
	Recorder    metrics.Recorder
	Progress    progress.Reporter
	Publisher   events.Publisher
	AutoResolve bool
}

// Ingestor processes documents one at a time. One ingestor serves a whole
// run; RunID correlates every event it publishes.
type Ingestor struct {
	store       store.Store
	orch        *section.Orchestrator
	content     *content.Builder
	resolver    *resolve.Resolver
	rec         metrics.Recorder
	prog        progress.Reporter
	publisher   events.Publisher
	autoResolve bool
	runID       string
}

// NewIngestor wires the full pipeline over the given store.
func NewIngestor(s store.Store, opts Options) *Ingestor {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	prog := opts.Progress
	if prog == nil {
		prog = progress.Noop{}
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Ingestor{
		store:       s,
		orch:        section.NewOrchestrator(s, rec, prog),
		content:     content.NewBuilder(s, rec),
		resolver:    resolve.NewResolver(s, rec),
		rec:         rec,
		prog:        prog,
		publisher:   pub,
		autoResolve: opts.AutoResolve,
		runID:       uuid.NewString(),
	}
}

// RunID returns the run correlation identifier.
func (in *Ingestor) RunID() string { return in.runID }

// IngestFile parses and ingests one file. The returned report aggregates
// every created record, warning, and per-section error; the error return is
// reserved for failures that abort the whole document (unreadable file,
// malformed markup, missing document identity, store access).
func (in *Ingestor) IngestFile(ctx context.Context, path string) (report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Report{}, errors.NewConfig("cannot open input file", err)
	}
	defer f.Close()

	root, err := markup.Decode(f)
	if err != nil {
		return report.Report{}, errors.NewMarkup("malformed document markup", err)
	}
	return in.IngestDocument(ctx, path, root)
}

// IngestDocument ingests an already-decoded markup tree.
func (in *Ingestor) IngestDocument(ctx context.Context, fileName string, root *markup.Node) (report.Report, error) {
	started := time.Now()
	ctx = observability.WithFile(ctx, fileName)

	var rep report.Report
	doc, err := in.persistDocument(ctx, fileName, root, &rep)
	if err != nil {
		in.rec.RecordDocument(time.Since(started), false)
		return rep, err
	}
	ctx = observability.WithDocument(ctx, doc.DocumentGUID)
	in.prog.Step(ctx, "ingesting %s", fileName)

	if err := in.content.RegisterMediaAssets(ctx, doc.ID, root, &rep); err != nil {
		in.rec.RecordDocument(time.Since(started), false)
		return rep, err
	}

	seq := 0
	for _, node := range topLevelSections(root) {
		seq++
		in.orch.Process(ctx, doc.ID, nil, seq, node, &rep)
	}

	if in.autoResolve {
		if closed, err := in.resolver.ResolvePending(ctx, &rep); err != nil {
			rep.Errorf("pending resolution failed: %v", err)
		} else if closed > 0 {
			in.prog.Step(ctx, "closed %d pending references", closed)
		}
	}

	duration := time.Since(started)
	in.rec.RecordDocument(duration, rep.Success())
	observability.Info(ctx, "document ingested",
		logfields.Created(rep.Created),
		logfields.Warnings(len(rep.Warnings)),
		logfields.DurationMS(float64(duration.Milliseconds())))

	in.publish(ctx, doc, fileName, rep, duration)
	return rep, nil
}

// Resolve runs one pending-resolution pass over the whole store.
func (in *Ingestor) Resolve(ctx context.Context) (int, report.Report, error) {
	var rep report.Report
	closed, err := in.resolver.ResolvePending(ctx, &rep)
	return closed, rep, err
}

// persistDocument extracts the document's declared identity and finds or
// creates its record. A document without a GUID cannot be ingested.
func (in *Ingestor) persistDocument(ctx context.Context, fileName string, root *markup.Node, rep *report.Report) (model.Document, error) {
	id := root.Child("id")
	if id == nil || id.Attr("root") == "" {
		return model.Document{}, errors.NewContext("document without id root")
	}
	guid, err := model.NormalizeGUID(id.Attr("root"))
	if err != nil {
		return model.Document{}, errors.NewContext(err.Error())
	}
	doc := model.Document{
		DocumentGUID: guid,
		FileName:     fileName,
	}
	if setID := root.Child("setId"); setID != nil {
		if set, err := model.NormalizeGUID(setID.Attr("root")); err == nil {
			doc.SetGUID = set
		}
	}
	if vn := root.Child("versionNumber"); vn != nil {
		if n, err := strconv.Atoi(vn.Attr("value")); err == nil {
			doc.VersionNumber = n
		}
	}
	if code := root.Child("code"); code != nil {
		doc.Code = code.Attr("code")
		doc.CodeSystem = code.Attr("codeSystem")
	}
	if title := root.Child("title"); title != nil {
		if t := title.FlattenText(); t != "" {
			doc.Title = &t
		}
	}
	if et := root.Child("effectiveTime"); et != nil {
		if v := et.Attr("value"); v != "" {
			doc.EffectiveTime = &v
		}
	}

	persisted, created, err := store.GetOrCreateDocument(ctx, in.store, doc)
	if err != nil {
		return model.Document{}, err
	}
	if created {
		rep.AddCreated(1)
		in.rec.RecordCreated("document")
	} else {
		in.rec.RecordDedupHit("document")
	}
	return persisted, nil
}

// topLevelSections returns the document's top-level section elements:
// component/structuredBody/component/section.
func topLevelSections(root *markup.Node) []*markup.Node {
	var sections []*markup.Node
	for _, component := range root.ChildrenNamed("component") {
		for _, body := range component.ChildrenNamed("structuredBody") {
			for _, inner := range body.ChildrenNamed("component") {
				if sec := inner.Child("section"); sec != nil {
					sections = append(sections, sec)
				}
			}
		}
	}
	return sections
}

func (in *Ingestor) publish(ctx context.Context, doc model.Document, fileName string, rep report.Report, duration time.Duration) {
	err := in.publisher.PublishIngestCompleted(ctx, events.IngestCompletedEvent{
		RunID:        in.runID,
		DocumentGUID: doc.DocumentGUID,
		FileName:     fileName,
		Created:      rep.Created,
		Warnings:     len(rep.Warnings),
		Errors:       len(rep.Errors),
		Success:      rep.Success(),
		Duration:     duration,
	})
	if err != nil {
		observability.Warn(ctx, "event publish failed", logfields.Error(err))
	}
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/store"
)

// tracker mirrors a pipeline invocation into the run ledger. Ledger
// failures are logged and never fail the scrape.
type tracker struct {
	store store.Store
	runID string
	start time.Time
	log   *zap.Logger
}

func (p *Pipeline) begin(ctx context.Context, kind model.RunKind, input model.RunInput, runID string) *tracker {
	t := &tracker{store: p.store, runID: runID, start: time.Now(), log: zap.L().With(zap.String("kind", string(kind)))}
	if t.store == nil {
		return t
	}
	if runID == "" {
		run, err := t.store.CreateRun(ctx, kind, input)
		if err != nil {
			t.log.Warn("pipeline: create run failed", zap.Error(err))
			return t
		}
		t.runID = run.ID
	}
	t.log = t.log.With(zap.String("run_id", t.runID))
	return t
}

func (t *tracker) active() bool {
	return t.store != nil && t.runID != ""
}

func (t *tracker) status(ctx context.Context, s model.RunStatus) {
	if !t.active() {
		return
	}
	if err := t.store.UpdateRunStatus(ctx, t.runID, s); err != nil {
		t.log.Warn("pipeline: update run status failed", zap.String("status", string(s)), zap.Error(err))
	}
}

// finish exports when asked and there is something to write, then records
// results and the final status.
func (t *tracker) finish(ctx context.Context, p *Pipeline, res *Result, opts Options) (*Result, error) {
	res.RunID = t.runID

	var exportErr error
	switch {
	case opts.Export && len(res.Companies) == 0 && len(res.Jobs) == 0:
		t.log.Warn("pipeline: nothing scraped, skipping export")
	case opts.Export:
		t.status(ctx, model.RunStatusExporting)
		res.Files, exportErr = p.Export(res, opts.Format, opts.Filename)
	}

	result := &model.RunResult{
		Companies:  len(res.Companies),
		Jobs:       len(res.Jobs),
		Scrolls:    res.Scrolls,
		StopReason: res.StopReason,
		Files:      res.Files,
		DurationMs: time.Since(t.start).Milliseconds(),
	}
	if exportErr != nil {
		result.Error = exportErr.Error()
	}

	if t.active() {
		if err := t.store.SaveResults(ctx, t.runID, model.RunRecords{Companies: res.Companies, Jobs: res.Jobs}); err != nil {
			t.log.Warn("pipeline: save results failed", zap.Error(err))
		}
		record := t.store.CompleteRun
		if exportErr != nil {
			record = t.store.FailRun
		}
		if err := record(ctx, t.runID, result); err != nil {
			t.log.Warn("pipeline: record run result failed", zap.Error(err))
		}
	}

	t.log.Info("pipeline: run complete",
		zap.Int("companies", result.Companies),
		zap.Int("jobs", result.Jobs),
		zap.Int("scrolls", result.Scrolls),
		zap.Strings("files", result.Files),
		zap.Int64("duration_ms", result.DurationMs),
	)
	return res, exportErr
}

// Export writes res with the configured exporter. JSON produces one combined
// file; CSV and XLSX produce a companies file and, when there are jobs, a
// jobs file.
func (p *Pipeline) Export(res *Result, format export.Format, name string) ([]string, error) {
	if p.exporter == nil {
		return nil, eris.New("pipeline: export requested without an exporter")
	}
	if format == "" {
		format = export.FormatJSON
	}

	if format == export.FormatJSON {
		path, err := p.exporter.Combined(res.Companies, res.Jobs, format, name)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: export")
		}
		return []string{path}, nil
	}

	var files []string
	path, err := p.exporter.Companies(res.Companies, format, suffixed(name, "companies"))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: export companies")
	}
	files = append(files, path)

	if len(res.Jobs) > 0 {
		path, err := p.exporter.Jobs(res.Jobs, format, suffixed(name, "jobs"))
		if err != nil {
			return files, eris.Wrap(err, "pipeline: export jobs")
		}
		files = append(files, path)
	}
	return files, nil
}

func suffixed(name, kind string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s", name, kind)
}

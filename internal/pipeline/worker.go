package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tilbrook/vendex/internal/store"
	"github.com/tilbrook/vendex/internal/vendor"
)

// Worker processes a single document job end to end.
type Worker struct {
	proc  *Processor
	store *store.Client
	log   *slog.Logger
}

func NewWorker(proc *Processor, st *store.Client, log *slog.Logger) *Worker {
	return &Worker{proc: proc, store: st, log: log}
}

// Process runs extraction and the optional directory hand-off for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	job.SetStatus(StatusExtracting, "extracting")
	report, err := w.proc.Process(ctx, job.Request())
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetReport(report)
	log.Info("extraction complete",
		"vendors", len(report.Vendors),
		"warnings", len(report.Warnings),
		"confidence", report.Confidence)

	if w.store == nil || len(report.Vendors) == 0 {
		w.settle(job, report, false)
		return
	}

	job.SetStatus(StatusStoring, "storing")
	storeFailed := false
	if err := w.saveWithRetry(ctx, job, report.Vendors); err != nil {
		log.Error("directory hand-off failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		storeFailed = true
	} else {
		log.Info("directory hand-off complete", "vendors", len(report.Vendors))
	}
	w.settle(job, report, storeFailed)
}

// settle assigns the terminal status. A failed hand-off with a usable
// report is partial, not failed; the extraction results still stand.
func (w *Worker) settle(job *Job, report *vendor.Report, storeFailed bool) {
	switch {
	case storeFailed:
		job.SetStatus(StatusPartial, "done")
	case len(report.Warnings) > 0 && len(report.Vendors) == 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) saveWithRetry(ctx context.Context, job *Job, records []vendor.Record) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.store.SaveVendors(ctx, job.DocID, job.Filename, records)
		if lastErr == nil {
			return nil
		}
		w.log.Warn("retryable store error", "job_id", job.ID, "attempt", attempt, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Backoff(attempt)):
		}
	}
	return lastErr
}

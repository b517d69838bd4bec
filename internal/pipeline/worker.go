package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/promark/internal/metrics"
)

// Worker reads one dropped file at a time into the sink.
type Worker struct {
	sink     Sink
	log      *slog.Logger
	maxBytes int64
	metrics  *metrics.Metrics
}

func NewWorker(sink Sink, log *slog.Logger, maxBytes int64, m *metrics.Metrics) *Worker {
	return &Worker{sink: sink, log: log, maxBytes: maxBytes, metrics: m}
}

// Process reads the job's file and replaces the document with it. A failed
// read leaves the document untouched.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.FileName)

	f := job.File()
	if f == nil {
		return
	}

	job.SetStatus(StatusReading)
	doc, err := ReadDrop(ctx, f, w.maxBytes)
	if err != nil {
		log.Warn("dropped file read failed", "error", err)
		job.Fail(err)
		w.metrics.Drop("failed")
		return
	}

	w.sink.Replace(doc.Content, doc.FileName)
	job.SetStatus(StatusApplied)
	w.metrics.Drop("applied")
	log.Info("dropped file applied", "bytes", len(doc.Content))
}

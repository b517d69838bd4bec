package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/promark/internal/config"
	"github.com/dgallion1/promark/internal/metrics"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

// Sink receives documents read from dropped files. *document.State satisfies it.
type Sink interface {
	Replace(content, fileName string)
}

// Orchestrator runs dropped-file reads on a worker pool and hands the
// results to the sink. Reads are independent; the last one to finish wins.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	sink    Sink
	log     *slog.Logger
	cfg     config.Config
	metrics *metrics.Metrics

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to run workers.
func NewOrchestrator(cfg config.Config, sink Sink, log *slog.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, max(cfg.MaxQueueSize, 1)),
		sink:    sink,
		log:     log,
		cfg:     cfg,
		metrics: m,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range max(o.cfg.WorkerCount, 1) {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.sink, o.log, o.cfg.MaxUploadBytes, o.metrics)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job := <-o.queue:
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels the workers and waits for them. Jobs still queued stay queued.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	stopped := o.stopped
	o.mu.Unlock()
	if stopped {
		job.Fail(ErrStopped)
		return ErrStopped
	}

	select {
	case o.queue <- job:
		return nil
	default:
		err := fmt.Errorf("job queue is full (%d)", cap(o.queue))
		job.Fail(err)
		return err
	}
}

// AcceptDrop takes the first of files and, if its name is droppable, queues
// a read for it. Anything else is ignored without error.
func (o *Orchestrator) AcceptDrop(files []File) (*Job, bool) {
	if len(files) == 0 {
		return nil, false
	}
	f := files[0]
	if !Droppable(f.Name()) {
		o.log.Debug("drop ignored", "file", f.Name(), "files", len(files))
		o.metrics.Drop("rejected")
		return nil, false
	}

	job := NewJob(f)
	if err := o.Submit(job); err != nil {
		o.log.Warn("drop not queued", "job_id", job.ID, "file", job.FileName, "error", err)
		o.metrics.Drop("failed")
		return job, true
	}
	o.metrics.Drop("queued")
	o.log.Debug("drop queued", "job_id", job.ID, "file", job.FileName)
	return job, true
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a dropped-file read.
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusReading JobStatus = "reading"
	StatusApplied JobStatus = "applied"
	StatusFailed  JobStatus = "failed"
)

// Terminal reports whether no further transition follows s.
func (s JobStatus) Terminal() bool {
	return s == StatusApplied || s == StatusFailed
}

// Job tracks one accepted drop from queue to document.
type Job struct {
	mu sync.Mutex

	ID        string
	FileName  string
	Status    JobStatus
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time

	file     File
	done     chan struct{}
	doneOnce sync.Once
}

// NewJob returns a queued job for f.
func NewJob(f File) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		FileName:  f.Name(),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
		file:      f,
		done:      make(chan struct{}),
	}
}

// SetStatus updates job status atomically. Terminal statuses release the
// file and close Done.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	j.Status = status
	j.UpdatedAt = time.Now()
	if status.Terminal() {
		j.file = nil
	}
	j.mu.Unlock()

	if status.Terminal() {
		j.finish()
	}
}

// Fail marks the job failed with err.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	j.Error = err.Error()
	j.mu.Unlock()
	j.SetStatus(StatusFailed)
}

// File returns the file to read, or nil once the job is finished.
func (j *Job) File() File {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file
}

// Done is closed when the job reaches a terminal status.
func (j *Job) Done() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done == nil {
		j.done = make(chan struct{})
	}
	return j.done
}

func (j *Job) finish() {
	j.mu.Lock()
	if j.done == nil {
		j.done = make(chan struct{})
	}
	ch := j.done
	j.mu.Unlock()
	j.doneOnce.Do(func() { close(ch) })
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	FileName  string    `json:"file_name"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		FileName:  j.FileName,
		Status:    j.Status,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		snap := job.Snapshot()
		if snap.Status.Terminal() && now.Sub(snap.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

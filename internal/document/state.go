package document

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/promark/internal/metrics"
	"github.com/dgallion1/promark/internal/store"
)

// Options tune a State.
type Options struct {
	// PersistDebounce delays each write so bursts of edits collapse into one save.
	PersistDebounce time.Duration
	// Default replaces the built-in document when the store is empty.
	Default *Document
	Metrics *metrics.Metrics
}

// State is the single source of truth for the open document. All mutations
// go through it; every mutation schedules a write of the resulting pair.
type State struct {
	mu      sync.Mutex
	doc     Document
	rev     uint64
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool

	store    store.Store
	log      *slog.Logger
	metrics  *metrics.Metrics
	debounce time.Duration

	saveMu   sync.Mutex
	savedRev uint64

	dirty     chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// Open builds the state from the store, falling back to the default document
// when nothing (or only half a record) was persisted, and starts the writer.
func Open(ctx context.Context, st store.Store, log *slog.Logger, opts Options) *State {
	s := &State{
		subs:     make(map[int]chan Snapshot),
		store:    st,
		log:      log,
		metrics:  opts.Metrics,
		debounce: opts.PersistDebounce,
		dirty:    make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}

	s.doc = Default()
	if opts.Default != nil {
		s.doc = *opts.Default
	}

	rec, found, err := st.Load(ctx)
	switch {
	case err != nil:
		log.Warn("load document failed, using default", "error", err)
	case found:
		s.doc = Document{Content: rec.Content, FileName: rec.FileName}
		if s.doc.FileName == "" {
			s.doc.FileName = DefaultFileName
		}
		log.Debug("document restored", "file_name", s.doc.FileName, "bytes", len(s.doc.Content))
	default:
		log.Debug("no stored document, using default")
	}

	go s.run()
	return s
}

// Document returns the current document.
func (s *State) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Snapshot returns the current document and revision.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Document: s.doc, Revision: s.rev}
}

// SetContent replaces the text and keeps the file name.
func (s *State) SetContent(content string) {
	s.apply("set_content", func(d *Document) {
		d.Content = content
	})
}

// Replace swaps in a whole new document in one step.
func (s *State) Replace(content, fileName string) {
	s.apply("replace", func(d *Document) {
		*d = Document{Content: content, FileName: fileName}
	})
}

// Clear empties the document after c approves ClearPrompt. It reports whether
// the document was cleared; a nil or declining confirmer changes nothing.
func (s *State) Clear(ctx context.Context, c Confirmer) bool {
	if c == nil || !c.Confirm(ctx, ClearPrompt) {
		s.log.Debug("clear declined")
		return false
	}
	s.apply("clear", func(d *Document) {
		*d = Document{Content: "", FileName: DefaultFileName}
	})
	return true
}

// Subscribe returns a channel that always holds the newest snapshot, starting
// with the current one. Undelivered snapshots are replaced, never queued, so a
// slow reader cannot hold up mutations. cancel closes the channel.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	ch <- Snapshot{Document: s.doc, Revision: s.rev}
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Flush writes the current document if it changed since the last save.
func (s *State) Flush(ctx context.Context) {
	s.persist(ctx)
}

// Close stops the writer, writes any pending change and closes subscriptions.
func (s *State) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		close(s.done)
		select {
		case <-s.stopped:
		case <-ctx.Done():
		}
		s.persist(ctx)

		s.mu.Lock()
		s.closed = true
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	})
}

func (s *State) apply(op string, mutate func(*Document)) {
	s.mu.Lock()
	mutate(&s.doc)
	s.rev++
	s.publish(Snapshot{Document: s.doc, Revision: s.rev})
	s.mu.Unlock()

	s.metrics.Mutation(op)
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// publish must be called with s.mu held.
func (s *State) publish(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *State) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case <-s.dirty:
		}

		if s.debounce > 0 {
			timer := time.NewTimer(s.debounce)
			select {
			case <-timer.C:
			case <-s.done:
				timer.Stop()
				return
			}
		}
		s.persist(context.Background())
	}
}

func (s *State) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap := s.Snapshot()
	if snap.Revision == s.savedRev {
		return
	}

	err := s.store.Save(ctx, store.Record{Content: snap.Content, FileName: snap.FileName})
	if err != nil {
		s.metrics.PersistFailed()
		s.log.Warn("persist document failed", "error", err, "revision", snap.Revision)
		return
	}
	s.savedRev = snap.Revision
	s.metrics.Persisted()
}

package document

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/promark/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// restart closes s and opens a fresh State over the same store.
func restart(t *testing.T, s *State, st store.Store) *State {
	t.Helper()
	s.Close(context.Background())
	next := Open(context.Background(), st, discard(), Options{})
	t.Cleanup(func() { next.Close(context.Background()) })
	return next
}

func TestOpen_EmptyStoreUsesDefault(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})
	defer s.Close(context.Background())

	assert.Equal(t, Default(), s.Document())
	assert.Equal(t, DefaultFileName, s.Document().FileName)
}

func TestOpen_EmptyContentCountsAsStored(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), store.Record{Content: "", FileName: "empty.md"}))

	s := Open(context.Background(), st, discard(), Options{})
	defer s.Close(context.Background())

	assert.Equal(t, Document{Content: "", FileName: "empty.md"}, s.Document())
}

func TestOpen_EmptyStoredNameFallsBack(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), store.Record{Content: "text", FileName: ""}))

	s := Open(context.Background(), st, discard(), Options{})
	defer s.Close(context.Background())

	assert.Equal(t, Document{Content: "text", FileName: DefaultFileName}, s.Document())
}

func TestOpen_LoadErrorUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	s := Open(context.Background(), store.NewFileStore(path), discard(), Options{})
	defer s.Close(context.Background())

	assert.Equal(t, Default(), s.Document())
}

func TestSetContent_PersistsAcrossRestart(t *testing.T) {
	texts := []string{"# Hi", "", "multi\nline\n\ntext", "  leading and trailing  "}
	for _, text := range texts {
		st := store.NewFileStore(filepath.Join(t.TempDir(), "doc.yaml"))
		s := Open(context.Background(), st, discard(), Options{})
		s.SetContent(text)

		s = restart(t, s, st)
		assert.Equal(t, text, s.Document().Content)
		assert.Equal(t, DefaultFileName, s.Document().FileName)
	}
}

func TestReplace_TabIndentedSurvivesRestart(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "doc.yaml"))
	s := Open(context.Background(), st, discard(), Options{})
	s.Replace("\tindented first line\nrest\n", "notes.md")

	s = restart(t, s, st)
	assert.Equal(t, Document{Content: "\tindented first line\nrest\n", FileName: "notes.md"}, s.Document())
}

func TestScenario_DefaultThenEditThenRestart(t *testing.T) {
	st := store.NewMemoryStore()
	s := Open(context.Background(), st, discard(), Options{PersistDebounce: 10 * time.Millisecond})
	assert.Equal(t, Default(), s.Document())

	s.SetContent("# Hi")
	s = restart(t, s, st)

	assert.Equal(t, "# Hi", s.Document().Content)
}

func TestSetContent_KeepsFileName(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})
	defer s.Close(context.Background())

	s.Replace("a", "notes.md")
	s.SetContent("b")
	assert.Equal(t, Document{Content: "b", FileName: "notes.md"}, s.Document())
}

func TestSetContent_Idempotent(t *testing.T) {
	once := store.NewMemoryStore()
	twice := store.NewMemoryStore()

	a := Open(context.Background(), once, discard(), Options{})
	a.SetContent("same")
	a.Close(context.Background())

	b := Open(context.Background(), twice, discard(), Options{})
	b.SetContent("same")
	b.SetContent("same")
	b.Close(context.Background())

	gotOnce, _, _ := once.Load(context.Background())
	gotTwice, _, _ := twice.Load(context.Background())
	assert.Equal(t, gotOnce, gotTwice)
}

func TestReplace_IsAtomic(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})
	defer s.Close(context.Background())
	s.Replace("a", "a.md")

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			d := s.Document()
			// Content and name are always written as matching pairs below.
			if d.Content != "" && d.Content+".md" != d.FileName {
				t.Errorf("torn document: %+v", d)
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		name := string(rune('a' + i%26))
		s.Replace(name, name+".md")
	}
	close(stop)
	wg.Wait()
}

func TestClear(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})
		defer s.Close(context.Background())
		s.Replace("keep me", "keep.md")

		assert.False(t, s.Clear(context.Background(), Never))
		assert.False(t, s.Clear(context.Background(), nil))
		assert.Equal(t, Document{Content: "keep me", FileName: "keep.md"}, s.Document())
	})

	t.Run("confirmed", func(t *testing.T) {
		for _, start := range []Document{Default(), {Content: "x", FileName: "x.txt"}, {}} {
			s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})
			s.Replace(start.Content, start.FileName)

			assert.True(t, s.Clear(context.Background(), Always))
			assert.Equal(t, Document{Content: "", FileName: DefaultFileName}, s.Document())
			s.Close(context.Background())
		}
	})

	t.Run("prompt text", func(t *testing.T) {
		s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})
		defer s.Close(context.Background())

		var asked string
		s.Clear(context.Background(), ConfirmFunc(func(_ context.Context, prompt string) bool {
			asked = prompt
			return false
		}))
		assert.Equal(t, ClearPrompt, asked)
	})
}

func TestPersistFailure_KeepsMemoryState(t *testing.T) {
	st := store.NewMemoryStore()
	st.FailSaves(assert.AnError)

	s := Open(context.Background(), st, discard(), Options{})
	assert.NotPanics(t, func() {
		s.Replace("still here", "mem.md")
		s.Flush(context.Background())
	})
	assert.Equal(t, Document{Content: "still here", FileName: "mem.md"}, s.Document())

	// Recovery: the next flush writes the latest state.
	st.FailSaves(nil)
	s.Close(context.Background())
	rec, found, err := st.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, store.Record{Content: "still here", FileName: "mem.md"}, rec)
}

func TestDebounce_CoalescesBursts(t *testing.T) {
	st := store.NewMemoryStore()
	s := Open(context.Background(), st, discard(), Options{PersistDebounce: 50 * time.Millisecond})

	for i := 0; i < 20; i++ {
		s.SetContent(string(rune('a' + i)))
	}
	s.Close(context.Background())

	assert.LessOrEqual(t, st.Saves(), 2)
	rec, _, _ := st.Load(context.Background())
	assert.Equal(t, string(rune('a'+19)), rec.Content)
}

func TestWriter_PersistsWithoutClose(t *testing.T) {
	st := store.NewMemoryStore()
	s := Open(context.Background(), st, discard(), Options{})
	defer s.Close(context.Background())

	s.SetContent("background")
	require.Eventually(t, func() bool {
		rec, found, _ := st.Load(context.Background())
		return found && rec.Content == "background"
	}, time.Second, 5*time.Millisecond)
}

func TestFlush_SkipsUnchanged(t *testing.T) {
	st := store.NewMemoryStore()
	s := Open(context.Background(), st, discard(), Options{PersistDebounce: time.Hour})
	defer s.Close(context.Background())

	s.Flush(context.Background())
	assert.Equal(t, 0, st.Saves())

	s.SetContent("x")
	s.Flush(context.Background())
	s.Flush(context.Background())
	assert.Equal(t, 1, st.Saves())
}

func TestSubscribe(t *testing.T) {
	s := Open(context.Background(), store.NewMemoryStore(), discard(), Options{})

	ch, cancel := s.Subscribe()
	first := <-ch
	assert.Equal(t, Default(), first.Document)

	s.SetContent("one")
	s.SetContent("two")
	s.Replace("three", "3.md")

	latest := <-ch
	assert.Equal(t, Document{Content: "three", FileName: "3.md"}, latest.Document)
	assert.Greater(t, latest.Revision, first.Revision)

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	other, _ := s.Subscribe()
	s.Close(context.Background())
	<-other // current snapshot
	_, ok = <-other
	assert.False(t, ok, "close should end subscriptions")
}

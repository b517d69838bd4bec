package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/promark/internal/document"
	"github.com/dgallion1/promark/internal/render"
	"github.com/dgallion1/promark/internal/store"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := promptConfirmer(strings.NewReader(tt.input), &out)
		assert.Equal(t, tt.want, c.Confirm(context.Background(), document.ClearPrompt), "input %q", tt.input)
		assert.Contains(t, out.String(), document.ClearPrompt)
	}
}

func TestWriteOutline(t *testing.T) {
	tree := render.NewOutliner().Outline("# One\n\n## Two\n\n# Three")
	var buf bytes.Buffer
	require.NoError(t, writeOutline(&buf, tree, false))
	assert.Equal(t, "- One (#one)\n  - Two (#two)\n- Three (#three)\n", buf.String())

	buf.Reset()
	require.NoError(t, writeOutline(&buf, tree, true))
	assert.Contains(t, buf.String(), `"title":"One"`)
}

func TestStoredContent_Default(t *testing.T) {
	st := store.NewMemoryStore()
	content, err := storedContent(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, document.DefaultContent, content)
}

func TestWatchStore_FiresAfterSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "document.yaml")
	st := store.NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- watchStore(ctx, path, 20*time.Millisecond, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before the write.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, st.Save(ctx, store.Record{Content: "# Hi", FileName: "a.md"}))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-errc)
}

func TestWatchStore_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "document.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	fired := false
	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	}()
	require.NoError(t, watchStore(ctx, path, 10*time.Millisecond, func() { fired = true }))
	assert.False(t, fired)
}

func TestEditCommand_Persists(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "document.yaml")

	rootCmd.SetArgs([]string{"--store", path, "--driver", "file", "edit", "--content", "# Hi"})
	require.NoError(t, rootCmd.Execute())

	rec, found, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "# Hi", rec.Content)
	assert.Equal(t, document.DefaultFileName, rec.FileName)
}

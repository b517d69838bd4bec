package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/promark/internal/config"
)

// stores returns every durable implementation rooted in a fresh temp dir.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sq, err := OpenSQLite(context.Background(), filepath.Join(dir, "doc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "nested", "doc.yaml")),
		"sqlite": sq,
		"memory": NewMemoryStore(),
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	cases := []Record{
		{Content: "# Hi", FileName: "notes.md"},
		{Content: "", FileName: "Untitled.md"},
		{Content: "line one\n\n  indented: yes\n---\ntrailing spaces   \n", FileName: "weird: name.md"},
		{Content: "tab\tand unicode ✓ and \"quotes\"", FileName: ""},
	}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, rec := range cases {
				require.NoError(t, s.Save(ctx, rec))
				got, found, err := s.Load(ctx)
				require.NoError(t, err)
				require.True(t, found)
				assert.Equal(t, rec, got)
			}
		})
	}
}

func TestStore_RoundTripVerbatim(t *testing.T) {
	texts := []string{
		"\tindent\n\ttab",
		"\tindented first line\nrest\n",
		"\n\nlead",
		"\n",
		"\n\n\n",
		"trailing newlines\n\n\n",
		"  leading spaces",
		"- looks: like\n  yaml: [1, 2]",
		"\"quoted\" and 'single' and \\backslash",
		"crlf\r\nline\r\n",
		"null",
		"~",
		"# comment-looking heading",
		strings.Repeat("long line without breaks ", 40),
	}
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, text := range texts {
				rec := Record{Content: text, FileName: "\tnotes.md"}
				require.NoError(t, s.Save(ctx, rec))
				got, found, err := s.Load(ctx)
				require.NoError(t, err, "content %q", text)
				require.True(t, found, "content %q", text)
				assert.Equal(t, rec, got)
			}
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Save(ctx, Record{Content: "first", FileName: "a.md"}))
			require.NoError(t, s.Save(ctx, Record{Content: "second", FileName: "b.md"}))

			got, found, err := s.Load(ctx)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, Record{Content: "second", FileName: "b.md"}, got)
		})
	}
}

func TestFileStore_MissingKeyIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ContentKey+": hello\n"), 0o644))

	_, found, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not: [yaml"), 0o644))

	_, found, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
	assert.False(t, found)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "doc.yaml"))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(context.Background(), Record{Content: strings.Repeat("x", i), FileName: "x.md"}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover temp file %s", e.Name())
	}
	assert.Len(t, entries, 1)
}

func TestFileStore_SaveFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent "directory" is a regular file, so MkdirAll fails.
	s := NewFileStore(filepath.Join(blocker, "doc.yaml"))
	assert.Error(t, s.Save(context.Background(), Record{Content: "x", FileName: "x.md"}))
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewFileStore(filepath.Join(t.TempDir(), "doc.yaml"))
	assert.ErrorIs(t, s.Save(ctx, Record{}), context.Canceled)
}

func TestSQLiteStore_OneRowIsAbsent(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "doc.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.ExecContext(ctx, upsert, ContentKey, "orphan")
	require.NoError(t, err)

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_FailSaves(t *testing.T) {
	s := NewMemoryStore()
	s.FailSaves(assert.AnError)
	assert.ErrorIs(t, s.Save(context.Background(), Record{Content: "x"}), assert.AnError)
	assert.Equal(t, 0, s.Saves())

	s.FailSaves(nil)
	require.NoError(t, s.Save(context.Background(), Record{Content: "x", FileName: "x.md"}))
	assert.Equal(t, 1, s.Saves())
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, config.Config{StoreDriver: config.DriverFile, StorePath: filepath.Join(dir, "d.yaml")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, config.Config{StoreDriver: config.DriverSQLite, StorePath: filepath.Join(dir, "d.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	s.Close()

	_, err = Open(ctx, config.Config{StoreDriver: "etcd"})
	assert.Error(t, err)
}

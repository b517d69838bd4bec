package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TempFilePrefix is the prefix of the scratch file a save writes before
// renaming it over the store.
const TempFilePrefix = "promark-tmp-"

// FileStore keeps both records in one YAML file that is replaced atomically.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read store: %w", err)
	}

	var records map[string]string
	if err := yaml.Unmarshal(data, &records); err != nil {
		return Record{}, false, fmt.Errorf("decode store: %w", err)
	}

	content, hasContent := records[ContentKey]
	name, hasName := records[FileNameKey]
	if !hasContent || !hasName {
		return Record{}, false, nil
	}
	return Record{Content: content, FileName: name}, true, nil
}

func (s *FileStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return s.replace(data)
}

func (s *FileStore) Close() error { return nil }

// encodeRecord writes every value double-quoted. Plain and block scalars
// lose leading blank lines and reject leading tabs; quoted ones keep the
// text byte for byte.
func encodeRecord(rec Record) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range [][2]string{{ContentKey, rec.Content}, {FileNameKey, rec.FileName}} {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv[0]},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: kv[1]},
		)
	}
	return yaml.Marshal(doc)
}

// replace swaps data in for the store file. Readers see the old file or the
// new one, never a mix: the bytes go to a synced temp file in the same
// directory, which is then renamed over the store.
func (s *FileStore) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(name, 0o644)
	}
	if err == nil {
		err = os.Rename(name, s.path)
	}
	if err != nil {
		os.Remove(name)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

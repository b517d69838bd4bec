package store

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]string
	saveErr error
	saves   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

// FailSaves makes every following Save return err; nil restores normal saves.
func (s *MemoryStore) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns the number of successful saves.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) Load(ctx context.Context) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, hasContent := s.records[ContentKey]
	name, hasName := s.records[FileNameKey]
	if !hasContent || !hasName {
		return Record{}, false, nil
	}
	return Record{Content: content, FileName: name}, true, nil
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records[ContentKey] = rec.Content
	s.records[FileNameKey] = rec.FileName
	s.saves++
	return nil
}

func (s *MemoryStore) Close() error { return nil }

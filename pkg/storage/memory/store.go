package memory

import (
	"context"
	"sync"
)

// Store is a non-persistent credential store for local runs and tests.
type Store struct {
	mu   sync.RWMutex
	keys map[string]string
	tos  map[string]struct{}
}

func New() *Store {
	return &Store{
		keys: make(map[string]string),
		tos:  make(map[string]struct{}),
	}
}

func (s *Store) Key(_ context.Context, userID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[userID]
	return key, ok, nil
}

func (s *Store) SetKey(_ context.Context, userID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[userID] = key
	return nil
}

func (s *Store) RemoveKey(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[userID]
	delete(s.keys, userID)
	return ok, nil
}

func (s *Store) HasAcceptedTOS(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tos[userID]
	return ok, nil
}

func (s *Store) AcceptTOS(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tos[userID]; ok {
		return false, nil
	}
	s.tos[userID] = struct{}{}
	return true, nil
}

func (s *Store) Close() error { return nil }

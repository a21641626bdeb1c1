package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store keeps user keys and ToS acceptances in two JSON files.
// Every mutation rewrites the affected file in full.
type Store struct {
	keysPath string
	tosPath  string

	mu   sync.RWMutex
	keys map[string]string
	tos  map[string]struct{}
}

// Open loads both files. Missing files load as empty.
func Open(keysPath, tosPath string) (*Store, error) {
	s := &Store{
		keysPath: keysPath,
		tosPath:  tosPath,
		keys:     make(map[string]string),
		tos:      make(map[string]struct{}),
	}

	if err := readJSON(keysPath, &s.keys); err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	if s.keys == nil {
		s.keys = make(map[string]string)
	}

	var accepted []string
	if err := readJSON(tosPath, &accepted); err != nil {
		return nil, fmt.Errorf("load tos: %w", err)
	}
	for _, id := range accepted {
		s.tos[id] = struct{}{}
	}

	return s, nil
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

	prev, had := s.keys[userID]
	s.keys[userID] = key
	if err := writeJSON(s.keysPath, s.keys); err != nil {
		if had {
			s.keys[userID] = prev
		} else {
			delete(s.keys, userID)
		}
		return fmt.Errorf("save keys: %w", err)
	}
	return nil
}

func (s *Store) RemoveKey(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.keys[userID]
	if !had {
		return false, nil
	}
	delete(s.keys, userID)
	if err := writeJSON(s.keysPath, s.keys); err != nil {
		s.keys[userID] = prev
		return false, fmt.Errorf("save keys: %w", err)
	}
	return true, nil
}

func (s *Store) HasAcceptedTOS(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tos[userID]
	return ok, nil
}

// AcceptTOS returns false without touching the file when userID already accepted.
func (s *Store) AcceptTOS(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tos[userID]; ok {
		return false, nil
	}
	s.tos[userID] = struct{}{}

	accepted := make([]string, 0, len(s.tos))
	for id := range s.tos {
		accepted = append(accepted, id)
	}
	sort.Strings(accepted)

	if err := writeJSON(s.tosPath, accepted); err != nil {
		delete(s.tos, userID)
		return false, fmt.Errorf("save tos: %w", err)
	}
	return true, nil
}

func (s *Store) Close() error { return nil }

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// writeJSON replaces path atomically through a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

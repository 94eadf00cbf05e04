package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/spec-kit/recommendation-console/internal/domain"
)

// Storage is a durable key/value slot that survives process restarts.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store holds the raw session token in memory, backed by one durable slot.
// Tokens are stored verbatim; their shape is never checked here. An empty
// token is written through but counts as no token.
type Store struct {
	storage Storage
	key     string

	mu      sync.RWMutex
	token   string
	present bool
}

// NewStore seeds the in-memory token from the durable slot.
func NewStore(ctx context.Context, storage Storage) (*Store, error) {
	s := &Store{storage: storage, key: domain.TokenStorageKey}
	token, ok, err := storage.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s from storage: %w", s.key, err)
	}
	s.token, s.present = token, ok && token != ""
	return s, nil
}

// Get returns the in-memory token.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present
}

// Set persists token, then makes it the in-memory value. A failed durable
// write leaves the previous value in place.
func (s *Store) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, s.key, token); err != nil {
		return fmt.Errorf("persist %s: %w", s.key, err)
	}
	s.token, s.present = token, token != ""
	return nil
}

// Clear removes the token from durable storage, then from memory.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("delete %s: %w", s.key, err)
	}
	s.token, s.present = "", false
	return nil
}

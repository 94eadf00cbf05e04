package session_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/session"
)

var errStorageDown = errors.New("storage down")

// memStorage is an in-memory Storage with switchable failures.
type memStorage struct {
	mu        sync.Mutex
	values    map[string]string
	failGet   bool
	failSet   bool
	failClear bool
}

func newMemStorage() *memStorage {
	return &memStorage{values: map[string]string{}}
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errStorageDown
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errStorageDown
	}
	m.values[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failClear {
		return errStorageDown
	}
	delete(m.values, key)
	return nil
}

func (m *memStorage) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func tokenWithPayload(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}

func newTestSession(t *testing.T, storage session.Storage) *session.Session {
	t.Helper()
	store, err := session.NewStore(context.Background(), storage)
	require.NoError(t, err)
	return session.New(store, nil, zap.NewNop())
}

package worker_test

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/recommendation-console/internal/domain"
	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/service"
	"github.com/spec-kit/recommendation-console/internal/session"
	"github.com/spec-kit/recommendation-console/internal/worker"
)

type memStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func token(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func newSession(t *testing.T, seeded map[string]string) *session.Session {
	t.Helper()
	if seeded == nil {
		seeded = map[string]string{}
	}
	store, err := session.NewStore(context.Background(), &memStorage{values: seeded})
	require.NoError(t, err)
	return session.New(store, nil, zap.NewNop())
}

func TestSessionWatcherClearsBoardOnLogout(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, nil)
	board := service.NewRecommendationBoard()
	metrics := observability.NewMetrics()
	core, logs := observer.New(zap.InfoLevel)

	stop := worker.StartSessionWatcher(sess, board, metrics, zap.New(core))
	defer stop()
	assert.False(t, metrics.Snapshot().Authenticated)

	require.NoError(t, sess.Login(ctx, token(`{"sub":"recommender","roles":["ROLE_RECOMMENDER"]}`)))
	assert.True(t, metrics.Snapshot().Authenticated)
	require.Equal(t, 1, logs.FilterMessage("session started").Len())
	assert.Equal(t, "recommender", logs.FilterMessage("session started").All()[0].ContextMap()["subject"])

	board.Set([]domain.Item{{ID: "item4", Name: "Dune"}})
	require.NoError(t, sess.Logout(ctx))

	assert.Empty(t, board.Items())
	assert.False(t, metrics.Snapshot().Authenticated)
	assert.Equal(t, 1, logs.FilterMessage("session ended, recommendations cleared").Len())
}

func TestSessionWatcherSeedsGaugeFromRestoredSession(t *testing.T) {
	sess := newSession(t, map[string]string{domain.TokenStorageKey: token(`{"sub":"viewer","roles":["ROLE_VIEWER"]}`)})
	metrics := observability.NewMetrics()

	stop := worker.StartSessionWatcher(sess, service.NewRecommendationBoard(), metrics, zap.NewNop())
	defer stop()

	assert.True(t, metrics.Snapshot().Authenticated)
}

func TestSessionWatcherStop(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, nil)
	board := service.NewRecommendationBoard()

	stop := worker.StartSessionWatcher(sess, board, nil, zap.NewNop())
	stop()

	require.NoError(t, sess.Login(ctx, token(`{"sub":"viewer"}`)))
	board.Set([]domain.Item{{ID: "item1"}})
	require.NoError(t, sess.Logout(ctx))

	assert.Len(t, board.Items(), 1)
}

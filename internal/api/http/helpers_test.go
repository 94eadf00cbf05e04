package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	consolehttp "github.com/spec-kit/recommendation-console/internal/api/http"
	"github.com/spec-kit/recommendation-console/internal/api/http/handlers"
	"github.com/spec-kit/recommendation-console/internal/api/http/views"
	"github.com/spec-kit/recommendation-console/internal/domain"
	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/persistence"
	"github.com/spec-kit/recommendation-console/internal/service"
	"github.com/spec-kit/recommendation-console/internal/session"
	"github.com/spec-kit/recommendation-console/internal/worker"
)

func signedToken(t *testing.T, sub string, roles ...string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

// fakeBackend plays the external REST login endpoint and the GraphQL API.
type fakeBackend struct {
	mu          sync.Mutex
	accounts    map[string]string
	passwords   map[string]string
	authHeaders []string
	gqlErrors   []string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{
		accounts: map[string]string{
			"recommender": signedToken(t, "recommender", "ROLE_RECOMMENDER"),
			"viewer":      signedToken(t, "viewer", "ROLE_VIEWER"),
		},
		passwords: map[string]string{"recommender": "password123", "viewer": "password456"},
	}
}

func (b *fakeBackend) lastAuthorization() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.authHeaders) == 0 {
		return ""
	}
	return b.authHeaders[len(b.authHeaders)-1]
}

func (b *fakeBackend) failRecommendations(messages ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gqlErrors = messages
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if pw, ok := b.passwords[creds.Username]; !ok || pw != creds.Password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Bad credentials"}`)
			return
		}
		_, _ = io.WriteString(w, b.accounts[creds.Username])
	case "/graphql":
		var body struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
		gqlErrors := b.gqlErrors
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(body.Query, "GetItems"):
			_, _ = io.WriteString(w, `{"data":{"items":[{"id":"item4","name":"Dune","category":"Science Fiction","description":"Desert planet."}]}}`)
		case len(gqlErrors) > 0:
			resp := map[string]any{"errors": []map[string]string{{"message": gqlErrors[0]}}}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			_, _ = io.WriteString(w, `{"data":{"generateRecommendations":[{"id":"item7","name":"Lord of the Rings","category":"Fantasy","description":"One ring."}]}}`)
		}
	default:
		http.NotFound(w, r)
	}
}

type consoleEnv struct {
	app     *fiber.App
	session *session.Session
	storage *persistence.FileStorage
	board   *service.RecommendationBoard
	metrics *observability.Metrics
	backend *fakeBackend
}

// newConsoleEnv wires the console the way main does, over file storage
// seeded with the given token (if any).
func newConsoleEnv(t *testing.T, seededToken string) *consoleEnv {
	t.Helper()
	ctx := context.Background()

	backend := newFakeBackend(t)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	storage := persistence.NewFileStorage(filepath.Join(t.TempDir(), "local-storage.json"))
	if seededToken != "" {
		require.NoError(t, storage.Set(ctx, domain.TokenStorageKey, seededToken))
	}
	store, err := session.NewStore(ctx, storage)
	require.NoError(t, err)

	logger := zap.NewNop()
	sess := session.New(store, nil, logger)
	metrics := observability.NewMetrics()
	board := service.NewRecommendationBoard()
	stop := worker.StartSessionWatcher(sess, board, metrics, logger)
	t.Cleanup(stop)

	authService := service.NewAuthService(srv.URL+"/api/auth/login", srv.Client(), time.Second, logger)
	catalog := service.NewCatalogService(srv.URL+"/graphql", srv.Client(), time.Second, sess, logger)

	engine, err := views.New()
	require.NoError(t, err)
	app := consolehttp.NewApp("console-test", engine)
	consolehttp.RegisterMiddlewares(app, logger, metrics, 5*time.Second)

	gate := consolehttp.NewConsoleGate()
	consolehttp.RegisterRoutes(app, consolehttp.RouteConfig{
		Session:    sess,
		Gate:       gate,
		Metrics:    metrics,
		Health:     handlers.NewHealthHandler("console-test", "test", "file", storage, metrics),
		Login:      handlers.NewLoginHandler(authService, metrics, logger, consolehttp.RootPath, consolehttp.LoginPath),
		Home:       handlers.NewHomeHandler(gate, catalog, board, logger),
		SessionAPI: handlers.NewSessionHandler(),
	})

	return &consoleEnv{app: app, session: sess, storage: storage, board: board, metrics: metrics, backend: backend}
}

func (e *consoleEnv) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func (e *consoleEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *consoleEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func (e *consoleEnv) login(t *testing.T, username, password string) {
	t.Helper()
	resp, _ := e.postForm(t, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

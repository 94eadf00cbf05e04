package session

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/auth"
	"github.com/spec-kit/recommendation-console/internal/domain"
	"github.com/spec-kit/recommendation-console/internal/events"
)

// Snapshot is an immutable view of the session at one point in time.
type Snapshot struct {
	Token    string
	HasToken bool
	Identity *domain.Identity
	// DecodeErr is set when a token is present but its payload is unreadable.
	DecodeErr error
}

// IsAuthenticated reports whether a token is present, decodable or not.
func (s Snapshot) IsAuthenticated() bool { return s.HasToken }

// HasRole reports role membership; see auth.NormalizeRole.
func (s Snapshot) HasRole(role string) bool { return auth.HasRole(s.Identity, role) }

// User returns a copy of the decoded identity, if any.
func (s Snapshot) User() (domain.Identity, bool) {
	if s.Identity == nil {
		return domain.Identity{}, false
	}
	user := *s.Identity
	user.Roles = slices.Clone(s.Identity.Roles)
	if s.Identity.ExpiresAt != nil {
		exp := *s.Identity.ExpiresAt
		user.ExpiresAt = &exp
	}
	return user, true
}

// Session is the process-wide authentication state. It is the only writer of
// the Store; everything else reads it through this API.
type Session struct {
	store      *Store
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// writeMu serializes login/logout end to end, including notification.
	writeMu sync.Mutex
	mu      sync.RWMutex
	current Snapshot
}

// New derives the initial session from whatever token the store was seeded with.
func New(store *Store, dispatcher events.Dispatcher, logger *zap.Logger) *Session {
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{store: store, dispatcher: dispatcher, logger: logger}
	token, ok := store.Get()
	s.current = s.derive(token, ok)
	if ok {
		logger.Info("session restored from storage",
			zap.String("token_fp", auth.Fingerprint(token)),
			zap.Bool("decoded", s.current.Identity != nil))
	}
	return s
}

func (s *Session) derive(token string, ok bool) Snapshot {
	if !ok || token == "" {
		return Snapshot{}
	}
	snap := Snapshot{Token: token, HasToken: true}
	identity, err := auth.DecodeToken(token)
	if err != nil {
		// Kept authenticated with no roles rather than forcing a logout.
		s.logger.Warn("session token could not be decoded",
			zap.String("token_fp", auth.Fingerprint(token)),
			zap.Error(err))
		snap.DecodeErr = err
		return snap
	}
	snap.Identity = &identity
	return snap
}

// Login stores token and recomputes the identity, then notifies subscribers.
func (s *Session) Login(ctx context.Context, token string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Set(ctx, token); err != nil {
		return err
	}
	snap := s.derive(token, true)
	s.swap(snap)

	fields := []zap.Field{zap.String("token_fp", auth.Fingerprint(token))}
	if user, ok := snap.User(); ok {
		fields = append(fields, zap.String("subject", user.Subject), zap.Strings("roles", user.Roles))
	}
	s.logger.Info("session login", fields...)
	eventType := events.EventSessionLoggedIn
	if !snap.IsAuthenticated() {
		eventType = events.EventSessionLoggedOut
	}
	s.publish(ctx, eventType, snap)
	return nil
}

// Logout clears the stored token and drops the identity.
func (s *Session) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	snap := Snapshot{}
	s.swap(snap)
	s.logger.Info("session logout")
	s.publish(ctx, events.EventSessionLoggedOut, snap)
	return nil
}

func (s *Session) swap(snap Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}

func (s *Session) publish(ctx context.Context, eventType events.EventType, snap Snapshot) {
	if err := s.dispatcher.Publish(ctx, events.NewEvent(eventType, snap)); err != nil {
		s.logger.Error("session subscriber failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

// HasRole reports whether the current identity carries role. Never fails.
func (s *Session) HasRole(role string) bool { return s.Snapshot().HasRole(role) }

// User returns the current identity, if a decodable token is present.
func (s *Session) User() (domain.Identity, bool) { return s.Snapshot().User() }

// Token returns the raw token for outbound authorization.
func (s *Session) Token() (string, bool) {
	snap := s.Snapshot()
	return snap.Token, snap.HasToken
}

// Subscribe calls fn with the latest snapshot after every login and logout,
// synchronously and in subscription order. fn runs while the session's write
// lock is held and must not call Login or Logout.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	handler := func(_ context.Context, e events.Event) error {
		if snap, ok := e.Payload.(Snapshot); ok {
			fn(snap)
		}
		return nil
	}
	offIn := s.dispatcher.Subscribe(events.EventSessionLoggedIn, handler)
	offOut := s.dispatcher.Subscribe(events.EventSessionLoggedOut, handler)
	return func() {
		offIn()
		offOut()
	}
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/auth"
	apperrors "github.com/spec-kit/recommendation-console/pkg/util"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginError is a non-2xx answer from the authentication endpoint.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

// AuthService exchanges credentials for a token at the external backend.
type AuthService struct {
	loginURL string
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAuthService builds the service. A nil client uses http.DefaultClient.
func NewAuthService(loginURL string, client *http.Client, timeout time.Duration, logger *zap.Logger) *AuthService {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthService{loginURL: loginURL, client: client, timeout: timeout, logger: logger}
}

// Login posts the credentials and returns the raw response body as the token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("login request failed", zap.String("username", username), zap.Error(err))
		return "", apperrors.NewUpstreamUnavailable("authentication service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamUnavailable("authentication response unreadable", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		loginErr := &LoginError{Status: resp.StatusCode, Message: loginFailureMessage(resp.StatusCode, raw)}
		s.logger.Info("login rejected", zap.String("username", username), zap.Int("status", resp.StatusCode))
		return "", loginErr
	}

	token := string(raw)
	s.logger.Info("login accepted", zap.String("username", username), zap.String("token_fp", auth.Fingerprint(token)))
	return token, nil
}

// loginFailureMessage prefers the body's "message", then "error", then the
// raw body text, then a status line.
func loginFailureMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("Login failed: %d %s", status, http.StatusText(status))

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		if text := string(body); text != "" {
			return text
		}
		return fallback
	}
	fields, ok := payload.(map[string]any)
	if !ok {
		return fallback
	}
	for _, key := range []string{"message", "error"} {
		if msg, ok := fields[key].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}

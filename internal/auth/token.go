package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/recommendation-console/internal/domain"
)

// ErrDecode is matched by every DecodeError.
var ErrDecode = errors.New("token decode failed")

// DecodeError describes why a token payload could not be read.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDecode, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports ErrDecode equivalence.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

var urlSafeToStd = strings.NewReplacer("-", "+", "_", "/")

// DecodeToken reads the subject and roles out of a token's payload segment.
// The signature is never checked; the result is only fit for display and UI gating.
func DecodeToken(token string) (domain.Identity, error) {
	segments := strings.Split(token, ".")
	if len(segments) < 2 {
		return domain.Identity{}, &DecodeError{Reason: "token has no payload segment"}
	}

	payload := urlSafeToStd.Replace(segments[1])
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return domain.Identity{}, &DecodeError{Reason: "payload is not base64", Err: err}
	}
	if !utf8.Valid(raw) {
		return domain.Identity{}, &DecodeError{Reason: "payload is not utf-8"}
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return domain.Identity{}, &DecodeError{Reason: "payload is not a json object", Err: err}
	}
	if claims == nil {
		return domain.Identity{}, &DecodeError{Reason: "payload is null"}
	}

	var identity domain.Identity
	if sub, err := claims.GetSubject(); err == nil {
		identity.Subject = sub
	}
	identity.Roles = rolesFromClaims(claims)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		identity.ExpiresAt = &t
	}
	return identity, nil
}

// rolesFromClaims keeps the string entries of the roles array in order.
// Entries of any other JSON type are dropped and repeats are collapsed.
func rolesFromClaims(claims jwt.MapClaims) []string {
	list, ok := claims["roles"].([]any)
	if !ok {
		return []string{}
	}
	roles := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, entry := range list {
		role, ok := entry.(string)
		if !ok {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}

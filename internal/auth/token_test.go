package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/recommendation-console/internal/auth"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func rawToken(payload string) string {
	return "eyJhbGciOiJub25lIn0." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeToken(t *testing.T) {
	t.Run("subject and roles from a signed token", func(t *testing.T) {
		token := mintToken(t, jwt.MapClaims{
			"sub":   "alice",
			"roles": []string{"ROLE_VIEWER", "ROLE_RECOMMENDER"},
		})

		identity, err := auth.DecodeToken(token)

		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Subject)
		assert.Equal(t, []string{"ROLE_VIEWER", "ROLE_RECOMMENDER"}, identity.Roles)
		assert.Nil(t, identity.ExpiresAt)
	})

	t.Run("roles are kept verbatim without prefixing", func(t *testing.T) {
		identity, err := auth.DecodeToken(rawToken(`{"sub":"bob","roles":["viewer","ROLE_X"]}`))

		require.NoError(t, err)
		assert.Equal(t, []string{"viewer", "ROLE_X"}, identity.Roles)
	})

	t.Run("missing sub and roles default to empty", func(t *testing.T) {
		identity, err := auth.DecodeToken(rawToken(`{"iss":"backend"}`))

		require.NoError(t, err)
		assert.Equal(t, "", identity.Subject)
		assert.Empty(t, identity.Roles)
	})

	t.Run("non-array roles are ignored", func(t *testing.T) {
		identity, err := auth.DecodeToken(rawToken(`{"sub":"carol","roles":"ROLE_VIEWER"}`))

		require.NoError(t, err)
		assert.Empty(t, identity.Roles)
	})

	t.Run("non-string role entries are dropped and duplicates collapse", func(t *testing.T) {
		identity, err := auth.DecodeToken(rawToken(`{"roles":["ROLE_A",7,"ROLE_A",null,"ROLE_B"]}`))

		require.NoError(t, err)
		assert.Equal(t, []string{"ROLE_A", "ROLE_B"}, identity.Roles)
	})

	t.Run("roles holding only objects, arrays and bools grant nothing", func(t *testing.T) {
		identity, err := auth.DecodeToken(rawToken(`{"sub":"dave","roles":[true,{"name":"ROLE_VIEWER"},["ROLE_VIEWER"],1.5]}`))

		require.NoError(t, err)
		assert.Equal(t, "dave", identity.Subject)
		assert.NotNil(t, identity.Roles)
		assert.Empty(t, identity.Roles)
		assert.False(t, auth.HasRole(&identity, "VIEWER"))
	})

	t.Run("non-string sub yields empty subject", func(t *testing.T) {
		identity, err := auth.DecodeToken(rawToken(`{"sub":42,"roles":["ROLE_VIEWER"]}`))

		require.NoError(t, err)
		assert.Equal(t, "", identity.Subject)
		assert.Equal(t, []string{"ROLE_VIEWER"}, identity.Roles)
	})

	t.Run("two segments are enough", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"dave"}`))

		identity, err := auth.DecodeToken("header." + payload)

		require.NoError(t, err)
		assert.Equal(t, "dave", identity.Subject)
	})

	t.Run("padded standard alphabet payload decodes", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte(`{"sub":"eve?>>"}`))
		require.True(t, strings.HasSuffix(payload, "="))

		identity, err := auth.DecodeToken("h." + payload + ".s")

		require.NoError(t, err)
		assert.Equal(t, "eve?>>", identity.Subject)
	})

	t.Run("url-safe characters are normalized", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"~~~???>>>"}`))
		require.True(t, strings.ContainsAny(payload, "-_"))

		identity, err := auth.DecodeToken("h." + payload + ".s")

		require.NoError(t, err)
		assert.Equal(t, "~~~???>>>", identity.Subject)
	})

	t.Run("expiry is exposed for display", func(t *testing.T) {
		exp := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
		token := mintToken(t, jwt.MapClaims{"sub": "frank", "exp": exp.Unix()})

		identity, err := auth.DecodeToken(token)

		require.NoError(t, err)
		require.NotNil(t, identity.ExpiresAt)
		assert.True(t, exp.Equal(*identity.ExpiresAt))
	})

	t.Run("expired tokens still decode", func(t *testing.T) {
		token := mintToken(t, jwt.MapClaims{"sub": "gina", "exp": time.Now().Add(-time.Hour).Unix()})

		identity, err := auth.DecodeToken(token)

		require.NoError(t, err)
		assert.Equal(t, "gina", identity.Subject)
	})
}

func TestDecodeTokenFailures(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"single segment", "not-a-jwt"},
		{"payload not base64", "h.%%%%.s"},
		{"payload not json", "h." + base64.RawURLEncoding.EncodeToString([]byte("hello")) + ".s"},
		{"payload is json array", "h." + base64.RawURLEncoding.EncodeToString([]byte(`["a"]`)) + ".s"},
		{"payload is json null", "h." + base64.RawURLEncoding.EncodeToString([]byte(`null`)) + ".s"},
		{"payload not utf-8", "h." + base64.RawURLEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}) + ".s"},
		{"empty payload", "h..s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = auth.DecodeToken(tt.token)
			})

			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrDecode)
			var decodeErr *auth.DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/reelchat/reelchat/internal/config"
	"github.com/reelchat/reelchat/internal/testutil"
	"github.com/stretchr/testify/assert"
)

var testSigningKey = []byte("some_secret")

// makeToken signs a token the way the auth service does.
func makeToken(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return tokenString
}

func TestUserId(t *testing.T) {
	tcases := []struct {
		name     string
		ctx      context.Context
		userId   string
		expected bool
	}{
		{
			name:     "no user ID",
			ctx:      context.Background(),
			expected: false,
		},
		{
			name:     "user ID set",
			ctx:      WithUserId(context.Background(), "alice"),
			userId:   "alice",
			expected: true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			userId, ok := UserId(tc.ctx)
			assert.Equal(t, tc.expected, ok, "expected UserId to return %v", tc.expected)
			assert.Equal(t, tc.userId, userId, "expected UserId to return %q", tc.userId)
		})
	}
}

func Test_extractUserIdFromToken(t *testing.T) {
	app := NewChatApp(http.NewServeMux(), testutil.TestLogger(t), nil, nil, &config.Config{
		SigningKey: testSigningKey,
	})

	tcases := []struct {
		name        string
		token       string
		expectedId  string
		expectError bool
	}{
		{
			name:       "valid token",
			token:      makeToken(t, testSigningKey, jwt.MapClaims{userIdClaim: "alice"}),
			expectedId: "alice",
		},
		{
			name:        "wrong signing key",
			token:       makeToken(t, []byte("other_secret"), jwt.MapClaims{userIdClaim: "alice"}),
			expectError: true,
		},
		{
			name:        "missing user id claim",
			token:       makeToken(t, testSigningKey, jwt.MapClaims{"sub": "alice"}),
			expectError: true,
		},
		{
			name:        "non-string user id claim",
			token:       makeToken(t, testSigningKey, jwt.MapClaims{userIdClaim: 42}),
			expectError: true,
		},
		{
			name:        "garbage token",
			token:       "not.a.token",
			expectError: true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			userId, err := app.extractUserIdFromToken(tc.token)
			if tc.expectError {
				assert.Error(t, err, "expected error for token: %s", tc.name)
				return
			}
			assert.NoError(t, err, "expected no error for token: %s", tc.name)
			assert.Equal(t, tc.expectedId, userId)
		})
	}
}

func Test_authMiddleware(t *testing.T) {
	app := NewChatApp(http.NewServeMux(), testutil.TestLogger(t), nil, nil, &config.Config{
		SigningKey: testSigningKey,
	})

	t.Run("no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)

		called := false
		app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, called, "expected the wrapped handler not to run")
	})

	t.Run("invalid token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: "not.a.token"})

		called := false
		app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, called, "expected the wrapped handler not to run")
	})

	t.Run("valid token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
		req.AddCookie(&http.Cookie{
			Name:  tokenCookieKey,
			Value: makeToken(t, testSigningKey, jwt.MapClaims{userIdClaim: "alice"}),
		})

		app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			userId, ok := UserId(r.Context())
			assert.True(t, ok, "expected user id in request context")
			assert.Equal(t, "alice", userId)
			w.WriteHeader(http.StatusOK)
		})(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
	})
}

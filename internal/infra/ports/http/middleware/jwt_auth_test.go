package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundroomhq/soundroom/internal/infra/appctx"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, subject string, ttl time.Duration) string {
	t.Helper()

	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func TestBearerToken(t *testing.T) {
	t.Run("authorization header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		r.Header.Set(echo.HeaderAuthorization, "Bearer abc123")

		assert.Equal(t, "abc123", BearerToken(r))
	})

	t.Run("query fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws/rooms/1?access_token=abc123", nil)

		assert.Equal(t, "abc123", BearerToken(r))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		r.Header.Set(echo.HeaderAuthorization, "Basic abc123")

		assert.Empty(t, BearerToken(r))
	})
}

func TestJWTAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	newContext := func(token string) (echo.Context, *httptest.ResponseRecorder) {
		e := echo.New()
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if token != "" {
			r.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		w := httptest.NewRecorder()

		return e.NewContext(r, w), w
	}

	handler := func(c echo.Context) error {
		id, ok := appctx.UserID(c.Request().Context())
		require.True(t, ok)
		assert.Equal(t, userID, id)

		return c.NoContent(http.StatusOK)
	}

	mw := JWTAuthMiddleware(testSecret)

	t.Run("valid token passes through", func(t *testing.T) {
		c, w := newContext(signToken(t, testSecret, userID.String(), time.Minute))

		require.NoError(t, mw(handler)(c))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		c, w := newContext("")

		require.NoError(t, mw(handler)(c))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		c, w := newContext(signToken(t, testSecret, userID.String(), -time.Minute))

		require.NoError(t, mw(handler)(c))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		c, w := newContext(signToken(t, "other-secret", userID.String(), time.Minute))

		require.NoError(t, mw(handler)(c))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		c, w := newContext(signToken(t, testSecret, "not-a-uuid", time.Minute))

		require.NoError(t, mw(handler)(c))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

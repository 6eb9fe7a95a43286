package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anahisv/whisperbox-be/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:                  "user-1",
		Username:            "neo",
		Email:               "neo@x.com",
		IsVerified:          true,
		IsAcceptingMessages: true,
	}
}

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "neo", claims.Username)
	require.True(t, claims.IsVerified)
	require.True(t, claims.IsAcceptingMessages)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not.a.token")
	require.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, "user-1", claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTMiddleware()(next)

	token, err := GenerateJWT(testUser())
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.JSONEq(t, `{"success":false,"message":"Not Authenticated."}`, rec.Body.String())
	})

	t.Run("mangled token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

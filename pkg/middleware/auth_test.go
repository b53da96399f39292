package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkamalov/bazar/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	h := Auth(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorMessage(t, rec))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", errorMessage(t, rec))
}

func TestAuthInjectsIdentityFromToken(t *testing.T) {
	sellerID := uint(7)
	token, err := auth.GenerateToken(42, "user", &sellerID)
	require.NoError(t, err)

	var got Identity
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromCtx(r.Context())
		require.True(t, ok)
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(42), got.UserID)
	require.NotNil(t, got.SellerID)
	assert.Equal(t, sellerID, *got.SellerID)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole("admin")(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), Identity{UserID: 1, Role: "user"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient permissions", errorMessage(t, rec))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), Identity{UserID: 1, Role: "admin"}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSeller(t *testing.T) {
	h := RequireSeller(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), Identity{UserID: 1, Role: "user"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Seller profile required", errorMessage(t, rec))

	sellerID := uint(3)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), Identity{UserID: 1, Role: "user", SellerID: &sellerID}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkamalov/bazar/pkg/auth"
	"github.com/mkamalov/bazar/pkg/response"
)

// Identity is the authenticated principal attached to the request context.
type Identity struct {
	UserID   uint
	Role     string
	SellerID *uint
}

// IsAdmin reports whether the principal has the admin role.
func (id Identity) IsAdmin() bool { return id.Role == "admin" }

// IsSeller reports whether the principal has an approved seller profile.
func (id Identity) IsSeller() bool { return id.SellerID != nil }

type identityKey struct{}

// IdentityFromCtx returns the authenticated identity, if any.
func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Auth rejects requests without a valid bearer token and injects the
// decoded Identity into the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Unauthorized(w, "Authentication required")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		id := Identity{UserID: claims.UserID, Role: claims.Role, SellerID: claims.SellerID}
		ctx := context.WithValue(r.Context(), identityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth injects the identity when a valid token is present but lets
// anonymous requests through. Used on public listings that show extra
// fields to the resource owner.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := auth.ValidateToken(token); err == nil {
				id := Identity{UserID: claims.UserID, Role: claims.Role, SellerID: claims.SellerID}
				r = r.WithContext(context.WithValue(r.Context(), identityKey{}, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole builds a middleware that rejects authenticated principals
// lacking the given role. Mount after Auth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if id.Role != role {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSeller rejects principals without an approved seller profile.
// Mount after Auth.
func RequireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromCtx(r.Context())
		if !ok {
			response.Unauthorized(w, "Authentication required")
			return
		}
		if !id.IsSeller() && !id.IsAdmin() {
			response.Forbidden(w, "Seller profile required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

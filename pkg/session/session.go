// Package session provides HTTP session management backed by Redis.
//
// The registration flow relies on it to carry state between the
// request-OTP, verify-OTP and complete-profile steps.
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("registration_email", "a@b.com")
//	sess.Save(r.Context(), w)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mkamalov/bazar/pkg/cache"
)

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		CookieName: "bazar_session",
		TTL:        2 * time.Hour,
		HTTPOnly:   true,
		Secure:     false, // set true behind TLS
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is a lazily-persisted key/value bag tied to a cookie.
type Session struct {
	id      string
	data    map[string]interface{}
	opts    Options
	changed bool
}

// newID generates a cryptographically random 32-byte hex session ID.
func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func redisKey(id string) string { return "bazar:session:" + id }

// load fetches session data from Redis. An absent session yields an empty map.
func load(ctx context.Context, id string) map[string]interface{} {
	var data map[string]interface{}
	if err := cache.Get(ctx, redisKey(id), &data); err != nil || data == nil {
		return map[string]interface{}{}
	}
	return data
}

// Set stores a value under key in the session.
func (s *Session) Set(key string, value interface{}) {
	s.data[key] = value
	s.changed = true
}

// Get retrieves a value from the session.
func (s *Session) Get(key string) (interface{}, bool) {
	v, ok := s.data[key]
	return v, ok
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.data[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetBool is a typed convenience getter.
func (s *Session) GetBool(key string) bool {
	v, ok := s.data[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// GetTime parses an RFC3339 timestamp stored under key.
func (s *Session) GetTime(key string) (time.Time, bool) {
	str, ok := s.GetString(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, str)
	return t, err == nil
}

// Delete removes a key from the session.
func (s *Session) Delete(key string) {
	delete(s.data, key)
	s.changed = true
}

// Invalidate destroys all session data.
func (s *Session) Invalidate() {
	s.data = map[string]interface{}{}
	s.changed = true
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Save persists the session to Redis and writes the cookie to the response.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	if !s.changed {
		return nil
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	if err := cache.Set(ctx, redisKey(s.id), json.RawMessage(raw), s.opts.TTL); err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// Middleware loads (or creates) the session for every request and injects it
// into the request context. Handlers call session.FromCtx(r) to access it.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				sess.id = cookie.Value
				sess.data = load(r.Context(), sess.id)
			} else {
				id, err := newID()
				if err != nil {
					http.Error(w, "session init failed", http.StatusInternalServerError)
					return
				}
				sess.id = id
				sess.data = map[string]interface{}{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromCtx retrieves the session from the request context.
func FromCtx(r *http.Request) (*Session, error) {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s, nil
	}
	return nil, errors.New("session: middleware not installed")
}

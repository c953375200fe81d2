package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/portfolio/internal/models"
	"github.com/terra-clan/portfolio/internal/visitor"
)

// VisitorCookie names the cookie carrying the visitor id
const VisitorCookie = "portfolio_visitor"

// VisitorMiddleware attaches a visitor session to every request
type VisitorMiddleware struct {
	store visitor.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewVisitorMiddleware creates the session middleware
func NewVisitorMiddleware(store visitor.Store, ttl time.Duration) *VisitorMiddleware {
	if ttl <= 0 {
		ttl = visitor.DefaultTTL
	}
	return &VisitorMiddleware{store: store, ttl: ttl, now: time.Now}
}

// Identify reads or issues the visitor cookie and loads the session.
// A new session counts one visit.
func (m *VisitorMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := visitorID(r)
		if id == "" {
			id = uuid.NewString()
		}

		http.SetCookie(w, &http.Cookie{
			Name:     VisitorCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(m.ttl / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		v, created, err := m.store.Touch(r.Context(), id)
		if err != nil {
			slog.Error("failed to load visitor session", "error", err, "visitor", id)
			v = models.NewVisitor(id, m.now())
		} else if created {
			slog.Debug("visitor session started", "visitor", id)
		}

		next.ServeHTTP(w, r.WithContext(ContextWithVisitor(r.Context(), v)))
	})
}

// visitorID returns the cookie value when it holds a valid id
func visitorID(r *http.Request) string {
	c, err := r.Cookie(VisitorCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// AdminMiddleware guards the admin API with a static bearer token
type AdminMiddleware struct {
	token string
}

// NewAdminMiddleware creates admin auth middleware
func NewAdminMiddleware(token string) *AdminMiddleware {
	return &AdminMiddleware{token: token}
}

// Authenticate verifies the token from the Authorization header.
// Supports "Bearer xxx" or "xxx", and the X-API-Key header.
func (m *AdminMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			respondError(w, http.StatusUnauthorized, "missing_api_key", "provide Authorization header with Bearer token or X-API-Key header")
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(m.token)) != 1 {
			slog.Warn("invalid admin key attempt", "key_prefix", maskKey(key), "remote_addr", r.RemoteAddr)
			respondError(w, http.StatusUnauthorized, "invalid_api_key", "the provided api key is not valid")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractAPIKey(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}

// maskKey returns first 8 chars of key for safe logging
func maskKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:8] + "..."
}

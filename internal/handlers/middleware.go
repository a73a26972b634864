package handlers

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"chorequest/internal/models"
	"chorequest/internal/security"
	"chorequest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	FamilyContextKey  ContextKey = "family"
	SessionContextKey ContextKey = "session"
	ActorContextKey   ContextKey = "actor"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
	}
}

// RequireAuth is middleware that requires a valid family session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := security.FamilySessionID(r)
		if sessionID == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		family, err := m.authService.ValidateSession(sessionID)
		if err != nil {
			security.ClearFamilySession(w, r)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), FamilyContextKey, family)
		ctx = context.WithValue(ctx, SessionContextKey, sessionID)
		next(w, r.WithContext(ctx))
	}
}

// RequireProfile requires a family session and a selected profile. The
// resolved actor is placed on the request context.
func (m *Middleware) RequireProfile(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		family := GetFamilyFromContext(r.Context())
		sessionID := GetSessionIDFromContext(r.Context())

		token := security.ProfileToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, ErrNoProfileSelected, "", nil)
			return
		}

		actor, err := m.authService.ResolveActor(sessionID, family.ID, token)
		if err != nil {
			security.ClearProfileToken(w, r)
			respondWithError(w, http.StatusUnauthorized, ErrNoProfileSelected, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ActorContextKey, actor)
		next(w, r.WithContext(ctx))
	})
}

// RequireParent requires a selected parent profile
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireProfile(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := GetActorFromContext(r.Context())
		if !actor.IsParent() {
			respondWithError(w, http.StatusForbidden, service.ErrForbidden.Error(), "", nil)
			return
		}
		next(w, r)
	})
}

// CSRFProtect checks the CSRF header on state-changing requests. It must run
// inside RequireAuth so the session ID is known.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.csrf.Check(r, GetSessionIDFromContext(r.Context())) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next(w, r)
			return
		}
		client := security.GetClientIP(r)
		if !m.limiter.Allow(client) {
			seconds := int(math.Ceil(m.limiter.RetryAfter(client).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// Session wraps a handler that needs the family session but no profile
func (m *Middleware) Session(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(m.CSRFProtect(next))
}

// Profile wraps a handler that acts as the selected profile
func (m *Middleware) Profile(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireProfile(m.CSRFProtect(next))
}

// Parent wraps a handler that only a parent profile may call
func (m *Middleware) Parent(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireParent(m.CSRFProtect(next))
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetFamilyFromContext retrieves the logged-in family from the request context
func GetFamilyFromContext(ctx context.Context) *models.Family {
	family, ok := ctx.Value(FamilyContextKey).(*models.Family)
	if !ok {
		return nil
	}
	return family
}

// GetSessionIDFromContext retrieves the family session ID from the request context
func GetSessionIDFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionContextKey).(string)
	return sessionID
}

// GetActorFromContext retrieves the acting profile from the request context
func GetActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(models.Actor)
	return actor, ok
}

// childTarget picks the child an operation is about: the path's child for
// parents, and the caller itself for a child that left it out.
func childTarget(actor models.Actor, requested int64) int64 {
	if requested == 0 && !actor.IsParent() {
		return actor.UserID
	}
	return requested
}

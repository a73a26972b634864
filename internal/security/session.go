package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cookie names. The family session is long lived; the profile token only
// says which family member is acting and is dropped whenever the session changes.
const (
	FamilySessionCookie = "session_id"
	ProfileTokenCookie  = "profile_token"
	OAuthStateCookie    = "oauth_state"

	oauthCookiePath = "/api/auth/"
)

// GenerateSessionID creates a new UUID for session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly or via a proxy
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" || r.URL.Scheme == "https"
}

// cookie builds an HttpOnly, SameSite=Lax cookie. A zero expiry with
// maxAge < 0 deletes it, keeping the same attributes as when it was set.
func cookie(r *http.Request, name, value, path string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

func deleteCookie(w http.ResponseWriter, r *http.Request, name, path string) {
	http.SetCookie(w, cookie(r, name, "", path, time.Time{}, -1))
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// SetFamilySession stores a new family session and drops any selected profile
func SetFamilySession(w http.ResponseWriter, r *http.Request, sessionID string, expires time.Time) {
	http.SetCookie(w, cookie(r, FamilySessionCookie, sessionID, "/", expires, 0))
	deleteCookie(w, r, ProfileTokenCookie, "/")
}

// FamilySessionID returns the family session ID, or "" when signed out
func FamilySessionID(r *http.Request) string {
	return cookieValue(r, FamilySessionCookie)
}

// ClearFamilySession signs the browser out of the family and its profile
func ClearFamilySession(w http.ResponseWriter, r *http.Request) {
	deleteCookie(w, r, FamilySessionCookie, "/")
	deleteCookie(w, r, ProfileTokenCookie, "/")
}

// SetProfileToken stores the signed token of the acting profile
func SetProfileToken(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, cookie(r, ProfileTokenCookie, token, "/", expires, 0))
}

// ProfileToken returns the acting profile's token, or "" when none is selected
func ProfileToken(r *http.Request) string {
	return cookieValue(r, ProfileTokenCookie)
}

// ClearProfileToken returns the browser to the profile picker
func ClearProfileToken(w http.ResponseWriter, r *http.Request) {
	deleteCookie(w, r, ProfileTokenCookie, "/")
}

// SetOAuthState remembers which provider and state an OAuth redirect was started with
func SetOAuthState(w http.ResponseWriter, r *http.Request, provider, state string, ttl time.Duration) {
	http.SetCookie(w, cookie(r, OAuthStateCookie, provider+":"+state, oauthCookiePath, time.Time{}, int(ttl.Seconds())))
}

// CheckOAuthState reports whether the callback matches the started flow. The
// state cookie is single use and cleared either way.
func CheckOAuthState(w http.ResponseWriter, r *http.Request, provider, state string) bool {
	stored := cookieValue(r, OAuthStateCookie)
	deleteCookie(w, r, OAuthStateCookie, oauthCookiePath)

	storedProvider, storedState, ok := strings.Cut(stored, ":")
	return ok && state != "" && storedProvider == provider && storedState == state
}

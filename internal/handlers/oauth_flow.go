package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"chorequest/internal/security"
)

// OAuthIdentity is the account a provider vouches for
type OAuthIdentity struct {
	Subject string
	Email   string
	Name    string
}

// OAuthProvider pairs an OAuth client config with the call that turns a token into an identity
type OAuthProvider struct {
	Label     string
	Config    *oauth2.Config
	FetchUser func(ctx context.Context, client *http.Client) (OAuthIdentity, error)
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != "" && p.FetchUser != nil
}

func (h *AuthHandler) configuredProviders() []string {
	var names []string
	for key, provider := range h.oauthProviders {
		if provider.configured() {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

func (h *AuthHandler) provider(w http.ResponseWriter, r *http.Request) (string, *oauth2.Config, OAuthProvider, bool) {
	key := r.PathValue("provider")
	provider, ok := h.oauthProviders[key]
	if !ok || !provider.configured() {
		respondWithError(w, http.StatusBadRequest, "OAuth provider not configured", "", nil)
		return "", nil, OAuthProvider{}, false
	}
	config := *provider.Config
	config.RedirectURL = h.oauthRedirectURL(r, key)
	return key, &config, provider, true
}

// StartOAuth redirects to the provider's consent page. The state cookie
// binds the callback to this browser and provider.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	key, config, _, ok := h.provider(w, r)
	if !ok {
		return
	}

	state := security.GenerateSessionID()
	security.SetOAuthState(w, r, key, state, cookieTTL)
	http.Redirect(w, r, config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

// OAuthCallback completes the code exchange and signs the family in
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	key, config, provider, ok := h.provider(w, r)
	if !ok {
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}
	if !security.CheckOAuthState(w, r, key, r.URL.Query().Get("state")) {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token, err := config.Exchange(ctx, code)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to exchange OAuth code", "OAuth exchange failed", err)
		return
	}
	identity, err := provider.FetchUser(ctx, config.Client(ctx, token))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Could not read your "+provider.Label+" account", "OAuth user lookup failed", err)
		return
	}

	session, _, err := h.authService.OAuthLogin(ctx, key, identity.Subject, identity.Email, identity.Name)
	if err != nil {
		respondWithServiceError(w, "Error completing OAuth login", err)
		return
	}

	h.setSessionCookie(w, r, session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GoogleUserInfo reads the signed-in Google account from the v2 userinfo endpoint.
// Accounts without a verified email are refused.
func GoogleUserInfo(ctx context.Context, client *http.Client) (OAuthIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return OAuthIdentity{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return OAuthIdentity{}, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OAuthIdentity{}, fmt.Errorf("failed to fetch Google user info: status %d", resp.StatusCode)
	}

	var payload struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return OAuthIdentity{}, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if payload.Email == "" || !payload.VerifiedEmail {
		return OAuthIdentity{}, errors.New("google account has no verified email")
	}
	return OAuthIdentity{Subject: payload.ID, Email: payload.Email, Name: payload.Name}, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, providerKey string) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return fmt.Sprintf("%s/api/auth/%s/callback", strings.TrimRight(baseURL, "/"), providerKey)
}

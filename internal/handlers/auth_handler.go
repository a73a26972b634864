package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"chorequest/internal/models"
	"chorequest/internal/security"
	"chorequest/internal/service"
)

// AuthHandler handles family logins and profile selection
type AuthHandler struct {
	authService          *service.AuthService
	familyService        *service.FamilyService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, familyService *service.FamilyService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		familyService:        familyService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, session *models.Session) {
	security.SetFamilySession(w, r, session.ID, session.ExpiresAt)
}

func (h *AuthHandler) sessionResponse(sessionID string, family *models.Family) (*SessionResponse, error) {
	users, err := h.familyService.ListProfiles(family.ID)
	if err != nil {
		return nil, err
	}
	token, err := h.csrf.GenerateToken(sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionResponse{
		Family:         family,
		Profiles:       summarizeProfiles(users),
		CSRFToken:      token,
		OAuthProviders: h.configuredProviders(),
	}, nil
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, status int, session *models.Session, family *models.Family) {
	h.setSessionCookie(w, r, session)
	resp, err := h.sessionResponse(session.ID, family)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building session response", err)
		return
	}
	writeJSON(w, status, resp)
}

// Register creates a family account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	session, family, err := h.authService.RegisterFamily(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, "Error registering family", err)
		return
	}
	h.respondWithSession(w, r, http.StatusCreated, session, family)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login starts a family session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, family, err := h.authService.Login(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}
	h.respondWithSession(w, r, http.StatusOK, session, family)
}

type joinRequest struct {
	FamilyCode string `json:"familyCode"`
	Password   string `json:"password"`
	ParentName string `json:"parentName"`
	PIN        string `json:"pin"`
}

// Join adds a parent profile to an existing family by its code
func (h *AuthHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, family, err := h.authService.JoinFamily(req.FamilyCode, req.Password, req.ParentName, req.PIN)
	if err != nil {
		respondWithServiceError(w, "Error joining family", err)
		return
	}
	h.respondWithSession(w, r, http.StatusCreated, session, family)
}

// Logout ends the family session and forgets the selected profile
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := GetSessionIDFromContext(r.Context()); sessionID != "" {
		if err := h.authService.Logout(sessionID); err != nil {
			log.Printf("Error logging out: %v", err)
		}
	}

	security.ClearFamilySession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the logged-in family, its profiles and a CSRF token
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	family := GetFamilyFromContext(r.Context())
	resp, err := h.sessionResponse(GetSessionIDFromContext(r.Context()), family)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error building session response", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type selectProfileRequest struct {
	PIN string `json:"pin"`
}

// SelectProfile makes one profile the acting one, checking its PIN
func (h *AuthHandler) SelectProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req selectProfileRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	family := GetFamilyFromContext(r.Context())
	sessionID := GetSessionIDFromContext(r.Context())
	selection, err := h.authService.SelectProfile(sessionID, family.ID, userID, req.PIN)
	if err != nil {
		respondWithServiceError(w, "Error selecting profile", err)
		return
	}

	profile, err := h.familyService.GetProfile(selection.Actor, selection.Actor.UserID)
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}

	security.SetProfileToken(w, r, selection.Token, selection.ExpiresAt)
	writeJSON(w, http.StatusOK, ProfileResponse{
		Actor:     selection.Actor,
		Profile:   profile,
		ExpiresAt: selection.ExpiresAt,
	})
}

// DeselectProfile returns to the profile picker
func (h *AuthHandler) DeselectProfile(w http.ResponseWriter, r *http.Request) {
	security.ClearProfileToken(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the acting profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	profile, err := h.familyService.GetProfile(actor, actor.UserID)
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{
		Actor:   actor,
		Profile: profile,
		Family:  GetFamilyFromContext(r.Context()),
	})
}

// cookieTTL is how long short-lived OAuth cookies live
const cookieTTL = 10 * time.Minute

package handlers

import (
	"net/http"

	"chorequest/internal/service"
)

// FamilyHandler manages the family account and its profiles
type FamilyHandler struct {
	familyService *service.FamilyService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService}
}

type renameFamilyRequest struct {
	Name string `json:"name"`
}

// RenameFamily changes the family's display name
func (h *FamilyHandler) RenameFamily(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var req renameFamilyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.familyService.RenameFamily(actor, req.Name); err != nil {
		respondWithServiceError(w, "Error renaming family", err)
		return
	}

	family, err := h.familyService.GetFamily(actor.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error loading family", err)
		return
	}
	writeJSON(w, http.StatusOK, family)
}

// ListProfiles returns every profile with its balances
func (h *FamilyHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	users, err := h.familyService.ListProfiles(actor.FamilyID)
	if err != nil {
		respondWithServiceError(w, "Error listing profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetProfile returns one profile
func (h *FamilyHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.familyService.GetProfile(actor, userID)
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateProfile adds a parent or child profile
func (h *FamilyHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var in service.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.familyService.CreateProfile(actor, in)
	if err != nil {
		respondWithServiceError(w, "Error creating profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`
}

// UpdateProfile renames a profile or changes its colour
func (h *FamilyHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.familyService.UpdateProfile(actor, userID, req.Name, req.AvatarColor)
	if err != nil {
		respondWithServiceError(w, "Error updating profile", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type setPINRequest struct {
	PIN     string `json:"pin"`
	Confirm string `json:"confirm"`
}

// SetPIN sets or clears a profile PIN
func (h *FamilyHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req setPINRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.familyService.SetPIN(actor, userID, req.PIN, req.Confirm); err != nil {
		respondWithServiceError(w, "Error setting PIN", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProfile removes a profile and everything it owns
func (h *FamilyHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.familyService.DeleteProfile(actor, userID); err != nil {
		respondWithServiceError(w, "Error deleting profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

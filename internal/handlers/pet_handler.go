package handlers

import (
	"net/http"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

// PetHandler exposes pet adoption and care
type PetHandler struct {
	petService *service.PetService
}

// NewPetHandler creates a new pet handler
func NewPetHandler(petService *service.PetService) *PetHandler {
	return &PetHandler{petService: petService}
}

// ListPets returns the family's pets, or a child's own pet
func (h *PetHandler) ListPets(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	pets, err := h.petService.ListPets(actor)
	if err != nil {
		respondWithServiceError(w, "Error listing pets", err)
		return
	}
	writeJSON(w, http.StatusOK, pets)
}

// GetPet returns one child's pet
func (h *PetHandler) GetPet(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}

	pet, err := h.petService.GetPet(actor, childID)
	if err != nil {
		respondWithServiceError(w, "Error loading pet", err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

type adoptRequest struct {
	Name string         `json:"name"`
	Type models.PetType `json:"type"`
}

// Adopt hatches a child's first and only pet
func (h *PetHandler) Adopt(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var req adoptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pet, err := h.petService.Adopt(actor, childID, req.Name, req.Type)
	if err != nil {
		respondWithServiceError(w, "Error adopting pet", err)
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

// Feed spends energy on the pet's health
func (h *PetHandler) Feed(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, h.petService.Feed, "Error feeding pet")
}

// Play spends energy on the pet's happiness and experience
func (h *PetHandler) Play(w http.ResponseWriter, r *http.Request) {
	h.interact(w, r, h.petService.Play, "Error playing with pet")
}

func (h *PetHandler) interact(w http.ResponseWriter, r *http.Request, action func(models.Actor, int64) (*service.PetView, error), logMsg string) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}

	pet, err := action(actor, childID)
	if err != nil {
		respondWithServiceError(w, logMsg, err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

type renamePetRequest struct {
	Name string `json:"name"`
}

// Rename gives the pet a new name
func (h *PetHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var req renamePetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pet, err := h.petService.Rename(actor, childID, req.Name)
	if err != nil {
		respondWithServiceError(w, "Error renaming pet", err)
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

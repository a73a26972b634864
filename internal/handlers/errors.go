package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"chorequest/internal/quiz"
	"chorequest/internal/service"
	"chorequest/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	writeJSON(w, status, errorResponse{Error: userMsg})
}

// statusForError maps domain errors onto HTTP statuses. Anything unknown is a 500.
func statusForError(err error) int {
	var vErr validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrNotFamilyMember):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrInvalidPIN):
		return http.StatusForbidden
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrPetNotFound),
		errors.Is(err, service.ErrGoalNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrNoActiveQuiz),
		errors.Is(err, service.ErrInvalidFamilyCode):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrPetExists),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrLastParent),
		errors.Is(err, quiz.ErrSessionOver),
		errors.Is(err, quiz.ErrUnknownQuestion):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientPoints),
		errors.Is(err, service.ErrInsufficientEnergy),
		errors.Is(err, service.ErrNoBalance),
		errors.Is(err, service.ErrTaskLocked),
		errors.Is(err, service.ErrRatingRequired):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondWithServiceError replies with the mapped status. Domain errors carry
// their own message; internal failures are logged and hidden.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, status, ErrInternalServerError, logMsg, err)
		return
	}

	resp := errorResponse{Error: err.Error()}
	var vErr validation.ValidationError
	if errors.As(err, &vErr) {
		resp = errorResponse{Error: vErr.Message, Field: vErr.Field}
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}

// queryChildID reads ?childId=. Missing means 0, which services treat as
// "the whole family" for parents and "myself" for children.
func queryChildID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get("childId"), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

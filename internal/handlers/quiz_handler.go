package handlers

import (
	"net/http"
	"strings"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

const (
	defaultResultsLimit     = 20
	defaultLeaderboardLimit = 10
)

// QuizHandler runs quiz sessions for the acting child
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

type startQuizRequest struct {
	Category models.QuizCategory `json:"category"`
}

// Start begins a new run
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var req startQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.quizService.Start(actor, models.QuizCategory(strings.ToUpper(string(req.Category))))
	if err != nil {
		respondWithServiceError(w, "Error starting quiz", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Current returns the live run
func (h *QuizHandler) Current(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	session, err := h.quizService.Current(actor)
	if err != nil {
		respondWithServiceError(w, "Error loading quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// Answer grades one answer
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.quizService.Answer(actor, req.QuestionID, req.Answer)
	if err != nil {
		respondWithServiceError(w, "Error answering quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Finish ends the run and pays out energy and bonuses
func (h *QuizHandler) Finish(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	result, err := h.quizService.Finish(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, "Error finishing quiz", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Results lists finished runs for ?childId=
func (h *QuizHandler) Results(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	results, err := h.quizService.Results(actor, queryChildID(r), queryInt(r, "limit", defaultResultsLimit))
	if err != nil {
		respondWithServiceError(w, "Error listing quiz results", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Leaderboard ranks the family in one category
func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	category := models.QuizCategory(strings.ToUpper(r.PathValue("category")))
	if !category.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown quiz category", "", nil)
		return
	}

	entries, err := h.quizService.Leaderboard(r.Context(), actor, category, int64(queryInt(r, "limit", defaultLeaderboardLimit)))
	if err != nil {
		respondWithServiceError(w, "Error loading leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, LeaderboardResponse{Category: category, Entries: entries})
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"chorequest/internal/ai"
	"chorequest/internal/models"
	"chorequest/internal/service"
)

const (
	defaultSuggestionCount = 5
	aiTimeout              = 15 * time.Second
)

// AssistHandler serves push subscriptions and AI helpers
type AssistHandler struct {
	notifications *service.NotificationService
	assistant     *ai.Service
	taskService   *service.TaskService
	familyService *service.FamilyService
}

// NewAssistHandler creates a new assist handler
func NewAssistHandler(notifications *service.NotificationService, assistant *ai.Service, taskService *service.TaskService, familyService *service.FamilyService) *AssistHandler {
	return &AssistHandler{
		notifications: notifications,
		assistant:     assistant,
		taskService:   taskService,
		familyService: familyService,
	}
}

// PushKey returns the VAPID public key, empty when push is off
func (h *AssistHandler) PushKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":   h.notifications.IsEnabled(),
		"publicKey": h.notifications.PublicKey(),
	})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe registers the browser for the acting profile's notifications
func (h *AssistHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.notifications.Subscribe(actor, req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		respondWithServiceError(w, "Error saving push subscription", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe forgets a browser endpoint
func (h *AssistHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.notifications.Unsubscribe(req.Endpoint); err != nil {
		respondWithServiceError(w, "Error removing push subscription", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Suggestions asks the model for task ideas matching ?interests=
func (h *AssistHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	interests := r.URL.Query().Get("interests")
	count := queryInt(r, "count", defaultSuggestionCount)
	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Enabled:     h.assistant.IsEnabled(),
		Suggestions: h.assistant.SuggestTasks(ctx, interests, count),
	})
}

// Motivation returns an encouraging sentence for ?childId=, or for the
// acting child
func (h *AssistHandler) Motivation(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID := childTarget(actor, queryChildID(r))
	if childID == 0 {
		respondWithError(w, http.StatusBadRequest, "childId is required", "", nil)
		return
	}

	child, err := h.familyService.GetProfile(actor, childID)
	if err != nil {
		respondWithServiceError(w, "Error loading profile", err)
		return
	}
	tasks, err := h.taskService.ListTasks(actor, child.ID)
	if err != nil {
		respondWithServiceError(w, "Error listing tasks", err)
		return
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == models.TaskApproved {
			completed++
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, MotivationResponse{
		ChildID:        child.ID,
		CompletedTasks: completed,
		Message:        h.assistant.Motivation(ctx, child.Name, completed),
	})
}

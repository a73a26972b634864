package handlers

import (
	"net/http"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

// GoalHandler exposes savings goals and the family calendar
type GoalHandler struct {
	goalService     *service.GoalService
	calendarService *service.CalendarService
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(goalService *service.GoalService, calendarService *service.CalendarService) *GoalHandler {
	return &GoalHandler{
		goalService:     goalService,
		calendarService: calendarService,
	}
}

// ListGoals returns goals with progress for ?childId=
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	goals, err := h.goalService.List(actor, queryChildID(r))
	if err != nil {
		respondWithServiceError(w, "Error listing goals", err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// CreateGoal adds a savings goal for a child
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var in service.GoalInput
	if !decodeJSON(w, r, &in) {
		return
	}

	goal, err := h.goalService.Create(actor, childID, in)
	if err != nil {
		respondWithServiceError(w, "Error creating goal", err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// UpdateGoal edits a goal
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	goalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.GoalInput
	if !decodeJSON(w, r, &in) {
		return
	}

	goal, err := h.goalService.Update(actor, goalID, in)
	if err != nil {
		respondWithServiceError(w, "Error updating goal", err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// DeleteGoal removes a goal
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	goalID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.goalService.Delete(actor, goalID); err != nil {
		respondWithServiceError(w, "Error deleting goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents returns calendar events for ?childId=. With ?date= only the
// events happening on that day are returned.
func (h *GoalHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID := queryChildID(r)

	date := r.URL.Query().Get("date")
	if date == "" {
		events, err := h.calendarService.List(actor, childID)
		if err != nil {
			respondWithServiceError(w, "Error listing events", err)
			return
		}
		writeJSON(w, http.StatusOK, events)
		return
	}

	day, err := models.ParseDate(date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "", nil)
		return
	}
	events, err := h.calendarService.EventsOn(actor, childID, day)
	if err != nil {
		respondWithServiceError(w, "Error listing events", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// CreateEvent adds a calendar event for a child
func (h *GoalHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var in service.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}

	event, err := h.calendarService.Create(actor, childID, in)
	if err != nil {
		respondWithServiceError(w, "Error creating event", err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// DeleteEvent removes a calendar event
func (h *GoalHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.calendarService.Delete(actor, eventID); err != nil {
		respondWithServiceError(w, "Error deleting event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

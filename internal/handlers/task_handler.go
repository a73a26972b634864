package handlers

import (
	"net/http"

	"chorequest/internal/service"
)

// TaskHandler exposes the task lifecycle
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// ListTasks returns tasks for ?childId=, or the whole family for a parent
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	tasks, err := h.taskService.ListTasks(actor, queryChildID(r))
	if err != nil {
		respondWithServiceError(w, "Error listing tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// PendingApproval lists submitted tasks awaiting a decision
func (h *TaskHandler) PendingApproval(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	tasks, err := h.taskService.PendingApproval(actor)
	if err != nil {
		respondWithServiceError(w, "Error listing pending tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CreateTask lets a parent assign a task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var in service.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	task, err := h.taskService.CreateTask(actor, in)
	if err != nil {
		respondWithServiceError(w, "Error creating task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

type extraTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	ProofImage  string `json:"proofImage"`
}

// CreateExtraTask records work a child did on their own initiative
func (h *TaskHandler) CreateExtraTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	var req extraTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" {
		req.Date = h.taskService.Today()
	}

	task, err := h.taskService.CreateExtraTask(r.Context(), actor, req.Title, req.Description, req.Date, req.ProofImage)
	if err != nil {
		respondWithServiceError(w, "Error creating extra task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask edits a task's parent-controlled fields
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}

	task, err := h.taskService.Update(actor, taskID, in)
	if err != nil {
		respondWithServiceError(w, "Error updating task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(actor, taskID); err != nil {
		respondWithServiceError(w, "Error deleting task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitRequest struct {
	ProofImage string `json:"proofImage"`
}

// Submit hands a task in for approval
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req submitRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.Submit(r.Context(), actor, taskID, req.ProofImage, h.taskService.Today())
	if err != nil {
		respondWithServiceError(w, "Error submitting task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type approveRequest struct {
	Rating *service.Reward `json:"rating,omitempty"`
}

// Approve credits the child and regenerates recurring tasks
func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req approveRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.taskService.Approve(r.Context(), actor, taskID, req.Rating, h.taskService.Today())
	if err != nil {
		respondWithServiceError(w, "Error approving task", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type rejectRequest struct {
	Feedback string `json:"feedback"`
}

// Reject sends a task back with feedback
func (h *TaskHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.Reject(r.Context(), actor, taskID, req.Feedback)
	if err != nil {
		respondWithServiceError(w, "Error rejecting task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

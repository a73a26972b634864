package handlers

import (
	"net/http"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

// RewardHandler exposes balances, conversion, payouts and allowance
type RewardHandler struct {
	ledgerService    *service.LedgerService
	allowanceService *service.AllowanceService
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(ledgerService *service.LedgerService, allowanceService *service.AllowanceService) *RewardHandler {
	return &RewardHandler{
		ledgerService:    ledgerService,
		allowanceService: allowanceService,
	}
}

type creditRequest struct {
	Points int64 `json:"points"`
	Money  int64 `json:"money"`
}

// Credit adjusts a child's points and money by signed deltas
func (h *RewardHandler) Credit(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var req creditRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balances, err := h.ledgerService.CreditChild(actor, childID, req.Points, req.Money)
	if err != nil {
		respondWithServiceError(w, "Error crediting child", err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

type convertRequest struct {
	Points int64 `json:"points"`
}

// Convert exchanges points for money
func (h *RewardHandler) Convert(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var req convertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balances, err := h.ledgerService.ConvertPoints(actor, childID, req.Points)
	if err != nil {
		respondWithServiceError(w, "Error converting points", err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// Payout pays out a child's whole balance
func (h *RewardHandler) Payout(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}

	record, err := h.ledgerService.Payout(r.Context(), actor, childID)
	if err != nil {
		respondWithServiceError(w, "Error paying out", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// Payouts lists payout history for ?childId=
func (h *RewardHandler) Payouts(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	records, err := h.ledgerService.Payouts(actor, queryChildID(r))
	if err != nil {
		respondWithServiceError(w, "Error listing payouts", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Allowance projects the current period's allowance
func (h *RewardHandler) Allowance(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}

	projection, err := h.allowanceService.Projection(actor, childID)
	if err != nil {
		respondWithServiceError(w, "Error projecting allowance", err)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

type allowanceRequest struct {
	Settings *models.AllowanceSettings `json:"settings"`
}

// UpdateAllowance sets or, with null settings, clears a child's allowance
func (h *RewardHandler) UpdateAllowance(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActorFromContext(r.Context())
	childID, ok := pathID(w, r, "childID")
	if !ok {
		return
	}
	var req allowanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.allowanceService.UpdateSettings(actor, childID, req.Settings)
	if err != nil {
		respondWithServiceError(w, "Error updating allowance", err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

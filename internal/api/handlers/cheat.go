package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/patified/patified-backend/internal/service"
)

// CheatHandler fronts the flagged-submission audit trail. Record is called by
// the proof-photo validator service, not by end users.
type CheatHandler struct {
	cheatService *service.CheatService
}

func NewCheatHandler(cheatService *service.CheatService) *CheatHandler {
	return &CheatHandler{cheatService: cheatService}
}

func (h *CheatHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req service.CheatReportInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := h.cheatService.Record(r.Context(), req)
	if err != nil {
		respondError(w, "CheatHandler.Record", err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (h *CheatHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.cheatService.Overview(r.Context())
	if err != nil {
		respondError(w, "CheatHandler.Overview", err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

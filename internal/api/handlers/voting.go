package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/api/middleware"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/service"
)

type VotingHandler struct {
	consensusService *service.ConsensusService
}

func NewVotingHandler(consensusService *service.ConsensusService) *VotingHandler {
	return &VotingHandler{consensusService: consensusService}
}

type ProposeRankingRequest struct {
	Entries []service.RankingEntryInput `json:"entries"`
}

type ProposeRankingResponse struct {
	Version int                    `json:"version"`
	Ranking []service.RankingEntry `json:"ranking"`
}

type CastVoteRequest struct {
	Version  int  `json:"version"`
	Approved bool `json:"approved"`
}

func (h *VotingHandler) Propose(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	var req ProposeRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	version, ranking, err := h.consensusService.Propose(r.Context(), lobbyID, userID, req.Entries)
	if err != nil {
		respondError(w, "VotingHandler.Propose", err)
		return
	}

	writeJSON(w, http.StatusOK, ProposeRankingResponse{Version: version, Ranking: ranking})
}

func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := domain.VoteStatusRejected
	if req.Approved {
		status = domain.VoteStatusApproved
	}

	result, err := h.consensusService.Vote(r.Context(), lobbyID, userID, req.Version, status)
	if err != nil {
		respondError(w, "VotingHandler.Vote", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *VotingHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	status, err := h.consensusService.Status(r.Context(), lobbyID, userID)
	if err != nil {
		respondError(w, "VotingHandler.Status", err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *VotingHandler) authedLobbyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	lobbyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid lobby ID", http.StatusBadRequest)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, lobbyID, true
}

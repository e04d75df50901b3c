package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/service"
)

type MatchHandler struct {
	matchService *service.MatchService
}

func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type PodiumEntryResponse struct {
	Position   int     `json:"position"`
	UserID     *string `json:"userId,omitempty"`
	PlayerName string  `json:"playerName"`
}

type MatchResponse struct {
	ID        string                `json:"id"`
	Game      string                `json:"game"`
	PhotoURL  *string               `json:"photoUrl,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	Podium    []PodiumEntryResponse `json:"podium"`
}

func matchResponse(match *domain.Match) MatchResponse {
	resp := MatchResponse{
		ID:        match.ID.String(),
		Game:      match.Game,
		PhotoURL:  match.PhotoURL,
		CreatedAt: match.CreatedAt,
		Podium:    make([]PodiumEntryResponse, 0, len(match.Podium)),
	}
	for _, entry := range match.Podium {
		row := PodiumEntryResponse{
			Position:   entry.Position,
			PlayerName: entry.PlayerName,
		}
		if entry.UserID != nil {
			id := entry.UserID.String()
			row.UserID = &id
		}
		resp.Podium = append(resp.Podium, row)
	}
	return resp
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	matches, err := h.matchService.ListMatches(r.Context(), limit, offset)
	if err != nil {
		respondError(w, "MatchHandler.List", err)
		return
	}

	resp := make([]MatchResponse, 0, len(matches))
	for _, match := range matches {
		resp = append(resp, matchResponse(match))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		respondError(w, "MatchHandler.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse(match))
}

func (h *MatchHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.matchService.Leaderboard(r.Context())
	if err != nil {
		respondError(w, "MatchHandler.Leaderboard", err)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

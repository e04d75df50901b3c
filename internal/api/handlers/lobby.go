package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/api/middleware"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/service"
)

const maxPhotoBytes = 10 << 20 // 10 MB

type LobbyHandler struct {
	lobbyService *service.LobbyService
}

func NewLobbyHandler(lobbyService *service.LobbyService) *LobbyHandler {
	return &LobbyHandler{lobbyService: lobbyService}
}

type CreateLobbyRequest struct {
	Game string `json:"game"`
}

type JoinLobbyRequest struct {
	Code string `json:"code"`
}

type LobbyParticipantResponse struct {
	UserID        string    `json:"userId"`
	DisplayName   string    `json:"displayName"`
	SteamUsername *string   `json:"steamUsername,omitempty"`
	IsReady       bool      `json:"isReady"`
	IsHost        bool      `json:"isHost"`
	JoinedAt      time.Time `json:"joinedAt"`
}

type LobbyResponse struct {
	ID              string                     `json:"id"`
	Code            string                     `json:"code"`
	Game            string                     `json:"game"`
	Status          string                     `json:"status"`
	HostID          string                     `json:"hostId"`
	PhotoURL        *string                    `json:"photoUrl,omitempty"`
	VotingStartedAt *time.Time                 `json:"votingStartedAt,omitempty"`
	VotingExpiresAt *time.Time                 `json:"votingExpiresAt,omitempty"`
	MatchID         *string                    `json:"matchId,omitempty"`
	ExpiresAt       time.Time                  `json:"expiresAt"`
	CreatedAt       time.Time                  `json:"createdAt"`
	Participants    []LobbyParticipantResponse `json:"participants"`
}

func lobbyResponse(lobby *domain.Lobby) LobbyResponse {
	resp := LobbyResponse{
		ID:              lobby.ID.String(),
		Code:            lobby.Code,
		Game:            lobby.Game,
		Status:          string(lobby.Status),
		HostID:          lobby.HostID.String(),
		PhotoURL:        lobby.PhotoURL,
		VotingStartedAt: lobby.VotingStartedAt,
		VotingExpiresAt: lobby.VotingExpiresAt,
		ExpiresAt:       lobby.ExpiresAt,
		CreatedAt:       lobby.CreatedAt,
		Participants:    make([]LobbyParticipantResponse, 0, len(lobby.Participants)),
	}
	if lobby.MatchID != nil {
		id := lobby.MatchID.String()
		resp.MatchID = &id
	}
	for _, p := range lobby.Participants {
		entry := LobbyParticipantResponse{
			UserID:   p.UserID.String(),
			IsReady:  p.IsReady,
			IsHost:   p.UserID == lobby.HostID,
			JoinedAt: p.JoinedAt,
		}
		if p.User != nil {
			entry.DisplayName = p.User.DisplayName
			entry.SteamUsername = p.User.SteamUsername
		}
		resp.Participants = append(resp.Participants, entry)
	}
	return resp
}

func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Game == "" {
		http.Error(w, "Game is required", http.StatusBadRequest)
		return
	}

	lobby, err := h.lobbyService.CreateLobby(r.Context(), userID, req.Game)
	if err != nil {
		respondError(w, "LobbyHandler.Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, lobbyResponse(lobby))
}

func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lobby, err := h.lobbyService.GetLobby(r.Context(), chi.URLParam(r, "idOrCode"), userID)
	if err != nil {
		respondError(w, "LobbyHandler.Get", err)
		return
	}

	writeJSON(w, http.StatusOK, lobbyResponse(lobby))
}

func (h *LobbyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	lobbies, err := h.lobbyService.ListMyLobbies(r.Context(), userID)
	if err != nil {
		respondError(w, "LobbyHandler.ListMine", err)
		return
	}

	resp := make([]LobbyResponse, 0, len(lobbies))
	for _, lobby := range lobbies {
		resp = append(resp, lobbyResponse(lobby))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req JoinLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		http.Error(w, "Lobby code is required", http.StatusBadRequest)
		return
	}

	lobby, err := h.lobbyService.JoinByCode(r.Context(), req.Code, userID)
	if err != nil {
		respondError(w, "LobbyHandler.Join", err)
		return
	}

	writeJSON(w, http.StatusOK, lobbyResponse(lobby))
}

func (h *LobbyHandler) ToggleReady(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	ready, err := h.lobbyService.ToggleReady(r.Context(), lobbyID, userID)
	if err != nil {
		respondError(w, "LobbyHandler.ToggleReady", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isReady": ready})
}

func (h *LobbyHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	if err := h.lobbyService.Start(r.Context(), lobbyID, userID); err != nil {
		respondError(w, "LobbyHandler.Start", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *LobbyHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Photo file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ref, err := h.lobbyService.UploadProofPhoto(r.Context(), lobbyID, userID, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, "LobbyHandler.UploadPhoto", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"photoUrl": ref})
}

func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	if err := h.lobbyService.Leave(r.Context(), lobbyID, userID); err != nil {
		respondError(w, "LobbyHandler.Leave", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *LobbyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	if err := h.lobbyService.Cancel(r.Context(), lobbyID, userID); err != nil {
		respondError(w, "LobbyHandler.Cancel", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *LobbyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	userID, lobbyID, ok := h.authedLobbyID(w, r)
	if !ok {
		return
	}

	lobby, err := h.lobbyService.Restart(r.Context(), lobbyID, userID)
	if err != nil {
		respondError(w, "LobbyHandler.Restart", err)
		return
	}

	writeJSON(w, http.StatusOK, lobbyResponse(lobby))
}

func (h *LobbyHandler) authedLobbyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
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

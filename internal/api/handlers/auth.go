package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/patified/patified-backend/internal/api/middleware"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Password      string  `json:"password"`
	DisplayName   string  `json:"displayName"`
	SteamUsername *string `json:"steamUsername"`
}

type LoginRequest struct {
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	DisplayName   *string `json:"displayName"`
	SteamUsername *string `json:"steamUsername"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"displayName"`
	SteamUsername *string `json:"steamUsername,omitempty"`
}

func userResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:            user.ID.String(),
		DisplayName:   user.DisplayName,
		SteamUsername: user.SteamUsername,
	}
}

func authResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:         userResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Password == "" || req.DisplayName == "" {
		http.Error(w, "Password and display name are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Register(r.Context(), service.RegisterInput{
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		SteamUsername: req.SteamUsername,
	})
	if err != nil {
		if errors.Is(err, service.ErrDisplayNameExists) {
			http.Error(w, "Display name already exists", http.StatusConflict)
			return
		}
		respondError(w, "AuthHandler.Register", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse(result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.DisplayName == "" || req.Password == "" {
		http.Error(w, "Display name and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		respondError(w, "AuthHandler.Login", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse(result))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "Refresh token required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.RefreshTokens(r.Context(), userID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrSessionExpired) {
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		respondError(w, "AuthHandler.Refresh", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse(result))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondError(w, "AuthHandler.Me", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DisplayName != nil && *req.DisplayName == "" {
		http.Error(w, "Display name cannot be empty", http.StatusBadRequest)
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), userID, req.DisplayName, req.SteamUsername)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNameExists) {
			http.Error(w, "Display name already exists", http.StatusConflict)
			return
		}
		respondError(w, "AuthHandler.UpdateProfile", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		respondError(w, "AuthHandler.Logout", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

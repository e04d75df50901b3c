package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Lobby struct {
	ID           string        `json:"id"`
	Code         string        `json:"code"`
	Game         string        `json:"game"`
	Status       string        `json:"status"`
	HostID       string        `json:"hostId"`
	MatchID      *string       `json:"matchId"`
	Participants []Participant `json:"participants"`
}

type Participant struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	IsReady     bool   `json:"isReady"`
	IsHost      bool   `json:"isHost"`
}

type RankingEntry struct {
	Position   int     `json:"position"`
	UserID     *string `json:"userId"`
	PlayerName string  `json:"playerName"`
}

type ProposeResponse struct {
	Version int            `json:"version"`
	Ranking []RankingEntry `json:"ranking"`
}

type VoteResult struct {
	Status    string  `json:"status"`
	Version   int     `json:"version"`
	Completed bool    `json:"completed"`
	MatchID   *string `json:"matchId"`
}

// RegisterUser creates a new user account
func (c *APIClient) RegisterUser(baseName string) (*User, string, error) {
	displayName := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := map[string]string{
		"displayName": displayName,
		"password":    "testpassword123",
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("register failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// CreateLobby creates a new lobby for a game
func (c *APIClient) CreateLobby(token, game string) (*Lobby, error) {
	body := map[string]string{"game": game}

	resp, err := c.post("/lobbies", body, token)
	if err != nil {
		return nil, fmt.Errorf("create lobby request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create lobby failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var lobby Lobby
	if err := json.NewDecoder(resp.Body).Decode(&lobby); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &lobby, nil
}

// GetLobby fetches lobby details
func (c *APIClient) GetLobby(token, idOrCode string) (*Lobby, error) {
	resp, err := c.get("/lobbies/"+idOrCode, token)
	if err != nil {
		return nil, fmt.Errorf("get lobby request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get lobby failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var lobby Lobby
	if err := json.NewDecoder(resp.Body).Decode(&lobby); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &lobby, nil
}

// JoinLobby joins a user to a lobby by code
func (c *APIClient) JoinLobby(token, code string) error {
	body := map[string]string{"code": code}

	resp, err := c.post("/lobbies/join", body, token)
	if err != nil {
		return fmt.Errorf("join lobby request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("join lobby failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// ToggleReady flips the player's ready status
func (c *APIClient) ToggleReady(token, lobbyID string) error {
	resp, err := c.post("/lobbies/"+lobbyID+"/ready", nil, token)
	if err != nil {
		return fmt.Errorf("ready request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ready failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// StartLobby moves a lobby into IN_PROGRESS (host only)
func (c *APIClient) StartLobby(token, lobbyID string) error {
	resp, err := c.post("/lobbies/"+lobbyID+"/start", nil, token)
	if err != nil {
		return fmt.Errorf("start request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("start failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// UploadPhoto submits a proof photo, moving the lobby into VOTING
func (c *APIClient) UploadPhoto(token, lobbyID string, photo []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "proof.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(photo); err != nil {
		return err
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/lobbies/"+lobbyID+"/photo", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("photo upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("photo upload failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// ProposeRanking submits a podium for the lobby's match
func (c *APIClient) ProposeRanking(token, lobbyID string, entries []RankingEntry) (*ProposeResponse, error) {
	body := map[string]interface{}{"entries": entries}

	resp, err := c.post("/lobbies/"+lobbyID+"/ranking", body, token)
	if err != nil {
		return nil, fmt.Errorf("propose request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("propose failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result ProposeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Vote approves or rejects the latest ranking proposal
func (c *APIClient) Vote(token, lobbyID string, approved bool) (*VoteResult, error) {
	body := map[string]bool{"approved": approved}

	resp, err := c.post("/lobbies/"+lobbyID+"/vote", body, token)
	if err != nil {
		return nil, fmt.Errorf("vote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vote failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result VoteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

func (c *APIClient) get(path, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// Seeds a local server with demo data: a handful of players who have
// played several full matches, so the leaderboard and match history have
// something to show. Run against a freshly started server:
//
//	go run scripts/seed-demo.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

var apiBase = "http://localhost:8080/api/v1"

// Minimal valid 1x1 PNG used as the proof photo for every seeded match.
var demoPhoto = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type player struct {
	DisplayName string
	Token       string
	UserID      string
}

type lobbyInfo struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

func registerPlayer(displayName string) (*player, error) {
	body, _ := json.Marshal(map[string]string{
		"displayName": displayName,
		"password":    "testpassword123",
	})

	resp, err := http.Post(apiBase+"/auth/register", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registration failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		User struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	return &player{
		DisplayName: result.User.DisplayName,
		Token:       result.AccessToken,
		UserID:      result.User.ID,
	}, nil
}

func post(token, path string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	} else {
		buf.WriteString("{}")
	}

	req, _ := http.NewRequest("POST", apiBase+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return http.DefaultClient.Do(req)
}

func expectOK(resp *http.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", what, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed (%d): %s", what, resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func createLobby(token, game string) (*lobbyInfo, error) {
	resp, err := post(token, "/lobbies", map[string]string{"game": game})
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create lobby failed (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var lobby lobbyInfo
	if err := json.NewDecoder(resp.Body).Decode(&lobby); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &lobby, nil
}

func uploadPhoto(token, lobbyID string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "proof.png")
	if err != nil {
		return err
	}
	if _, err := part.Write(demoPhoto); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, _ := http.NewRequest("POST", apiBase+"/lobbies/"+lobbyID+"/photo", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	return expectOK(resp, err, "upload photo")
}

// playMatch runs one full round: lobby, ready, start, photo, ranking, votes.
// The finish order is the players slice order.
func playMatch(game string, players []*player) error {
	host := players[0]

	lobby, err := createLobby(host.Token, game)
	if err != nil {
		return err
	}

	for _, p := range players[1:] {
		resp, err := post(p.Token, "/lobbies/join", map[string]string{"code": lobby.Code})
		if err := expectOK(resp, err, "join lobby"); err != nil {
			return err
		}
	}

	for _, p := range players {
		resp, err := post(p.Token, "/lobbies/"+lobby.ID+"/ready", nil)
		if err := expectOK(resp, err, "ready up"); err != nil {
			return err
		}
	}

	resp, err := post(host.Token, "/lobbies/"+lobby.ID+"/start", nil)
	if err := expectOK(resp, err, "start lobby"); err != nil {
		return err
	}

	if err := uploadPhoto(host.Token, lobby.ID); err != nil {
		return err
	}

	entries := make([]map[string]interface{}, len(players))
	for i, p := range players {
		entries[i] = map[string]interface{}{"position": i + 1, "userId": p.UserID}
	}
	resp, err = post(host.Token, "/lobbies/"+lobby.ID+"/ranking", map[string]interface{}{"entries": entries})
	if err := expectOK(resp, err, "propose ranking"); err != nil {
		return err
	}

	for _, p := range players {
		resp, err := post(p.Token, "/lobbies/"+lobby.ID+"/vote", map[string]interface{}{"approved": true})
		if err := expectOK(resp, err, "cast vote"); err != nil {
			return err
		}
	}
	return nil
}

func generateName(base string) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	random := make([]byte, 4)
	for i := range random {
		random[i] = letters[rand.Intn(len(letters))]
	}
	return fmt.Sprintf("%s_%s", base, string(random))
}

func main() {
	rand.Seed(time.Now().UnixNano())

	if env := os.Getenv("API_URL"); env != "" {
		apiBase = env + "/api/v1"
	}

	names := []string{"pat", "sam", "alex", "charlie"}
	games := []string{"Mario Kart", "Smash Bros", "Mario Party"}
	rounds := 6

	fmt.Printf("Registering %d players...\n", len(names))
	players := make([]*player, 0, len(names))
	for _, base := range names {
		p, err := registerPlayer(generateName(base))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to register %s: %v\n", base, err)
			os.Exit(1)
		}
		players = append(players, p)
		fmt.Printf("  ✓ %s\n", p.DisplayName)
	}

	fmt.Printf("\nPlaying %d matches...\n", rounds)
	for i := 0; i < rounds; i++ {
		// Shuffle so wins spread unevenly across the group.
		order := make([]*player, len(players))
		copy(order, players)
		rand.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })

		game := games[i%len(games)]
		if err := playMatch(game, order); err != nil {
			fmt.Fprintf(os.Stderr, "Match %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ Match %d (%s), winner %s\n", i+1, game, order[0].DisplayName)
	}

	fmt.Println("\nDone. Check /api/v1/leaderboard and /api/v1/matches.")
}

package main

import (
	"flag"
	"fmt"
	"os"
)

// Minimal valid 1x1 PNG used as a stand-in proof photo.
var stubPhoto = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "populate":
		populateCmd(apiURL, args)
	case "status":
		statusCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Lobby Simulator - Development tool for exercising the lobby flow

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Run a whole match: create lobby, join players, start, upload
            photo, propose a ranking and vote it through
  populate  Add fake users to an existing lobby
  status    Show a lobby's current state
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Run a full 4-player match end to end
  simulator full --count=4

  # Create a lobby with 3 fake players and stop before starting
  simulator full --count=3 --wait

  # Add 2 more users to an existing lobby
  simulator populate --lobby=ABC123 --count=2`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	count := fs.Int("count", 4, "Total number of players including the host")
	game := fs.String("game", "Mario Kart", "Game name for the lobby")
	wait := fs.Bool("wait", false, "Stop after players join, leaving the lobby in WAITING")
	fs.Parse(args)

	if *count < 2 {
		fmt.Println("Error: --count must be at least 2")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Lobby Simulator: Full Flow ===")
	fmt.Println()

	// 1. Create lobby with host
	fmt.Print("Creating host user and lobby... ")
	host, hostToken, err := client.RegisterUser("Host")
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (user: %s)\n", host.DisplayName)

	lobby, err := client.CreateLobby(hostToken, *game)
	if err != nil {
		fmt.Printf("Failed to create lobby: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Lobby created: %s (code: %s)\n", lobby.ID, lobby.Code)

	// 2. Create and join additional users
	type player struct {
		user  *User
		token string
	}
	players := []player{{user: host, token: hostToken}}

	fmt.Println()
	fmt.Printf("Adding %d more players:\n", *count-1)
	for i := 1; i < *count; i++ {
		displayName := fmt.Sprintf("Player%d", i)
		user, token, err := client.RegisterUser(displayName)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, *count, err)
			os.Exit(1)
		}

		if err := client.JoinLobby(token, lobby.Code); err != nil {
			fmt.Printf("  [%d/%d] FAILED to join lobby: %v\n", i+1, *count, err)
			os.Exit(1)
		}

		players = append(players, player{user: user, token: token})
		fmt.Printf("  [%d/%d] %s joined\n", i+1, *count, user.DisplayName)
	}

	// 3. All players ready up
	fmt.Println()
	fmt.Print("Setting all players ready... ")
	for _, p := range players {
		if err := client.ToggleReady(p.token, lobby.ID); err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Println("OK")

	if *wait {
		fmt.Println()
		fmt.Println("=========================================")
		fmt.Println("  LOBBY WAITING")
		fmt.Println("=========================================")
		fmt.Println()
		fmt.Printf("  Join code: %s\n", lobby.Code)
		fmt.Println()
		return
	}

	// 4. Host starts the match
	fmt.Print("Starting match... ")
	if err := client.StartLobby(hostToken, lobby.ID); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	// 5. Host uploads the proof photo
	fmt.Print("Uploading proof photo... ")
	if err := client.UploadPhoto(hostToken, lobby.ID, stubPhoto); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	// 6. Host proposes a ranking in join order
	fmt.Print("Proposing ranking... ")
	entries := make([]RankingEntry, 0, len(players))
	for i, p := range players {
		id := p.user.ID
		entries = append(entries, RankingEntry{Position: i + 1, UserID: &id})
	}
	proposal, err := client.ProposeRanking(hostToken, lobby.ID, entries)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (version %d)\n", proposal.Version)

	// 7. Everyone approves
	fmt.Println("Casting approvals:")
	var final *VoteResult
	for i, p := range players {
		result, err := client.Vote(p.token, lobby.ID, true)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i+1, len(players), err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s approved\n", i+1, len(players), p.user.DisplayName)
		final = result
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  MATCH COMPLETE")
	fmt.Println("=========================================")
	fmt.Println()
	if final != nil && final.MatchID != nil {
		fmt.Printf("  Match ID: %s\n", *final.MatchID)
	}
	fmt.Printf("  Lobby:    %s (code: %s)\n", lobby.ID, lobby.Code)
	fmt.Println()
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	lobbyCode := fs.String("lobby", "", "Lobby join code (required)")
	count := fs.Int("count", 3, "Number of users to add")
	fs.Parse(args)

	if *lobbyCode == "" {
		fmt.Println("Error: --lobby is required")
		fmt.Println("\nUsage: simulator populate --lobby=ABC123 [--count=3]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Printf("Adding %d players to lobby %s...\n\n", *count, *lobbyCode)

	for i := 0; i < *count; i++ {
		displayName := fmt.Sprintf("Player%d", i+1)
		user, token, err := client.RegisterUser(displayName)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, *count, err)
			continue
		}

		if err := client.JoinLobby(token, *lobbyCode); err != nil {
			fmt.Printf("  [%d/%d] FAILED to join: %v\n", i+1, *count, err)
			continue
		}

		fmt.Printf("  [%d/%d] %s joined\n", i+1, *count, user.DisplayName)
	}

	fmt.Println()
	fmt.Println("Done!")
}

func statusCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	lobbyCode := fs.String("lobby", "", "Lobby ID or join code (required)")
	fs.Parse(args)

	if *lobbyCode == "" {
		fmt.Println("Error: --lobby is required")
		fmt.Println("\nUsage: simulator status --lobby=ABC123")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	// Lobby reads require membership, so register a throwaway user and join.
	_, token, err := client.RegisterUser("Observer")
	if err != nil {
		fmt.Printf("Failed to create observer: %v\n", err)
		os.Exit(1)
	}
	if err := client.JoinLobby(token, *lobbyCode); err != nil {
		fmt.Printf("Failed to join lobby: %v\n", err)
		os.Exit(1)
	}

	lobby, err := client.GetLobby(token, *lobbyCode)
	if err != nil {
		fmt.Printf("Failed to get lobby: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Lobby %s (code: %s)\n", lobby.ID, lobby.Code)
	fmt.Printf("  Game:   %s\n", lobby.Game)
	fmt.Printf("  Status: %s\n", lobby.Status)
	fmt.Printf("  Players (%d):\n", len(lobby.Participants))
	for _, p := range lobby.Participants {
		marker := " "
		if p.IsHost {
			marker = "*"
		}
		fmt.Printf("   %s %s (ready: %v)\n", marker, p.DisplayName, p.IsReady)
	}
}

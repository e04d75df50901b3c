package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/patified/patified-backend/internal/relay"
	"github.com/patified/patified-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lobbyJSON struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Game         string  `json:"game"`
	Status       string  `json:"status"`
	HostID       string  `json:"hostId"`
	PhotoURL     *string `json:"photoUrl"`
	MatchID      *string `json:"matchId"`
	Participants []struct {
		UserID  string `json:"userId"`
		IsReady bool   `json:"isReady"`
		IsHost  bool   `json:"isHost"`
	} `json:"participants"`
}

func doJSON(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()
	req := testutil.CreateAuthenticatedRequest(t, method, url, body, token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func uploadPhoto(t *testing.T, ts *testutil.TestServer, lobbyID, token string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", "proof.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/lobbies/"+lobbyID+"/photo"), &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLobbyFlow_EndToEnd(t *testing.T) {
	ts := testutil.NewTestServer(t)

	host, hostToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	guest, guestToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	// Create
	resp := doJSON(t, http.MethodPost, ts.APIURL("/lobbies"), map[string]string{"game": "Mario Kart"}, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var lobby lobbyJSON
	testutil.AssertJSONResponse(t, resp, &lobby)
	assert.Len(t, lobby.Code, 6)
	assert.Equal(t, "WAITING", lobby.Status)
	assert.Equal(t, host.ID.String(), lobby.HostID)

	// The guest watches the lobby channel over the websocket.
	ws := testutil.NewWSClient(t, ts, guestToken)
	defer ws.Close()
	ws.Subscribe(lobby.Code)

	// Join
	resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/join"), map[string]string{"code": lobby.Code}, guestToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var joined lobbyJSON
	testutil.AssertJSONResponse(t, resp, &joined)
	assert.Len(t, joined.Participants, 2)

	event := ws.ReadEvent(5 * time.Second)
	assert.Equal(t, relay.EventParticipantJoined, event.Name)

	// Ready up
	for _, token := range []string{hostToken, guestToken} {
		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/ready"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	}

	// Start
	resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/start"), nil, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Proof photo moves the lobby into VOTING.
	resp = uploadPhoto(t, ts, lobby.ID, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doJSON(t, http.MethodGet, ts.APIURL("/lobbies/"+lobby.ID), nil, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var voting lobbyJSON
	testutil.AssertJSONResponse(t, resp, &voting)
	assert.Equal(t, "VOTING", voting.Status)

	// Propose a ranking and both members approve it.
	entries := []map[string]interface{}{
		{"position": 1, "userId": guest.ID.String()},
		{"position": 2, "userId": host.ID.String()},
	}
	resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/ranking"), map[string]interface{}{"entries": entries}, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var proposal struct {
		Version int `json:"version"`
	}
	testutil.AssertJSONResponse(t, resp, &proposal)
	assert.Equal(t, 1, proposal.Version)

	resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/vote"), map[string]interface{}{"approved": true}, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var firstVote struct {
		Completed bool `json:"completed"`
	}
	testutil.AssertJSONResponse(t, resp, &firstVote)
	assert.False(t, firstVote.Completed)

	resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/vote"), map[string]interface{}{"approved": true}, guestToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var finalVote struct {
		Completed bool    `json:"completed"`
		MatchID   *string `json:"matchId"`
	}
	testutil.AssertJSONResponse(t, resp, &finalVote)
	assert.True(t, finalVote.Completed)
	require.NotNil(t, finalVote.MatchID)

	// The match is queryable and carries the agreed podium.
	resp = doJSON(t, http.MethodGet, ts.APIURL("/matches/"+*finalVote.MatchID), nil, guestToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var match struct {
		Game   string `json:"game"`
		Podium []struct {
			Position   int     `json:"position"`
			UserID     *string `json:"userId"`
			PlayerName string  `json:"playerName"`
		} `json:"podium"`
	}
	testutil.AssertJSONResponse(t, resp, &match)
	assert.Equal(t, "Mario Kart", match.Game)
	require.Len(t, match.Podium, 2)
	assert.Equal(t, guest.ID.String(), *match.Podium[0].UserID)

	// Leaderboard reflects the win.
	resp = doJSON(t, http.MethodGet, ts.APIURL("/leaderboard"), nil, hostToken)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var rows []struct {
		UserID string `json:"userId"`
		Points int    `json:"points"`
	}
	testutil.AssertJSONResponse(t, resp, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, guest.ID.String(), rows[0].UserID)
	assert.Equal(t, 3, rows[0].Points)

	testutil.AssertEventPublished(t, ts.Relay, relay.EventVotingCompleted)
}

func TestLobbyEndpoints_Errors(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	t.Run("unauthenticated", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/lobbies"), map[string]string{"game": "Mario Kart"}, "")
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("missing game", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/lobbies"), map[string]string{}, token)
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("unknown code", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/lobbies/join"), map[string]string{"code": "ZZZZZZ"}, token)
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("unknown lobby id", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.APIURL("/lobbies/7b0d5ab2-0000-0000-0000-000000000000"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})

	t.Run("start before anyone is ready", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/lobbies"), map[string]string{"game": "Mario Kart"}, token)
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		var lobby lobbyJSON
		testutil.AssertJSONResponse(t, resp, &lobby)

		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/start"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("vote without a proposal", func(t *testing.T) {
		host, hostToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
		_, guestToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
		_ = host

		resp := doJSON(t, http.MethodPost, ts.APIURL("/lobbies"), map[string]string{"game": "Mario Kart"}, hostToken)
		var lobby lobbyJSON
		testutil.AssertJSONResponse(t, resp, &lobby)
		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/join"), map[string]string{"code": lobby.Code}, guestToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/ready"), nil, hostToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/ready"), nil, guestToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/start"), nil, hostToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp = uploadPhoto(t, ts, lobby.ID, hostToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = doJSON(t, http.MethodPost, ts.APIURL("/lobbies/"+lobby.ID+"/vote"), map[string]interface{}{"approved": true}, hostToken)
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})
}

func TestBearerAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"scheme only", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.APIURL("/lobbies/mine"), nil)
			require.NoError(t, err)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, tc.status)
		})
	}
}

func TestWebSocketAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/ws"))
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("bad token", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/ws?token=not.a.token"))
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("valid token connects", func(t *testing.T) {
		_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
		ws := testutil.NewWSClient(t, ts, token)
		ws.Close()
	})
}

func TestAuthEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	register := func(displayName, password string) *http.Response {
		return doJSON(t, http.MethodPost, ts.APIURL("/auth/register"), map[string]string{
			"displayName": displayName,
			"password":    password,
		}, "")
	}

	t.Run("register and me", func(t *testing.T) {
		resp := register("flowtester", "testpassword123")
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var auth testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &auth)
		require.NotEmpty(t, auth.AccessToken)

		resp = doJSON(t, http.MethodGet, ts.APIURL("/auth/me"), nil, auth.AccessToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var me struct {
			DisplayName string `json:"displayName"`
		}
		testutil.AssertJSONResponse(t, resp, &me)
		assert.Equal(t, "flowtester", me.DisplayName)
	})

	t.Run("duplicate display name", func(t *testing.T) {
		resp := register("flowtester", "otherpassword456")
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
			"displayName": "flowtester",
			"password":    "wrongpassword",
		}, "")
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("refresh rotates tokens", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.APIURL("/auth/login"), map[string]string{
			"displayName": "flowtester",
			"password":    "testpassword123",
		}, "")
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var auth testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &auth)

		resp = doJSON(t, http.MethodPost, ts.APIURL("/auth/refresh"), map[string]string{
			"refreshToken": auth.RefreshToken,
		}, auth.AccessToken)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var rotated testutil.AuthResponse
		testutil.AssertJSONResponse(t, resp, &rotated)
		assert.NotEqual(t, auth.RefreshToken, rotated.RefreshToken)
	})

	t.Run("update profile", func(t *testing.T) {
		_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
		resp := doJSON(t, http.MethodPut, ts.APIURL("/auth/me"), map[string]string{
			"steamUsername": "steam_flow",
		}, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var me struct {
			SteamUsername *string `json:"steamUsername"`
		}
		testutil.AssertJSONResponse(t, resp, &me)
		require.NotNil(t, me.SteamUsername)
		assert.Equal(t, "steam_flow", *me.SteamUsername)
	})
}

func TestCheatReportEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	body := map[string]interface{}{
		"userId":           user.ID.String(),
		"game":             "Mario Kart",
		"submittedRanking": json.RawMessage(`[{"position":1,"playerName":"self"}]`),
	}
	resp := doJSON(t, http.MethodPost, ts.APIURL("/cheat-reports"), body, token)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = doJSON(t, http.MethodGet, ts.APIURL("/cheat-reports"), nil, token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var overview struct {
		Offenders []struct {
			UserID   string `json:"userId"`
			Attempts int    `json:"attempts"`
		} `json:"offenders"`
		Reports []json.RawMessage `json:"reports"`
	}
	testutil.AssertJSONResponse(t, resp, &overview)
	require.Len(t, overview.Offenders, 1)
	assert.Equal(t, user.ID.String(), overview.Offenders[0].UserID)
	assert.Equal(t, 1, overview.Offenders[0].Attempts)
	assert.Len(t, overview.Reports, 1)
}

func TestHealthEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/health", ts.BaseURL()))
	require.NoError(t, err)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

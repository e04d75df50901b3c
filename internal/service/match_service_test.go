package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/repository/postgres"
	"github.com/patified/patified-backend/internal/service"
	"github.com/patified/patified-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func podium(users ...*domain.User) []*domain.ProposedRanking {
	entries := make([]*domain.ProposedRanking, 0, len(users))
	for i, u := range users {
		entry := &domain.ProposedRanking{Position: i + 1, PlayerName: "Guest"}
		if u != nil {
			id := u.ID
			entry.UserID = &id
			entry.PlayerName = u.PodiumName()
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestMatchService_RecordAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	matches := service.NewMatchService(repos.Match)
	ctx := context.Background()

	winner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	runnerUp, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	photoURL := "proofs/abc.png"
	match, err := matches.RecordMatch(ctx, "Mario Kart", &photoURL, winner.ID, podium(winner, runnerUp, nil))
	require.NoError(t, err)

	fetched, err := matches.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mario Kart", fetched.Game)
	require.NotNil(t, fetched.PhotoURL)
	assert.Equal(t, photoURL, *fetched.PhotoURL)
	require.Len(t, fetched.Podium, 3)
	assert.Equal(t, 1, fetched.Podium[0].Position)
	assert.Equal(t, winner.ID, *fetched.Podium[0].UserID)
	assert.Nil(t, fetched.Podium[2].UserID)
	assert.Equal(t, "Guest", fetched.Podium[2].PlayerName)

	t.Run("unknown id", func(t *testing.T) {
		_, err := matches.GetMatch(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMatchService_List(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	matches := service.NewMatchService(repos.Match)
	ctx := context.Background()

	player, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	for i := 0; i < 5; i++ {
		_, err := matches.RecordMatch(ctx, "Mario Kart", nil, player.ID, podium(player))
		require.NoError(t, err)
	}

	listed, err := matches.ListMatches(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	rest, err := matches.ListMatches(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	t.Run("bad limit falls back to default", func(t *testing.T) {
		listed, err := matches.ListMatches(ctx, -1, 0)
		require.NoError(t, err)
		assert.Len(t, listed, 5)
	})
}

func TestMatchService_Leaderboard(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	matches := service.NewMatchService(repos.Match)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().WithDisplayName("alice").Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().WithDisplayName("bob").Build(t, testDB.DB)
	carl, _ := testutil.NewUserBuilder().WithDisplayName("carl").Build(t, testDB.DB)

	// alice: two wins, one second place     -> 2*3 - 1 = 5
	// bob:   one win, two lower placements  -> 3 - 2   = 1
	// carl:  three lower placements         -> -3
	record := func(users ...*domain.User) {
		t.Helper()
		_, err := matches.RecordMatch(ctx, "Mario Kart", nil, users[0].ID, podium(users...))
		require.NoError(t, err)
	}
	record(alice, bob, carl)
	record(alice, carl, bob)
	record(bob, alice, carl)

	rows, err := matches.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, alice.ID, rows[0].UserID)
	assert.Equal(t, 2, rows[0].Wins)
	assert.Equal(t, 1, rows[0].LowerPlaces)
	assert.Equal(t, 5, rows[0].Points)

	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, bob.ID, rows[1].UserID)
	assert.Equal(t, 1, rows[1].Points)

	assert.Equal(t, 3, rows[2].Rank)
	assert.Equal(t, carl.ID, rows[2].UserID)
	assert.Equal(t, -3, rows[2].Points)
}

func TestMatchService_Leaderboard_SkipsGuests(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	matches := service.NewMatchService(repos.Match)
	ctx := context.Background()

	player, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	_, err := matches.RecordMatch(ctx, "Mario Kart", nil, player.ID, podium(nil, player))
	require.NoError(t, err)

	rows, err := matches.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, player.ID, rows[0].UserID)
	assert.Zero(t, rows[0].Wins)
	assert.Equal(t, 1, rows[0].LowerPlaces)
	assert.Equal(t, -1, rows[0].Points)
}

func TestMatchService_Leaderboard_TieBreaksByName(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	matches := service.NewMatchService(repos.Match)
	ctx := context.Background()

	zoe, _ := testutil.NewUserBuilder().WithDisplayName("zoe").Build(t, testDB.DB)
	amy, _ := testutil.NewUserBuilder().WithDisplayName("amy").Build(t, testDB.DB)

	_, err := matches.RecordMatch(ctx, "Mario Kart", nil, zoe.ID, podium(zoe))
	require.NoError(t, err)
	_, err = matches.RecordMatch(ctx, "Mario Kart", nil, amy.ID, podium(amy))
	require.NoError(t, err)

	rows, err := matches.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "amy", rows[0].Name)
	assert.Equal(t, "zoe", rows[1].Name)
}

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/repository/postgres"
	"github.com/patified/patified-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyRepository_UpdateStatus(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	lobby := testutil.NewLobbyBuilder().WithHost(host).Build(t, testDB.DB)

	t.Run("guarded transition succeeds once", func(t *testing.T) {
		err := repos.Lobby.UpdateStatus(ctx, lobby.ID, domain.LobbyStatusWaiting, map[string]interface{}{
			"status": domain.LobbyStatusInProgress,
		})
		require.NoError(t, err)

		reloaded, err := repos.Lobby.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LobbyStatusInProgress, reloaded.Status)
	})

	t.Run("stale expected status loses the race", func(t *testing.T) {
		err := repos.Lobby.UpdateStatus(ctx, lobby.ID, domain.LobbyStatusWaiting, map[string]interface{}{
			"status": domain.LobbyStatusCancelled,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)

		reloaded, err := repos.Lobby.GetByID(ctx, lobby.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LobbyStatusInProgress, reloaded.Status, "losing update must not apply")
	})

	t.Run("unknown lobby is a conflict too", func(t *testing.T) {
		err := repos.Lobby.UpdateStatus(ctx, uuid.New(), domain.LobbyStatusWaiting, map[string]interface{}{
			"status": domain.LobbyStatusCancelled,
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestVoteRepository_Upsert(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	lobby := testutil.NewLobbyBuilder().WithHost(host).WithStatus(domain.LobbyStatusVoting).Build(t, testDB.DB)

	vote := &domain.Vote{
		ID:      uuid.New(),
		LobbyID: lobby.ID,
		UserID:  host.ID,
		Version: 1,
		Status:  domain.VoteStatusRejected,
		VotedAt: time.Now(),
	}
	require.NoError(t, repos.Vote.Upsert(ctx, vote))

	// Same (lobby, user, version) overwrites instead of inserting.
	revote := &domain.Vote{
		ID:      uuid.New(),
		LobbyID: lobby.ID,
		UserID:  host.ID,
		Version: 1,
		Status:  domain.VoteStatusApproved,
		VotedAt: time.Now(),
	}
	require.NoError(t, repos.Vote.Upsert(ctx, revote))

	votes, err := repos.Vote.GetByVersion(ctx, lobby.ID, 1)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, domain.VoteStatusApproved, votes[0].Status)
}

func TestRankingRepository_VersionUniqueness(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	host, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	lobby := testutil.NewLobbyBuilder().WithHost(host).WithStatus(domain.LobbyStatusVoting).Build(t, testDB.DB)

	row := func() *domain.ProposedRanking {
		return &domain.ProposedRanking{
			ID:           uuid.New(),
			LobbyID:      lobby.ID,
			Version:      1,
			Position:     1,
			PlayerName:   "winner",
			ProposedByID: host.ID,
			CreatedAt:    time.Now(),
		}
	}

	require.NoError(t, repos.Ranking.CreateMany(ctx, []*domain.ProposedRanking{row()}))

	// A second proposal claiming the same (lobby, version, position) slot
	// must fail so the concurrent proposer can map it to a conflict.
	err := repos.Ranking.CreateMany(ctx, []*domain.ProposedRanking{row()})
	assert.Error(t, err)

	latest, err := repos.Ranking.LatestVersion(ctx, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, latest)
}

package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/relay"
	"github.com/patified/patified-backend/internal/repository"
	"github.com/patified/patified-backend/internal/storage"
	"gorm.io/gorm"
)

// ConsensusService manages versioned ranking proposals and vote tallying for
// lobbies in VOTING. A match result is finalized only when every currently
// active participant holds an APPROVED vote at the same version; any
// dissenter forces a re-proposal instead. Finalization claims the
// VOTING → COMPLETED transition through a status-guarded update, so it fires
// at most once per lobby no matter how many approvals land concurrently.
type ConsensusService struct {
	lobbyRepo       repository.LobbyRepository
	participantRepo repository.ParticipantRepository
	rankingRepo     repository.RankingRepository
	voteRepo        repository.VoteRepository
	photos          storage.PhotoStore
	matches         *MatchService
	relay           relay.Relay
}

func NewConsensusService(
	repos *repository.Repositories,
	photos storage.PhotoStore,
	matches *MatchService,
	rly relay.Relay,
) *ConsensusService {
	return &ConsensusService{
		lobbyRepo:       repos.Lobby,
		participantRepo: repos.Participant,
		rankingRepo:     repos.Ranking,
		voteRepo:        repos.Vote,
		photos:          photos,
		matches:         matches,
		relay:           rly,
	}
}

// RankingEntryInput is one caller-supplied podium slot. Position only
// establishes submission order; final positions are reassigned contiguously.
type RankingEntryInput struct {
	Position   int        `json:"position"`
	UserID     *uuid.UUID `json:"userId"`
	PlayerName string     `json:"playerName"`
}

// RankingEntry is a resolved slot of the proposal broadcast to clients.
type RankingEntry struct {
	Position   int        `json:"position"`
	UserID     *uuid.UUID `json:"userId"`
	PlayerName string     `json:"playerName"`
}

// Propose submits a new ranking version for the lobby. Entries must each
// resolve to an active participant or a non-empty guest name, and no
// occupant may appear twice. Votes against all older versions are purged.
func (s *ConsensusService) Propose(ctx context.Context, lobbyID, proposerID uuid.UUID, entries []RankingEntryInput) (int, []RankingEntry, error) {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return 0, nil, err
	}
	if lobby.Status != domain.LobbyStatusVoting {
		return 0, nil, domain.ErrInvalidState
	}

	participants, err := s.participantRepo.GetActiveByLobby(ctx, lobbyID)
	if err != nil {
		return 0, nil, err
	}
	proposer := findParticipant(participants, proposerID)
	if proposer == nil {
		return 0, nil, domain.ErrForbidden
	}
	if len(entries) == 0 {
		return 0, nil, domain.ErrInvalidEntry
	}

	// The caller's stated positions fix submission order only; after the
	// stable sort entries are renumbered 1..N.
	ordered := make([]RankingEntryInput, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	resolved := make([]RankingEntry, 0, len(ordered))
	seen := make(map[string]bool, len(ordered))
	for i, entry := range ordered {
		name := strings.TrimSpace(entry.PlayerName)
		if entry.UserID == nil && name == "" {
			return 0, nil, domain.ErrInvalidEntry
		}

		var key string
		if entry.UserID != nil {
			p := findParticipant(participants, *entry.UserID)
			if p == nil {
				return 0, nil, domain.ErrInvalidEntry
			}
			if name == "" && p.User != nil {
				name = p.User.PodiumName()
			}
			key = "user:" + entry.UserID.String()
		} else {
			key = "name:" + strings.ToLower(name)
		}
		if seen[key] {
			return 0, nil, domain.ErrInvalidEntry
		}
		seen[key] = true

		resolved = append(resolved, RankingEntry{
			Position:   i + 1,
			UserID:     entry.UserID,
			PlayerName: name,
		})
	}

	latest, err := s.rankingRepo.LatestVersion(ctx, lobbyID)
	if err != nil {
		return 0, nil, err
	}
	version := latest + 1

	// Stale-vote cleanup: nothing at or above the new version exists yet.
	if err := s.voteRepo.DeleteBelowVersion(ctx, lobbyID, version); err != nil {
		return 0, nil, err
	}

	rows := make([]*domain.ProposedRanking, 0, len(resolved))
	now := time.Now()
	for _, entry := range resolved {
		rows = append(rows, &domain.ProposedRanking{
			ID:           uuid.New(),
			LobbyID:      lobbyID,
			Version:      version,
			Position:     entry.Position,
			UserID:       entry.UserID,
			PlayerName:   entry.PlayerName,
			ProposedByID: proposerID,
			CreatedAt:    now,
		})
	}
	if err := s.rankingRepo.CreateMany(ctx, rows); err != nil {
		// A concurrent proposal claimed this version number first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, nil, domain.ErrConflict
		}
		return 0, nil, err
	}

	proposerName := ""
	if proposer.User != nil {
		proposerName = proposer.User.DisplayName
	}
	s.relay.Publish(ctx, lobby.Code, relay.EventRankingProposed, map[string]interface{}{
		"version": version,
		"ranking": resolved,
		"proposedBy": map[string]interface{}{
			"id":   proposerID,
			"name": proposerName,
		},
	})

	return version, resolved, nil
}

// VoteResult reports what a cast vote led to.
type VoteResult struct {
	Status    domain.VoteStatus `json:"status"`
	Version   int               `json:"version"`
	Completed bool              `json:"completed"`
	MatchID   *uuid.UUID        `json:"matchId,omitempty"`
}

// Vote upserts the voter's disposition toward a ranking version (0 means
// the latest). A REJECTED vote just stands, waiting for a re-proposal. An
// APPROVED vote triggers a unanimity check over the participants active
// right now, not a snapshot from proposal time, and finalizes the match
// when everyone agrees.
func (s *ConsensusService) Vote(ctx context.Context, lobbyID, voterID uuid.UUID, version int, status domain.VoteStatus) (*VoteResult, error) {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if lobby.Status != domain.LobbyStatusVoting {
		return nil, domain.ErrInvalidState
	}

	participants, err := s.participantRepo.GetActiveByLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if findParticipant(participants, voterID) == nil {
		return nil, domain.ErrForbidden
	}

	latest, err := s.rankingRepo.LatestVersion(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if latest == 0 {
		return nil, domain.ErrNoProposalYet
	}
	if version == 0 {
		version = latest
	}
	switch {
	case version < latest:
		// The caller's version was superseded by a concurrent proposal.
		return nil, domain.ErrConflict
	case version > latest:
		return nil, domain.ErrNoProposalYet
	}

	if status != domain.VoteStatusRejected {
		status = domain.VoteStatusApproved
	}
	vote := &domain.Vote{
		ID:      uuid.New(),
		LobbyID: lobbyID,
		UserID:  voterID,
		Version: version,
		Status:  status,
		VotedAt: time.Now(),
	}
	if err := s.voteRepo.Upsert(ctx, vote); err != nil {
		return nil, err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventVoteCast, map[string]interface{}{
		"userId":  voterID,
		"status":  status,
		"version": version,
	})

	result := &VoteResult{Status: status, Version: version}
	if status == domain.VoteStatusRejected {
		return result, nil
	}

	unanimous, err := s.isUnanimous(ctx, lobbyID, version, participants)
	if err != nil {
		return nil, err
	}
	if !unanimous {
		return result, nil
	}

	matchID, err := s.finalize(ctx, lobby, version)
	if err != nil {
		return nil, err
	}
	result.Completed = true
	result.MatchID = matchID
	return result, nil
}

// isUnanimous reports whether every active participant has an APPROVED vote
// at the given version. A participant who joined after the proposal blocks
// consensus until they vote or leave; one who left no longer counts.
func (s *ConsensusService) isUnanimous(ctx context.Context, lobbyID uuid.UUID, version int, participants []*domain.Participant) (bool, error) {
	votes, err := s.voteRepo.GetByVersion(ctx, lobbyID, version)
	if err != nil {
		return false, err
	}

	approved := make(map[uuid.UUID]bool, len(votes))
	for _, v := range votes {
		if v.Status == domain.VoteStatusApproved {
			approved[v.UserID] = true
		}
	}
	for _, p := range participants {
		if !approved[p.UserID] {
			return false, nil
		}
	}
	return true, nil
}

// finalize claims the VOTING → COMPLETED transition, then commits the proof
// photo, records the permanent match and links it to the lobby. The guarded
// claim is what makes finalization at-most-once: a voter who loses the race
// reads back the winner's result instead of recording a second match.
func (s *ConsensusService) finalize(ctx context.Context, lobby *domain.Lobby, version int) (*uuid.UUID, error) {
	err := s.lobbyRepo.UpdateStatus(ctx, lobby.ID, domain.LobbyStatusVoting, map[string]interface{}{
		"status": domain.LobbyStatusCompleted,
	})
	if errors.Is(err, domain.ErrConflict) {
		current, getErr := s.getLobby(ctx, lobby.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == domain.LobbyStatusCompleted {
			return current.MatchID, nil
		}
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	// The match is recorded either way; a failed commit leaves the temp ref
	// on the match so the proof is still findable.
	photoURL := lobby.PhotoURL
	if photoURL != nil && s.photos.IsTemp(*photoURL) {
		if permanent, commitErr := s.photos.CommitPermanent(ctx, *photoURL); commitErr == nil {
			photoURL = &permanent
		} else {
			log.Printf("ERROR [ConsensusService.finalize] proof photo %s not committed: %v", *photoURL, commitErr)
		}
	}

	entries, err := s.rankingRepo.GetByVersion(ctx, lobby.ID, version)
	if err != nil {
		return nil, err
	}

	match, err := s.matches.RecordMatch(ctx, lobby.Game, photoURL, lobby.HostID, entries)
	if err != nil {
		return nil, err
	}

	err = s.lobbyRepo.UpdateStatus(ctx, lobby.ID, domain.LobbyStatusCompleted, map[string]interface{}{
		"match_id":  match.ID,
		"photo_url": photoURL,
	})
	if err != nil {
		return nil, err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventVotingCompleted, map[string]interface{}{
		"matchId": match.ID,
	})
	return &match.ID, nil
}

// VotingStatus is the current standing of the consensus round.
type VotingStatus struct {
	Version int             `json:"version"`
	Ranking []RankingEntry  `json:"ranking"`
	Votes   []VoterStanding `json:"votes"`
	Pending []uuid.UUID     `json:"pending"`
}

type VoterStanding struct {
	UserID uuid.UUID         `json:"userId"`
	Status domain.VoteStatus `json:"status"`
}

// Status reports the latest proposal and who has voted on it. Participants
// without a vote at the latest version are listed as pending.
func (s *ConsensusService) Status(ctx context.Context, lobbyID, requesterID uuid.UUID) (*VotingStatus, error) {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.GetActiveByLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if findParticipant(participants, requesterID) == nil && !lobby.Status.IsTerminal() {
		return nil, domain.ErrForbidden
	}

	version, err := s.rankingRepo.LatestVersion(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	status := &VotingStatus{Version: version, Ranking: []RankingEntry{}, Votes: []VoterStanding{}, Pending: []uuid.UUID{}}
	if version == 0 {
		for _, p := range participants {
			status.Pending = append(status.Pending, p.UserID)
		}
		return status, nil
	}

	rows, err := s.rankingRepo.GetByVersion(ctx, lobbyID, version)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		status.Ranking = append(status.Ranking, RankingEntry{
			Position:   row.Position,
			UserID:     row.UserID,
			PlayerName: row.PlayerName,
		})
	}

	votes, err := s.voteRepo.GetByVersion(ctx, lobbyID, version)
	if err != nil {
		return nil, err
	}
	voted := make(map[uuid.UUID]bool, len(votes))
	for _, v := range votes {
		voted[v.UserID] = true
		status.Votes = append(status.Votes, VoterStanding{UserID: v.UserID, Status: v.Status})
	}
	for _, p := range participants {
		if !voted[p.UserID] {
			status.Pending = append(status.Pending, p.UserID)
		}
	}
	return status, nil
}

func (s *ConsensusService) getLobby(ctx context.Context, lobbyID uuid.UUID) (*domain.Lobby, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return lobby, nil
}

func findParticipant(participants []*domain.Participant, userID uuid.UUID) *domain.Participant {
	for _, p := range participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

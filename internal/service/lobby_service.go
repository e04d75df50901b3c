package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/config"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/relay"
	"github.com/patified/patified-backend/internal/repository"
	"github.com/patified/patified-backend/internal/storage"
	"gorm.io/gorm"
)

// LobbyService is the lobby lifecycle engine. It owns every status
// transition of the WAITING → IN_PROGRESS → VOTING → COMPLETED machine plus
// the CANCELLED/EXPIRED side exits and the host-only restart cycle.
//
// All transitions go through status-guarded updates, so two racing callers
// can never both apply the same transition; the loser gets
// domain.ErrConflict. Relay notifications fire only after the write
// committed and never fail the operation.
type LobbyService struct {
	lobbyRepo       repository.LobbyRepository
	participantRepo repository.ParticipantRepository
	rankingRepo     repository.RankingRepository
	voteRepo        repository.VoteRepository
	codes           *CodeGenerator
	photos          storage.PhotoStore
	relay           relay.Relay
	cfg             *config.Config
}

func NewLobbyService(
	repos *repository.Repositories,
	photos storage.PhotoStore,
	rly relay.Relay,
	cfg *config.Config,
) *LobbyService {
	return &LobbyService{
		lobbyRepo:       repos.Lobby,
		participantRepo: repos.Participant,
		rankingRepo:     repos.Ranking,
		voteRepo:        repos.Vote,
		codes:           NewCodeGenerator(repos.Lobby),
		photos:          photos,
		relay:           rly,
		cfg:             cfg,
	}
}

// participantPayload is the user hint carried on participant_joined events.
type participantPayload struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	SteamUsername *string `json:"steamUsername"`
}

// CreateLobby opens a WAITING lobby with a fresh join code and the host
// auto-joined as its first, not-ready participant.
func (s *LobbyService) CreateLobby(ctx context.Context, hostID uuid.UUID, game string) (*domain.Lobby, error) {
	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	lobby := &domain.Lobby{
		ID:        uuid.New(),
		Code:      code,
		Game:      game,
		Status:    domain.LobbyStatusWaiting,
		HostID:    hostID,
		ExpiresAt: now.Add(s.cfg.LobbyExpiry),
		CreatedAt: now,
	}
	if err := s.lobbyRepo.Create(ctx, lobby); err != nil {
		return nil, err
	}

	host := &domain.Participant{
		ID:       uuid.New(),
		LobbyID:  lobby.ID,
		UserID:   hostID,
		IsReady:  false,
		JoinedAt: now,
	}
	if err := s.participantRepo.Create(ctx, host); err != nil {
		return nil, err
	}

	return s.lobbyRepo.GetByID(ctx, lobby.ID)
}

// GetLobby resolves a lobby by id or join code. Non-terminal lobbies are
// visible only to their active participants; terminal ones are readable by
// anyone holding the code.
func (s *LobbyService) GetLobby(ctx context.Context, idOrCode string, userID uuid.UUID) (*domain.Lobby, error) {
	var (
		lobby *domain.Lobby
		err   error
	)
	if id, parseErr := uuid.Parse(idOrCode); parseErr == nil {
		lobby, err = s.lobbyRepo.GetByID(ctx, id)
	} else {
		lobby, err = s.lobbyRepo.GetByCode(ctx, NormalizeCode(idOrCode))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if lobby.ActiveParticipant(userID) == nil && !lobby.Status.IsTerminal() {
		return nil, domain.ErrForbidden
	}
	return lobby, nil
}

// ListMyLobbies returns the caller's non-terminal lobbies, most recent first.
func (s *LobbyService) ListMyLobbies(ctx context.Context, userID uuid.UUID) ([]*domain.Lobby, error) {
	return s.lobbyRepo.ListActiveByUser(ctx, userID)
}

// JoinByCode adds the user to a WAITING lobby, reactivating an earlier
// membership if they had left. Joining past the expiry horizon flips the
// lobby to EXPIRED as a side effect and fails with domain.ErrExpired.
func (s *LobbyService) JoinByCode(ctx context.Context, code string, userID uuid.UUID) (*domain.Lobby, error) {
	normalized := NormalizeCode(code)
	if !ValidCodeFormat(normalized) {
		return nil, domain.ErrNotFound
	}

	lobby, err := s.lobbyRepo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := s.ensureNotExpired(ctx, lobby); err != nil {
		return nil, err
	}
	if lobby.Status != domain.LobbyStatusWaiting {
		return nil, domain.ErrNotAcceptingEntries
	}

	existing, err := s.participantRepo.GetByLobbyAndUser(ctx, lobby.ID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	switch {
	case existing != nil && existing.LeftAt == nil:
		return nil, domain.ErrAlreadyJoined
	case existing != nil:
		existing.LeftAt = nil
		existing.IsReady = false
		if err := s.participantRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
	default:
		p := &domain.Participant{
			ID:       uuid.New(),
			LobbyID:  lobby.ID,
			UserID:   userID,
			IsReady:  false,
			JoinedAt: time.Now(),
		}
		if err := s.participantRepo.Create(ctx, p); err != nil {
			return nil, err
		}
	}

	updated, err := s.lobbyRepo.GetByID(ctx, lobby.ID)
	if err != nil {
		return nil, err
	}

	payload := participantPayload{ID: userID.String()}
	if p := updated.ActiveParticipant(userID); p != nil && p.User != nil {
		payload.Name = p.User.DisplayName
		payload.SteamUsername = p.User.SteamUsername
	}
	s.relay.Publish(ctx, updated.Code, relay.EventParticipantJoined, map[string]interface{}{
		"user": payload,
	})

	return updated, nil
}

// ToggleReady flips the caller's ready flag. Valid only while WAITING; two
// toggles land back on the original state.
func (s *LobbyService) ToggleReady(ctx context.Context, lobbyID, userID uuid.UUID) (bool, error) {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return false, err
	}
	if err := s.ensureNotExpired(ctx, lobby); err != nil {
		return false, err
	}
	if lobby.Status != domain.LobbyStatusWaiting {
		return false, domain.ErrInvalidState
	}

	p, err := s.activeParticipant(ctx, lobbyID, userID)
	if err != nil {
		return false, err
	}

	p.IsReady = !p.IsReady
	if err := s.participantRepo.Update(ctx, p); err != nil {
		return false, err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventParticipantReady, map[string]interface{}{
		"userId":  userID,
		"isReady": p.IsReady,
	})
	return p.IsReady, nil
}

// Start moves a WAITING lobby to IN_PROGRESS. Host-only, and the lobby
// needs at least domain.MinPlayersToStart active participants.
func (s *LobbyService) Start(ctx context.Context, lobbyID, requesterID uuid.UUID) error {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return err
	}
	if err := s.ensureNotExpired(ctx, lobby); err != nil {
		return err
	}
	if lobby.HostID != requesterID {
		return domain.ErrForbidden
	}
	if lobby.Status != domain.LobbyStatusWaiting {
		return domain.ErrInvalidState
	}

	count, err := s.participantRepo.CountActiveByLobby(ctx, lobbyID)
	if err != nil {
		return err
	}
	if count < domain.MinPlayersToStart {
		return domain.ErrInsufficientPlayers
	}

	err = s.lobbyRepo.UpdateStatus(ctx, lobbyID, domain.LobbyStatusWaiting, map[string]interface{}{
		"status": domain.LobbyStatusInProgress,
	})
	if err != nil {
		return err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventLobbyStarted, map[string]interface{}{})
	return nil
}

// UploadProofPhoto stores the host's proof image as a lobby-scoped temporary
// object and moves IN_PROGRESS to VOTING, opening the voting window. The
// temporary object is removed again if the transition loses a race.
func (s *LobbyService) UploadProofPhoto(ctx context.Context, lobbyID, requesterID uuid.UUID, image io.Reader, contentType string) (string, error) {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return "", err
	}
	if lobby.HostID != requesterID {
		return "", domain.ErrForbidden
	}
	if lobby.Status != domain.LobbyStatusInProgress {
		return "", domain.ErrInvalidState
	}
	if !s.photos.Configured() {
		return "", domain.ErrStorageUnavailable
	}

	ref, err := s.photos.StoreTemp(ctx, lobbyID.String(), image, contentType)
	if err != nil {
		return "", err
	}

	now := time.Now()
	votingExpiresAt := now.Add(s.cfg.VotingWindow)
	err = s.lobbyRepo.UpdateStatus(ctx, lobbyID, domain.LobbyStatusInProgress, map[string]interface{}{
		"status":            domain.LobbyStatusVoting,
		"photo_url":         ref,
		"voting_started_at": now,
		"voting_expires_at": votingExpiresAt,
	})
	if err != nil {
		_ = s.photos.DeleteTemp(ctx, ref)
		return "", err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventPhotoUploaded, map[string]interface{}{
		"photoUrl": ref,
	})
	s.relay.Publish(ctx, lobby.Code, relay.EventVotingStarted, map[string]interface{}{
		"expiresAt": votingExpiresAt.Format(time.RFC3339),
	})
	return ref, nil
}

// Leave marks the caller's membership as left. A departing host hands the
// role to the earliest-joined remaining participant, or cancels the lobby
// when nobody is left.
func (s *LobbyService) Leave(ctx context.Context, lobbyID, userID uuid.UUID) error {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return err
	}

	p, err := s.activeParticipant(ctx, lobbyID, userID)
	if err != nil {
		return err
	}
	if lobby.Status.IsTerminal() {
		return domain.ErrAlreadyFinalized
	}

	now := time.Now()
	p.LeftAt = &now
	if err := s.participantRepo.Update(ctx, p); err != nil {
		return err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventParticipantLeft, map[string]interface{}{
		"userId": userID,
	})

	if lobby.HostID != userID {
		return nil
	}

	remaining, err := s.participantRepo.GetActiveByLobby(ctx, lobbyID)
	if err != nil {
		return err
	}

	if len(remaining) > 0 {
		// GetActiveByLobby orders by joined_at, so the first row is the
		// longest-standing member.
		newHostID := remaining[0].UserID
		if err := s.lobbyRepo.SetHost(ctx, lobbyID, newHostID); err != nil {
			return err
		}
		s.relay.Publish(ctx, lobby.Code, relay.EventHostChanged, map[string]interface{}{
			"newHostId": newHostID,
		})
		return nil
	}

	err = s.lobbyRepo.UpdateStatus(ctx, lobbyID, lobby.Status, map[string]interface{}{
		"status": domain.LobbyStatusCancelled,
	})
	if err != nil {
		return err
	}
	s.releaseTempPhoto(ctx, lobby)
	s.relay.Publish(ctx, lobby.Code, relay.EventLobbyCancelled, map[string]interface{}{
		"reason": "host_left",
	})
	return nil
}

// Cancel is the host's remote for shutting the lobby down from any
// non-terminal state.
func (s *LobbyService) Cancel(ctx context.Context, lobbyID, requesterID uuid.UUID) error {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return err
	}
	if lobby.HostID != requesterID {
		return domain.ErrForbidden
	}
	if lobby.Status.IsTerminal() {
		return domain.ErrAlreadyFinalized
	}

	err = s.lobbyRepo.UpdateStatus(ctx, lobbyID, lobby.Status, map[string]interface{}{
		"status": domain.LobbyStatusCancelled,
	})
	if err != nil {
		return err
	}

	s.releaseTempPhoto(ctx, lobby)
	s.relay.Publish(ctx, lobby.Code, relay.EventLobbyCancelled, map[string]interface{}{
		"reason": "host_cancelled",
	})
	return nil
}

// Restart cycles a COMPLETED lobby back to IN_PROGRESS for a rematch: all
// ranking and vote history is purged, photo/voting/match references are
// cleared, the expiry horizon is extended and every ready flag drops back
// to false. The participant roster carries over untouched.
func (s *LobbyService) Restart(ctx context.Context, lobbyID, requesterID uuid.UUID) (*domain.Lobby, error) {
	lobby, err := s.getLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if lobby.Status != domain.LobbyStatusCompleted {
		return nil, domain.ErrInvalidState
	}
	if lobby.HostID != requesterID {
		return nil, domain.ErrForbidden
	}

	if err := s.voteRepo.DeleteByLobby(ctx, lobbyID); err != nil {
		return nil, err
	}
	if err := s.rankingRepo.DeleteByLobby(ctx, lobbyID); err != nil {
		return nil, err
	}

	err = s.lobbyRepo.UpdateStatus(ctx, lobbyID, domain.LobbyStatusCompleted, map[string]interface{}{
		"status":            domain.LobbyStatusInProgress,
		"photo_url":         nil,
		"voting_started_at": nil,
		"voting_expires_at": nil,
		"match_id":          nil,
		"expires_at":        time.Now().Add(s.cfg.LobbyExpiry),
	})
	if err != nil {
		return nil, err
	}

	if err := s.participantRepo.ResetReady(ctx, lobbyID); err != nil {
		return nil, err
	}

	s.relay.Publish(ctx, lobby.Code, relay.EventLobbyRestarted, map[string]interface{}{
		"lobbyId": lobbyID,
	})
	return s.lobbyRepo.GetByID(ctx, lobbyID)
}

// ensureNotExpired is the lazy expiry guard: a WAITING lobby past its
// horizon flips to EXPIRED on first touch, releasing any temporary photo.
// Losing the flip to a concurrent caller still reports ErrExpired; the
// horizon has passed either way.
func (s *LobbyService) ensureNotExpired(ctx context.Context, lobby *domain.Lobby) error {
	if lobby.Status != domain.LobbyStatusWaiting || !lobby.IsExpired(time.Now()) {
		return nil
	}

	err := s.lobbyRepo.UpdateStatus(ctx, lobby.ID, domain.LobbyStatusWaiting, map[string]interface{}{
		"status": domain.LobbyStatusExpired,
	})
	switch {
	case err == nil:
		s.releaseTempPhoto(ctx, lobby)
	case !errors.Is(err, domain.ErrConflict):
		return err
	}
	return domain.ErrExpired
}

func (s *LobbyService) releaseTempPhoto(ctx context.Context, lobby *domain.Lobby) {
	if lobby.PhotoURL != nil && s.photos.IsTemp(*lobby.PhotoURL) {
		_ = s.photos.DeleteTemp(ctx, *lobby.PhotoURL)
	}
}

func (s *LobbyService) getLobby(ctx context.Context, lobbyID uuid.UUID) (*domain.Lobby, error) {
	lobby, err := s.lobbyRepo.GetByID(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return lobby, nil
}

func (s *LobbyService) activeParticipant(ctx context.Context, lobbyID, userID uuid.UUID) (*domain.Participant, error) {
	p, err := s.participantRepo.GetByLobbyAndUser(ctx, lobbyID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotAMember
		}
		return nil, err
	}
	if p.LeftAt != nil {
		return nil, domain.ErrNotAMember
	}
	return p, nil
}

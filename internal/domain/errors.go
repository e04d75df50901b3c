package domain

import "errors"

// Domain errors surfaced by the lobby lifecycle and consensus engines.
// These are business-rule violations, reported synchronously and never
// retried; infrastructure failures propagate as whatever the collaborator
// returned.
var (
	ErrNotFound            = errors.New("lobby not found")
	ErrForbidden           = errors.New("only the host can perform this action")
	ErrInvalidState        = errors.New("invalid lobby state for this action")
	ErrNotAMember          = errors.New("user is not in this lobby")
	ErrAlreadyJoined       = errors.New("user is already in this lobby")
	ErrAlreadyFinalized    = errors.New("lobby is already finalized")
	ErrNotAcceptingEntries = errors.New("lobby is not accepting entries")
	ErrExpired             = errors.New("lobby has expired")
	ErrInsufficientPlayers = errors.New("not enough players to start")
	ErrInvalidEntry        = errors.New("invalid ranking entry")
	ErrNoProposalYet       = errors.New("no ranking proposed yet")
	ErrStorageUnavailable  = errors.New("photo storage is not configured")
	ErrCodeExhausted       = errors.New("could not generate a unique lobby code")

	// ErrConflict signals a lost race on a conditional update. It is the one
	// error a caller may safely retry.
	ErrConflict = errors.New("concurrent modification conflict")
)

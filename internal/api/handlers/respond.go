package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/patified/patified-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError translates the domain error taxonomy to HTTP. Anything not in
// the table is a 500 and gets logged with the call site tag.
func respondError(w http.ResponseWriter, tag string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrNotAMember):
		http.Error(w, "Not a member of this lobby", http.StatusForbidden)
	case errors.Is(err, domain.ErrAlreadyJoined):
		http.Error(w, "Already joined", http.StatusConflict)
	case errors.Is(err, domain.ErrNotAcceptingEntries):
		http.Error(w, "Lobby is not accepting new players", http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidState):
		http.Error(w, "Operation not valid in the lobby's current state", http.StatusConflict)
	case errors.Is(err, domain.ErrAlreadyFinalized):
		http.Error(w, "Lobby already finalized", http.StatusConflict)
	case errors.Is(err, domain.ErrExpired):
		http.Error(w, "Lobby expired", http.StatusGone)
	case errors.Is(err, domain.ErrInsufficientPlayers):
		http.Error(w, "Not enough players to start", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidEntry):
		http.Error(w, "Invalid ranking entry", http.StatusBadRequest)
	case errors.Is(err, domain.ErrNoProposalYet):
		http.Error(w, "No ranking proposal at that version", http.StatusConflict)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, "Conflicting update, retry", http.StatusConflict)
	case errors.Is(err, domain.ErrStorageUnavailable):
		http.Error(w, "Photo storage unavailable", http.StatusServiceUnavailable)
	default:
		log.Printf("ERROR [%s] %v", tag, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

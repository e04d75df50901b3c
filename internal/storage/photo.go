// Package storage holds proof photos for lobbies. A photo lives under a
// lobby-scoped temporary path until consensus finalization promotes it to the
// permanent proofs area; cancelled and expired lobbies just drop the
// temporary object.
package storage

import (
	"context"
	"io"
)

// PhotoStore is the storage collaborator contract consumed by the lobby
// engines. Refs are opaque strings; only the store interprets them.
type PhotoStore interface {
	// Configured reports whether a backing store is available. When false,
	// photo uploads fail with domain.ErrStorageUnavailable upstream.
	Configured() bool

	// StoreTemp writes the image to a temporary object scoped to the lobby
	// and returns its ref.
	StoreTemp(ctx context.Context, lobbyID string, r io.Reader, contentType string) (string, error)

	// CommitPermanent copies a temporary object into the permanent proofs
	// area, removes the temporary one, and returns the permanent ref.
	CommitPermanent(ctx context.Context, tempRef string) (string, error)

	// DeleteTemp removes a temporary object. Missing objects are not an
	// error; cleanup is best-effort.
	DeleteTemp(ctx context.Context, tempRef string) error

	// IsTemp reports whether ref points into the temporary area.
	IsTemp(ref string) bool
}

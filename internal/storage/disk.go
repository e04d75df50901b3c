package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	tempPrefix  = "temp/lobby/"
	proofPrefix = "proofs/"
)

// DiskStore keeps photos on the local filesystem under a single root
// directory, using the same temp/lobby/<id>/… and proofs/… layout the
// bucket-backed deployment uses for object keys. An empty root disables the
// store.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Configured() bool {
	return s.root != ""
}

func (s *DiskStore) IsTemp(ref string) bool {
	return strings.HasPrefix(ref, tempPrefix)
}

func (s *DiskStore) StoreTemp(ctx context.Context, lobbyID string, r io.Reader, contentType string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("disk photo store: no root directory configured")
	}

	ref := fmt.Sprintf("%s%s/%d%s", tempPrefix, lobbyID, time.Now().UnixNano(), extFor(contentType))
	path := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}
	return ref, nil
}

func (s *DiskStore) CommitPermanent(ctx context.Context, tempRef string) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("disk photo store: no root directory configured")
	}
	if !s.IsTemp(tempRef) {
		return "", fmt.Errorf("disk photo store: %q is not a temporary ref", tempRef)
	}

	src := filepath.Join(s.root, filepath.FromSlash(tempRef))
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	suffix := make([]byte, 3)
	rand.Read(suffix)
	finalRef := fmt.Sprintf("%s%d-%s%s", proofPrefix, time.Now().UnixMilli(), hex.EncodeToString(suffix), filepath.Ext(tempRef))
	dst := filepath.Join(s.root, filepath.FromSlash(finalRef))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	// The permanent copy is in place; losing the temp cleanup is harmless.
	os.Remove(src)

	return finalRef, nil
}

func (s *DiskStore) DeleteTemp(ctx context.Context, tempRef string) error {
	if !s.Configured() || !s.IsTemp(tempRef) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(tempRef)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

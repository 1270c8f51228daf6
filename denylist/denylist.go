package denylist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNilClient is returned when a backend store is built without a client.
	ErrNilClient = errors.New("denylist: nil client")
	// ErrEmptyToken is returned for inserts and lookups of an empty token.
	ErrEmptyToken = errors.New("denylist: empty token")
	// ErrNegativeGrace is returned by NewRedisStore for a negative Grace.
	ErrNegativeGrace = errors.New("denylist: negative grace")
)

// Entry is one revoked token.
type Entry struct {
	Token     string
	ExpiresAt time.Time
}

// ExpiresInMillis is the token's expiration instant in epoch milliseconds.
func (e Entry) ExpiresInMillis() int64 {
	return e.ExpiresAt.UnixMilli()
}

// NewEntry builds an entry from a token and its exp claim.
func NewEntry(token string, expiresAt time.Time) Entry {
	return Entry{Token: token, ExpiresAt: expiresAt}
}

// Store is the persistence contract shared by every backend.
//
// Insert must be an atomic insert-if-absent: inserting an existing token
// reports inserted=false with a nil error and leaves the stored entry as it was.
type Store interface {
	Insert(ctx context.Context, entry Entry) (inserted bool, err error)
	Find(ctx context.Context, token string) (Entry, bool, error)
}

// Digest returns the hex SHA-256 of token, used as the storage key.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

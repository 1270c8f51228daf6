package tokenguard

import (
	"context"
	"time"
)

// User is the record attached to an authenticated request.
type User struct {
	ID         string            `json:"id"`
	Email      string            `json:"email,omitempty"`
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// UserProvider resolves users by id. Implementations return ErrUserNotFound
// when no record exists.
type UserProvider interface {
	GetUserByID(ctx context.Context, userID string) (User, error)
}

// TokenPair is the result of issuing or rotating tokens. Expiration dates
// are epoch milliseconds.
type TokenPair struct {
	AccessToken                string `json:"access_token"`
	RefreshToken               string `json:"refresh_token"`
	AccessTokenExpirationDate  int64  `json:"access_token_expiration_date"`
	RefreshTokenExpirationDate int64  `json:"refresh_token_expiration_date"`
}

// AccessExpiresAt converts AccessTokenExpirationDate to a time.Time.
func (p TokenPair) AccessExpiresAt() time.Time {
	return time.UnixMilli(p.AccessTokenExpirationDate)
}

// RefreshExpiresAt converts RefreshTokenExpirationDate to a time.Time.
func (p TokenPair) RefreshExpiresAt() time.Time {
	return time.UnixMilli(p.RefreshTokenExpirationDate)
}

// Credentials holds the raw tokens presented by a client. Either field may
// be empty.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// TokenTransport publishes a freshly issued pair to the client and clears
// client-held tokens after a failed rotation. The cookie package provides
// the HTTP implementation.
type TokenTransport interface {
	Publish(pair TokenPair) error
	Clear()
}

// AuthResult is the outcome of a successful Authenticate call.
type AuthResult struct {
	User      User
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

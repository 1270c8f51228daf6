package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/MrEthical07/tokenguard/jwt"
)

// AuthenticateFailureKind classifies authentication denials.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureMissingToken
	AuthenticateFailureDenylist
	AuthenticateFailureBlacklisted
	AuthenticateFailureExpired
	AuthenticateFailureInvalid
	AuthenticateFailureUnknownSubject
	AuthenticateFailureLookup
)

type AuthenticateResult[U any] struct {
	Failure AuthenticateFailureKind
	Err     error
	Claims  *jwt.Claims
	User    U
}

type AuthenticateDeps[U any] struct {
	Denylist     denylist.Store
	Verify       func(string, jwt.VerifyOptions) (*jwt.Claims, error)
	LookupUser   func(context.Context, string) (U, error)
	UserNotFound error
}

// RunAuthenticate gates one request. The denylist is consulted before the
// signature so a revoked token is reported as such even after it expires.
func RunAuthenticate[U any](ctx context.Context, token string, deps AuthenticateDeps[U]) AuthenticateResult[U] {
	if token == "" {
		return AuthenticateResult[U]{Failure: AuthenticateFailureMissingToken}
	}

	_, listed, err := deps.Denylist.Find(ctx, token)
	if err != nil {
		return AuthenticateResult[U]{Failure: AuthenticateFailureDenylist, Err: err}
	}
	if listed {
		return AuthenticateResult[U]{Failure: AuthenticateFailureBlacklisted}
	}

	claims, err := deps.Verify(token, jwt.VerifyOptions{Kind: jwt.KindAccess})
	if err != nil {
		if errors.Is(err, jwt.ErrExpired) {
			return AuthenticateResult[U]{Failure: AuthenticateFailureExpired, Err: err}
		}
		return AuthenticateResult[U]{Failure: AuthenticateFailureInvalid, Err: err}
	}

	user, err := deps.LookupUser(ctx, claims.Subject)
	if err != nil {
		kind := AuthenticateFailureLookup
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			kind = AuthenticateFailureUnknownSubject
		}
		return AuthenticateResult[U]{Failure: kind, Err: err, Claims: claims}
	}

	return AuthenticateResult[U]{Claims: claims, User: user}
}

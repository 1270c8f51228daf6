package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/MrEthical07/tokenguard/jwt"
	"golang.org/x/sync/errgroup"
)

// RefreshState is the last state a refresh run reached.
type RefreshState int

const (
	RefreshStart RefreshState = iota
	RefreshTokensExtracted
	RefreshUserResolved
	RefreshOldTokensRevoked
	RefreshNewPairIssued
)

func (s RefreshState) String() string {
	switch s {
	case RefreshStart:
		return "start"
	case RefreshTokensExtracted:
		return "tokens_extracted"
	case RefreshUserResolved:
		return "user_resolved"
	case RefreshOldTokensRevoked:
		return "old_tokens_revoked"
	case RefreshNewPairIssued:
		return "new_pair_issued"
	default:
		return "unknown"
	}
}

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureRateLimited
	RefreshFailureMissingToken
	RefreshFailureDecode
	RefreshFailureUnknownSubject
	RefreshFailureLookup
	RefreshFailureVerify
	RefreshFailureWrongKind
	RefreshFailureSubjectMismatch
	RefreshFailureExpired
	RefreshFailureRevoked
	RefreshFailureDenylist
	RefreshFailureIssue
	RefreshFailurePublish
)

// RefreshResult carries either the issued pair or failure metadata.
// State is the furthest state reached.
type RefreshResult[U, P any] struct {
	Failure RefreshFailureKind
	Err     error
	State   RefreshState
	UserID  string
	User    U
	Pair    P
}

// RefreshDeps captures refresh flow dependencies. U is the user record
// type and P the issued pair type of the host package.
type RefreshDeps[U, P any] struct {
	// Throttle runs before anything else; nil disables it.
	Throttle        func(context.Context) error
	DecodeUntrusted func(string) (*jwt.Claims, error)
	Verify          func(string, jwt.VerifyOptions) (*jwt.Claims, error)
	LookupUser      func(context.Context, string) (U, error)
	UserNotFound    error
	Denylist        denylist.Store
	Issue           func(context.Context, U) (P, error)
	// Publish and Clear talk to the client transport; either may be nil.
	Publish              func(P) error
	Clear                func()
	RejectExpiredRefresh bool
	Now                  func() time.Time
}

// RunRefresh rotates a token pair: both presented tokens are denylisted
// before a new pair is minted. Every failure after throttling clears the
// client's transport state.
func RunRefresh[U, P any](ctx context.Context, accessToken, refreshToken string, deps RefreshDeps[U, P]) (res RefreshResult[U, P]) {
	defer func() {
		if res.Failure != RefreshFailureNone && res.Failure != RefreshFailureRateLimited && deps.Clear != nil {
			deps.Clear()
		}
	}()

	if deps.Throttle != nil {
		if err := deps.Throttle(ctx); err != nil {
			return RefreshResult[U, P]{Failure: RefreshFailureRateLimited, Err: err}
		}
	}

	if accessToken == "" || refreshToken == "" {
		return RefreshResult[U, P]{Failure: RefreshFailureMissingToken}
	}
	res.State = RefreshTokensExtracted

	claimed, err := deps.DecodeUntrusted(refreshToken)
	if err != nil {
		return fail(res, RefreshFailureDecode, err)
	}
	res.UserID = claimed.Subject

	user, err := deps.LookupUser(ctx, claimed.Subject)
	if err != nil {
		if deps.UserNotFound != nil && errors.Is(err, deps.UserNotFound) {
			return fail(res, RefreshFailureUnknownSubject, err)
		}
		return fail(res, RefreshFailureLookup, err)
	}
	res.User = user
	res.State = RefreshUserResolved

	accessClaims, err := deps.Verify(accessToken, jwt.VerifyOptions{IgnoreExpiration: true})
	if err != nil {
		return fail(res, RefreshFailureVerify, err)
	}
	refreshClaims, err := deps.Verify(refreshToken, jwt.VerifyOptions{IgnoreExpiration: true})
	if err != nil {
		return fail(res, RefreshFailureVerify, err)
	}
	if accessClaims.Kind != jwt.KindAccess || refreshClaims.Kind != jwt.KindRefresh {
		return fail(res, RefreshFailureWrongKind, jwt.ErrWrongKind)
	}
	if accessClaims.Subject != refreshClaims.Subject || refreshClaims.Subject != claimed.Subject {
		return fail(res, RefreshFailureSubjectMismatch, errors.New("token subjects differ"))
	}
	if deps.RejectExpiredRefresh && !refreshClaims.Expiry().After(now(deps.Now)) {
		return fail(res, RefreshFailureExpired, jwt.ErrExpired)
	}

	revoked, err := denylistPair(ctx, deps.Denylist,
		denylist.NewEntry(accessToken, accessClaims.Expiry()),
		denylist.NewEntry(refreshToken, refreshClaims.Expiry()),
	)
	if err != nil {
		return fail(res, RefreshFailureDenylist, err)
	}
	if !revoked {
		return fail(res, RefreshFailureRevoked, errors.New("token already revoked"))
	}
	res.State = RefreshOldTokensRevoked

	pair, err := deps.Issue(ctx, user)
	if err != nil {
		return fail(res, RefreshFailureIssue, err)
	}
	res.Pair = pair

	if deps.Publish != nil {
		if err := deps.Publish(pair); err != nil {
			return fail(res, RefreshFailurePublish, err)
		}
	}
	res.State = RefreshNewPairIssued

	return res
}

// denylistPair inserts both entries concurrently and waits for both. It
// reports true only when both tokens were newly denylisted.
func denylistPair(ctx context.Context, store denylist.Store, access, refresh denylist.Entry) (bool, error) {
	var (
		g        errgroup.Group
		inserted [2]bool
	)
	for i, entry := range []denylist.Entry{access, refresh} {
		i, entry := i, entry
		g.Go(func() error {
			ok, err := store.Insert(ctx, entry)
			inserted[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	return inserted[0] && inserted[1], nil
}

func fail[U, P any](res RefreshResult[U, P], kind RefreshFailureKind, err error) RefreshResult[U, P] {
	res.Failure = kind
	res.Err = err
	return res
}

func now(fn func() time.Time) time.Time {
	if fn == nil {
		return time.Now()
	}
	return fn()
}

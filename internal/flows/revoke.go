package flows

import (
	"context"

	"github.com/MrEthical07/tokenguard/denylist"
	"github.com/MrEthical07/tokenguard/jwt"
)

type RevokeFailureKind int

const (
	RevokeFailureNone RevokeFailureKind = iota
	RevokeFailureMissingToken
	RevokeFailureInvalid
	RevokeFailureDenylist
)

type RevokeResult struct {
	Failure RevokeFailureKind
	Err     error
	Subject string
	// Revoked counts tokens newly added to the denylist.
	Revoked int
}

type RevokeDeps struct {
	Verify   func(string, jwt.VerifyOptions) (*jwt.Claims, error)
	Denylist denylist.Store
}

// RunRevoke denylists every non-empty token. All tokens are verified
// before anything is written. Tokens already on the list are not an error.
func RunRevoke(ctx context.Context, tokens []string, deps RevokeDeps) RevokeResult {
	entries := make([]denylist.Entry, 0, len(tokens))
	var subject string
	for _, token := range tokens {
		if token == "" {
			continue
		}
		claims, err := deps.Verify(token, jwt.VerifyOptions{IgnoreExpiration: true})
		if err != nil {
			return RevokeResult{Failure: RevokeFailureInvalid, Err: err}
		}
		if subject == "" {
			subject = claims.Subject
		}
		entries = append(entries, denylist.NewEntry(token, claims.Expiry()))
	}
	if len(entries) == 0 {
		return RevokeResult{Failure: RevokeFailureMissingToken}
	}

	res := RevokeResult{Subject: subject}
	for _, entry := range entries {
		ok, err := deps.Denylist.Insert(ctx, entry)
		if err != nil {
			res.Failure = RevokeFailureDenylist
			res.Err = err
			return res
		}
		if ok {
			res.Revoked++
		}
	}
	return res
}

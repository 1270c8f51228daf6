package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/credential"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the result attached by Authenticate or
// Optional.
func AuthResultFromContext(ctx context.Context) (*tokenguard.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*tokenguard.AuthResult)
	return res, ok && res != nil
}

// Authenticate rejects every request without a valid, unrevoked access
// token with 401. The token is read through extractor (header, query,
// signed cookie, body) and only then from an Authorization bearer header.
func Authenticate(engine *tokenguard.Engine, extractor *credential.Extractor) func(http.Handler) http.Handler {
	return gate(engine, extractor, false)
}

// Optional admits anonymous requests but still rejects a token that is
// present and bad.
func Optional(engine *tokenguard.Engine, extractor *credential.Extractor) func(http.Handler) http.Handler {
	return gate(engine, extractor, true)
}

func gate(engine *tokenguard.Engine, extractor *credential.Extractor, allowAnonymous bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			token := accessToken(r, extractor)
			if token == "" && allowAnonymous {
				next.ServeHTTP(w, r)
				return
			}

			res, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, tokenguard.ErrDenylistUnavailable) || errors.Is(err, tokenguard.ErrUserLookupFailed) {
					status = http.StatusServiceUnavailable
				}
				writeError(w, status, http.StatusText(status))
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessToken tries the extractor's sources first, then an Authorization
// bearer header.
func accessToken(r *http.Request, extractor *credential.Extractor) string {
	if extractor != nil {
		if token := extractor.AccessToken(r); token != "" {
			return token
		}
	}
	token, _ := bearerToken(r.Header.Get("Authorization"))
	return token
}

func bearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}

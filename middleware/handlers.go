package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/cookie"
	"github.com/MrEthical07/tokenguard/credential"
)

// RefreshErrorMessage is the body of every failed refresh.
const RefreshErrorMessage = "Refresh token validation error"

// Handlers serves the refresh and logout endpoints.
type Handlers struct {
	Engine    *tokenguard.Engine
	Extractor *credential.Extractor
	Signer    *cookie.Signer
	Cookies   cookie.Config
	Logger    *slog.Logger
}

// Refresh answers 200 with the new TokenPair as JSON and sets it as signed
// cookies. Any failure clears the cookies and answers 401, except a
// throttled call which answers 429.
func (h *Handlers) Refresh() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		transport := cookie.NewTransport(w, h.Signer, h.Cookies)

		pair, err := h.Engine.Refresh(r.Context(), h.Extractor.Credentials(r), transport)
		if err != nil {
			if errors.Is(err, tokenguard.ErrRefreshRateLimited) {
				writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
				return
			}
			h.logger().DebugContext(r.Context(), "refresh rejected", "error", err)
			writeError(w, http.StatusUnauthorized, RefreshErrorMessage)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	})
}

// Logout revokes whatever tokens the request carries, clears the cookies
// and answers 204. Requests without a valid token get 401.
func (h *Handlers) Logout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := h.Extractor.Credentials(r)
		if creds.AccessToken == "" {
			creds.AccessToken, _ = bearerToken(r.Header.Get("Authorization"))
		}

		err := h.Engine.Revoke(r.Context(), creds)
		cookie.NewTransport(w, h.Signer, h.Cookies).Clear()
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, tokenguard.ErrDenylistUnavailable):
			writeError(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		default:
			writeError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
	})
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MrEthical07/tokenguard"
	"github.com/MrEthical07/tokenguard/credential"
	"github.com/MrEthical07/tokenguard/metrics/export/prometheus"
	"github.com/MrEthical07/tokenguard/middleware"
)

type routerDeps struct {
	engine    *tokenguard.Engine
	extractor *credential.Extractor
	handlers  *middleware.Handlers
	exporter  *prometheus.Exporter
	// requestLog toggles chi's request logger; tests keep it off.
	requestLog bool
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.ClientIP)
	if d.requestLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", d.exporter.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Method(http.MethodPost, "/refresh", d.handlers.Refresh())
		r.Method(http.MethodPost, "/logout", d.handlers.Logout())
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.engine, d.extractor))
		r.Get("/me", me)
	})

	return r
}

func me(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.AuthResultFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user":       res.User,
		"token_id":   res.TokenID,
		"expires_at": res.ExpiresAt.UnixMilli(),
	})
}

package cookie

import (
	"net/http"
	"time"

	"github.com/MrEthical07/tokenguard"
)

const (
	DefaultAccessName  = "x-access-token"
	DefaultRefreshName = "x-refresh-token"
)

// Config controls cookie names and attributes.
type Config struct {
	AccessName  string
	RefreshName string
	Domain      string
	Path        string
	Secure      bool
	SameSite    http.SameSite
}

// DefaultConfig matches the header names used by the credential extractor.
func DefaultConfig() Config {
	return Config{
		AccessName:  DefaultAccessName,
		RefreshName: DefaultRefreshName,
		Path:        "/",
		SameSite:    http.SameSiteLaxMode,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.AccessName == "" {
		c.AccessName = def.AccessName
	}
	if c.RefreshName == "" {
		c.RefreshName = def.RefreshName
	}
	if c.Path == "" {
		c.Path = def.Path
	}
	if c.SameSite == 0 {
		c.SameSite = def.SameSite
	}
	return c
}

// Transport writes a token pair as signed httpOnly cookies on one response.
// It implements tokenguard.TokenTransport.
type Transport struct {
	w      http.ResponseWriter
	signer *Signer
	cfg    Config
}

var _ tokenguard.TokenTransport = (*Transport)(nil)

func NewTransport(w http.ResponseWriter, signer *Signer, cfg Config) *Transport {
	return &Transport{w: w, signer: signer, cfg: cfg.withDefaults()}
}

// Publish sets both tokens, each expiring with the token it carries.
func (t *Transport) Publish(pair tokenguard.TokenPair) error {
	t.set(t.cfg.AccessName, pair.AccessToken, pair.AccessExpiresAt())
	t.set(t.cfg.RefreshName, pair.RefreshToken, pair.RefreshExpiresAt())
	return nil
}

// Clear expires both token cookies and their signatures.
func (t *Transport) Clear() {
	for _, name := range []string{t.cfg.AccessName, t.cfg.RefreshName} {
		t.expire(name)
		t.expire(name + SignatureSuffix)
	}
}

func (t *Transport) set(name, value string, expires time.Time) {
	http.SetCookie(t.w, t.cookie(name, value, expires))
	if t.signer != nil {
		http.SetCookie(t.w, t.cookie(name+SignatureSuffix, t.signer.Sign(name, value), expires))
	}
}

func (t *Transport) expire(name string) {
	c := t.cookie(name, "", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(t.w, c)
}

func (t *Transport) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     t.cfg.Path,
		Domain:   t.cfg.Domain,
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: t.cfg.SameSite,
	}
}

package tokenguard

import (
	"errors"
	"strings"
	"time"
)

type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "info"
	case LintWarn:
		return "warn"
	default:
		return "high"
	}
}

// LintWarning is one advisory finding about a config that Validate accepts.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

type LintResult []LintWarning

func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity keeps warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	filtered := r.BySeverity(min)
	if len(filtered) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(filtered))
	for _, w := range filtered {
		msgs = append(msgs, w.Code+": "+w.Message)
	}
	return errors.New("config lint: " + strings.Join(msgs, "; "))
}

const minSecretBytes = 32

// Lint reports settings that are legal but risky for production.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if len(c.JWT.Secret) < minSecretBytes {
		add("weak_secret", LintHigh, "JWT secret is shorter than 32 bytes")
	}
	if string(c.JWT.Secret) == "secret" {
		add("default_secret", LintHigh, "JWT secret is the well-known placeholder")
	}
	if c.JWT.AccessTTL > time.Hour {
		add("access_ttl_long", LintWarn, "access tokens live longer than 1h")
	}
	if c.JWT.RefreshTTL > 90*24*time.Hour {
		add("refresh_ttl_long", LintWarn, "refresh tokens live longer than 90 days")
	}
	if c.JWT.Leeway > time.Minute {
		add("leeway_large", LintWarn, "leeway above 1m widens the replay window")
	}
	if !c.JWT.RejectExpiredRefresh {
		add("expired_refresh_accepted", LintWarn, "expired refresh tokens can still rotate a pair")
	}
	if c.Refresh.MaxAttemptsPerIP == 0 {
		add("refresh_throttle_disabled", LintInfo, "refresh is not rate limited")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "audit events are not emitted")
	}

	return ws
}

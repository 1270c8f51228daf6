package tokenguard

import "time"

// SecurityReport summarizes the running engine's posture. The server logs
// it at startup; it never contains secrets.
type SecurityReport struct {
	SigningAlgorithm     string
	AccessTTL            time.Duration
	RefreshTTL           time.Duration
	Leeway               time.Duration
	IssuerPinned         bool
	RejectExpiredRefresh bool
	RefreshThrottled     bool
	AuditEnabled         bool
	LintCodes            []string
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm:     e.codec.Algorithm(),
		AccessTTL:            e.config.JWT.AccessTTL,
		RefreshTTL:           e.config.JWT.RefreshTTL,
		Leeway:               e.config.JWT.Leeway,
		IssuerPinned:         e.config.JWT.Issuer != "",
		RejectExpiredRefresh: e.config.JWT.RejectExpiredRefresh,
		RefreshThrottled:     e.limiter != nil,
		AuditEnabled:         e.audit != nil,
		LintCodes:            e.config.Lint().Codes(),
	}
}

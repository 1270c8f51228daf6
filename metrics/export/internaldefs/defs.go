package internaldefs

import (
	"github.com/MrEthical07/tokenguard"
)

// Namespace prefixes every exported metric name.
const Namespace = "tokenguard"

type CounterDef struct {
	ID   tokenguard.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   tokenguard.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: tokenguard.MetricIssueSuccess, Name: Namespace + "_issue_success_total", Help: "Token pairs issued."},
	{ID: tokenguard.MetricIssueFailure, Name: Namespace + "_issue_failure_total", Help: "Token pairs that could not be signed."},
	{ID: tokenguard.MetricRefreshSuccess, Name: Namespace + "_refresh_success_total", Help: "Successful pair rotations."},
	{ID: tokenguard.MetricRefreshFailure, Name: Namespace + "_refresh_failure_total", Help: "Failed pair rotations, all causes."},
	{ID: tokenguard.MetricRefreshMissingToken, Name: Namespace + "_refresh_missing_token_total", Help: "Refresh calls missing a token."},
	{ID: tokenguard.MetricRefreshUnknownSubject, Name: Namespace + "_refresh_unknown_subject_total", Help: "Refresh calls naming an unknown user."},
	{ID: tokenguard.MetricRefreshInvalidToken, Name: Namespace + "_refresh_invalid_token_total", Help: "Refresh calls with forged, malformed, mismatched or expired tokens."},
	{ID: tokenguard.MetricRefreshReuseDetected, Name: Namespace + "_refresh_reuse_detected_total", Help: "Refresh calls presenting an already revoked pair."},
	{ID: tokenguard.MetricRefreshRateLimited, Name: Namespace + "_refresh_rate_limited_total", Help: "Refresh calls rejected by the per-IP throttle."},
	{ID: tokenguard.MetricAuthenticateSuccess, Name: Namespace + "_authenticate_success_total", Help: "Requests admitted by the access gate."},
	{ID: tokenguard.MetricAuthenticateFailure, Name: Namespace + "_authenticate_failure_total", Help: "Requests denied by the access gate."},
	{ID: tokenguard.MetricAuthenticateBlacklisted, Name: Namespace + "_authenticate_blacklisted_total", Help: "Requests presenting a revoked access token."},
	{ID: tokenguard.MetricAuthenticateExpired, Name: Namespace + "_authenticate_expired_total", Help: "Requests presenting an expired access token."},
	{ID: tokenguard.MetricAuthenticateUnknownSubject, Name: Namespace + "_authenticate_unknown_subject_total", Help: "Requests whose token names an unknown user."},
	{ID: tokenguard.MetricDenylistInsert, Name: Namespace + "_denylist_insert_total", Help: "Tokens newly written to the denylist."},
	{ID: tokenguard.MetricDenylistError, Name: Namespace + "_denylist_error_total", Help: "Denylist backend failures."},
	{ID: tokenguard.MetricTokensRevoked, Name: Namespace + "_tokens_revoked_total", Help: "Tokens revoked through logout."},
}

var HistogramDefs = []HistogramDef{
	{ID: tokenguard.MetricAuthenticateLatency, Name: Namespace + "_authenticate_latency_seconds", Help: "Authenticate latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = Namespace + "_audit_dropped_total"

// BucketCount matches the engine's fixed latency buckets.
const BucketCount = 8

// HistogramBounds are the bucket upper bounds in seconds, as rendered in
// the Prometheus le label.
var HistogramBounds = [BucketCount]string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = [BucketCount]string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// CumulativeBuckets pads or truncates raw to BucketCount and turns the
// per-bucket counts into running totals.
func CumulativeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < BucketCount; i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}

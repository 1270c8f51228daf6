// Package tokenguard manages the lifecycle of a JWT access/refresh token pair:
// issuing a pair, rotating it exactly once, revoking it on logout, and gating
// requests on the access token.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tokenguard is the public surface. It exposes [Engine], [Builder], [Config]
// and value types ([TokenPair], [AuthResult], [MetricsSnapshot]). The refresh,
// authenticate and revoke state machines live in internal/flows and are
// generic over the user and pair types, so they never import this package.
//
// Sub-packages:
//
//   - jwt: token codec (sign, verify, untrusted decode)
//   - denylist: revoked token stores (Redis, memory)
//   - store/postgres: Postgres user directory and denylist
//   - credential: pulls tokens out of an *http.Request
//   - cookie: signed cookies and the HTTP [TokenTransport]
//   - middleware: net/http gate and refresh/logout handlers
//   - metrics/export: Prometheus and OpenTelemetry exporters
//
// # Revocation model
//
// Tokens are stateless until revoked. Refresh and logout write both
// presented tokens to a denylist keyed by the token's SHA-256 digest, with
// an entry lifetime no shorter than the token's own. Denylist insertion is
// insert-if-absent, which is what limits a pair to a single rotation.
package tokenguard

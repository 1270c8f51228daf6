// Package internal groups the packages private to tokenguard.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - flows: refresh, authenticate and revoke state machines
//   - rate: Redis fixed-window limiter behind the refresh throttle
//   - config: environment loading for the binaries
//   - logging: context-aware slog wrapper for the binaries
//
// # What this package must NOT do
//
//   - Export types that appear in the public tokenguard API.
//   - Be imported by any package outside the tokenguard module.
package internal

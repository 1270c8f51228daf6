// Package denylist stores tokens that were revoked before their natural
// expiry, so the authentication path can refuse them.
//
// Entries are keyed by a SHA-256 digest of the token and carry the token's
// own expiration instant. Stores only ever add entries; removing lapsed
// entries is left to the backend (Redis key TTL) or to an external reaper.
package denylist

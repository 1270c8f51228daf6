// Package jwt signs and verifies the access and refresh tokens of a pair.
//
// Both kinds share one HMAC secret and one algorithm. Verification pins the
// configured algorithm and can skip the expiry check, which revocation needs
// for tokens that have already lapsed.
package jwt

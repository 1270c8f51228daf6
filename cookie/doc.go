// Package cookie carries token pairs in signed httpOnly cookies.
//
// Each value cookie has a "<name>.sig" companion holding an HMAC of
// "name=value". Readers ignore a value whose signature is missing or wrong.
package cookie

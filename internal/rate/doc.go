// Package rate throttles token refresh per client IP with Redis fixed-window
// counters (INCR, then EXPIRE on the first hit). Keys look like
// "rl:refresh:<ip>".
package rate

package middleware

import (
	"net"
	"net/http"

	"github.com/MrEthical07/tokenguard"
)

// ClientIP stores the request's remote host on the context for the refresh
// throttle and audit events. Behind a proxy, run a real-IP middleware
// such as chi's middleware.RealIP before it.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "" {
			r = r.WithContext(tokenguard.WithClientIP(r.Context(), host))
		}
		next.ServeHTTP(w, r)
	})
}

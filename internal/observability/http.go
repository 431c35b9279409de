package observability

import (
	"net"
	"net/http"
	"strings"
)

// RequestIDFromRequest returns the caller's X-Request-ID, if any.
func RequestIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

// IPFromRequest prefers the first X-Forwarded-For hop over the socket peer.
func IPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

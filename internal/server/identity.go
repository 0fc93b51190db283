package server

import (
	"net"
	"net/http"
	"strings"
)

// unknownIdentifier is the fallback rate-limit key when a request carries no
// address information at all. The resolver never fails; the limiter always
// gets a key.
const unknownIdentifier = "unknown"

// callerIdentifier derives a stable rate-limit key for the caller from
// forwarded-address headers and the connection address, in that order.
func callerIdentifier(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop is the original client.
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return unknownIdentifier
}

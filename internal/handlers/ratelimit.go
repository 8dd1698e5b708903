package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RateLimiter guards the endpoints that can be abused anonymously, keyed by
// client address and scope.
type RateLimiter interface {
	Allow(key string) bool
}

// allowRequest consults the limiter for this request. A nil limiter allows
// everything, which is what the handler tests rely on.
func allowRequest(limiter RateLimiter, r *http.Request, scope string) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(rateLimitKey(r, scope))
}

func rateLimitKey(r *http.Request, scope string) string {
	ip := clientIP(r)
	if scope == "" {
		return ip
	}
	return scope + ":" + ip
}

// clientIP resolves the originating address. The first X-Forwarded-For entry
// wins when a proxy sits in front, then X-Real-IP, then the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}

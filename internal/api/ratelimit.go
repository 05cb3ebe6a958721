package api

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/chroniclesapp/chronicles-server/internal/http/response"
	"github.com/chroniclesapp/chronicles-server/internal/ratelimit"
)

// Upload routes that accept whole documents.
const (
	importPath  = "/api/v1/library/import"
	restorePath = "/api/v1/library/restore"
)

func isUpload(r *http.Request) bool {
	return r.Method == http.MethodPost && (r.URL.Path == importPath || r.URL.Path == restorePath)
}

// RateLimitMiddleware rejects matching requests with 429 once the client
// address runs out of tokens. Requests that do not match pass straight through.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger, match func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !match(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				response.TooManyRequests(w, "too many uploads, try again shortly", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. middleware.RealIP has already
// applied X-Forwarded-For and X-Real-IP by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

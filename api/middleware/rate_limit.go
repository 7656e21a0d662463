package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/storeratings/storeratings-backend/api/responses"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/logger"
)

// RateLimit applies a per-IP ceiling of limit requests per window to every route.
func RateLimit(limiter Limiter, limit int, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 || window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			allowed, err := limiter.Allow(ctx, "global:ip:"+ip, limit, window)
			if err != nil {
				// counter store errors fail open
				if logg != nil {
					logg.Error(ctx, "rate_limit.store_error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"ip": ip, "limit": limit}), "rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, fmt.Sprintf("too many requests, retry in %s", window)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys limits on the socket peer. Forwarding headers only count when
// the router mounts RealIP behind a trusted proxy, which rewrites RemoteAddr.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

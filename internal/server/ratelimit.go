package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sankalpa/vivah-portrait-go/internal/service/cache"
	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

// RateLimiter enforces a fixed per-minute window per client IP, backed by
// redis. A cache failure fails open: generation keeps working without
// limiting.
type RateLimiter struct {
	cache     *cache.CacheService
	perMinute int
	logger    *zap.Logger
}

func NewRateLimiter(cacheSvc *cache.CacheService, perMinute int, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		cache:     cacheSvc,
		perMinute: perMinute,
		logger:    logger,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.perMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:%s", clientIP(r))
		count, err := rl.cache.IncrWindow(r.Context(), key, time.Minute)
		if err != nil {
			rl.logger.Warn("Rate limit check failed, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.perMinute) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("client", clientIP(r)),
				zap.Int64("count", count),
			)
			writeError(w, http.StatusTooManyRequests, apperrors.CodeValidation, "too many requests, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

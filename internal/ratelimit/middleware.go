package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/utils"
)

// ClientIP is the first X-Forwarded-For hop, then X-Real-IP, then "unknown".
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}

// Rule is one limited scope.
type Rule struct {
	Scope  string
	Limit  int
	Window time.Duration
	// Skip exempts a request, e.g. an authenticated admin.
	Skip func(r *http.Request) bool
}

// Limit rejects requests over the rule with 429 {ok:false}. Counter errors let the request through.
func Limit(counter Counter, rule Rule, log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rule.Skip != nil && rule.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			ip := ClientIP(r)
			limited, err := counter.Hit(r.Context(), rule.Scope+":"+ip, rule.Limit, rule.Window)
			if err != nil {
				log.Warn("RATE_LIMIT", fmt.Sprintf("Counter unavailable for %s: %v", rule.Scope, err))
				next.ServeHTTP(w, r)
				return
			}
			if limited {
				log.LogSecurity("RATE_LIMITED", fmt.Sprintf("%s %s from %s", rule.Scope, r.URL.Path, ip))
				utils.Fail(w, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

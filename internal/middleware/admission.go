package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/Rinkore1/BookServer/internal/logger"
	"github.com/Rinkore1/BookServer/internal/ratelimit"
)

const tooManyRequestsBody = "Too many requests. Please try again later."

// AdmissionMiddleware consults the rate limiter before any handler
// runs. A store failure denies the request (fail-closed): when the
// counter cannot be trusted, the budget cannot be enforced.
type AdmissionMiddleware struct {
	Limiter ratelimit.Limiter
}

func NewAdmissionMiddleware(limiter ratelimit.Limiter) *AdmissionMiddleware {
	return &AdmissionMiddleware{Limiter: limiter}
}

// ClientIdentity derives the rate-limit key from the request's origin
// address.
func ClientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func (a *AdmissionMiddleware) Admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := ClientIdentity(r)

		allowed, err := a.Limiter.Allow(r.Context(), identity)
		if err != nil {
			logger.Error("rate limiter unavailable, denying request", map[string]any{
				"client": identity,
				"error":  err.Error(),
			})
			allowed = false
		}

		if !allowed {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(tooManyRequestsBody))
			return
		}

		next.ServeHTTP(w, r)
	})
}

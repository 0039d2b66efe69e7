package middleware

import (
	"crypto/subtle"
	"net/http"

	"tour-payouts/pkg/utils"

	"go.uber.org/zap"
)

// APIKey guards the admin surface with the platform key. Operator-facing
// session auth is handled by the gateway in front of this service.
func APIKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Api-Key")

			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				logger.Warn("Rejected request with missing or invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				utils.ResponseUnauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

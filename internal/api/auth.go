package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/FocuswithJustin/synopsis/core/errors"
	"github.com/FocuswithJustin/synopsis/internal/logging"
)

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// minAPIKeyLength matches the config validation rule.
const minAPIKeyLength = 16

// ValidateAuthConfig checks that an enabled config carries a usable key.
func ValidateAuthConfig(cfg AuthConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.APIKey == "" {
		return errors.NewValidation("api_key", "required when authentication is enabled")
	}
	if len(cfg.APIKey) < minAPIKeyLength {
		return errors.NewValidation("api_key", "must be at least 16 characters")
	}
	return nil
}

// AuthMiddleware requires a matching X-API-Key header when cfg is enabled.
// /health is always public.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			key := r.Header.Get("X-API-Key")
			if key == "" {
				logging.WarnContext(r.Context(), "unauthorized_request", "path", r.URL.Path, "reason", "missing API key")
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing X-API-Key header")
				return
			}
			if !constantTimeCompare(key, cfg.APIKey) {
				logging.WarnContext(r.Context(), "unauthorized_request", "path", r.URL.Path, "reason", "invalid API key")
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func constantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

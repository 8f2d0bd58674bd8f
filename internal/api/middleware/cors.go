package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/framehaus/framehaus/internal/config"
)

// wildcardOrigin matches any single-label subdomain under a fixed host, so
// per-brand gallery hosts do not need individual CORS entries.
type wildcardOrigin struct {
	scheme string // "https://"
	suffix string // ".framehaus.gallery"
}

// CORS returns a middleware that handles Cross-Origin Resource Sharing for
// the admin console and the public gallery edge. Origins match exactly,
// except entries of the form "https://*.framehaus.gallery" which match any
// single subdomain label.
// In production, allowedOrigins must not be empty or the server will panic.
// In non-production environments, empty allowedOrigins allows all origins with a warning.
func CORS(allowedOrigins []string, env config.Environment) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		if env == config.EnvProduction {
			panic("CORS_ORIGINS must be set in production; refusing to start with open CORS policy")
		}
		log.Println("WARNING: CORS_ORIGINS is empty, all origins are allowed (not suitable for production)")
	}

	allowAll := len(allowedOrigins) == 0

	exact := make(map[string]struct{}, len(allowedOrigins))
	var wildcards []wildcardOrigin
	for _, origin := range allowedOrigins {
		origin = strings.ToLower(strings.TrimSpace(origin))
		if scheme, suffix, ok := splitWildcard(origin); ok {
			wildcards = append(wildcards, wildcardOrigin{scheme: scheme, suffix: suffix})
			continue
		}
		exact[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := allowAll
		if !allowed && origin != "" {
			allowed = originAllowed(strings.ToLower(origin), exact, wildcards)
		}

		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
			// The allowed origin is echoed back, so caches must key on it.
			c.Header("Vary", "Origin")
		}

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// splitWildcard parses entries of the form "https://*.example.com" into the
// scheme and the host suffix (with its leading dot).
func splitWildcard(origin string) (scheme, suffix string, ok bool) {
	i := strings.Index(origin, "://*.")
	if i < 0 {
		return "", "", false
	}
	return origin[:i+3], origin[i+4:], true
}

func originAllowed(origin string, exact map[string]struct{}, wildcards []wildcardOrigin) bool {
	if _, ok := exact[origin]; ok {
		return true
	}
	for _, w := range wildcards {
		host, ok := strings.CutPrefix(origin, w.scheme)
		if !ok || !strings.HasSuffix(host, w.suffix) {
			continue
		}
		// Exactly one label may stand in for the wildcard.
		label := strings.TrimSuffix(host, w.suffix)
		if label != "" && !strings.Contains(label, ".") {
			return true
		}
	}
	return false
}

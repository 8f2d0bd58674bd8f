package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/framehaus/framehaus/internal/config"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins, config.EnvDevelopment))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func requestWithOrigin(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSExactOrigin(t *testing.T) {
	r := corsRouter([]string{"https://console.framehaus.com"})

	w := requestWithOrigin(r, "https://console.framehaus.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://console.framehaus.com" {
		t.Errorf("expected origin echoed back, got %q", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("expected Vary: Origin, got %q", got)
	}

	w = requestWithOrigin(r, "https://evil.example.com")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers for unknown origin, got %q", got)
	}
}

func TestCORSWildcardSubdomain(t *testing.T) {
	r := corsRouter([]string{"https://*.framehaus.gallery"})

	cases := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"brand subdomain", "https://acme-photo.framehaus.gallery", true},
		{"another brand", "https://studio-9.framehaus.gallery", true},
		{"bare apex", "https://framehaus.gallery", false},
		{"nested subdomain", "https://a.b.framehaus.gallery", false},
		{"wrong scheme", "http://acme-photo.framehaus.gallery", false},
		{"suffix lookalike", "https://evilframehaus.gallery", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := requestWithOrigin(r, tc.origin)
			got := w.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Errorf("expected %q allowed, got header %q", tc.origin, got)
			}
			if !tc.allowed && got != "" {
				t.Errorf("expected %q rejected, got header %q", tc.origin, got)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := corsRouter([]string{"https://console.framehaus.com"})

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://console.framehaus.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected allow-methods header on preflight")
	}
}

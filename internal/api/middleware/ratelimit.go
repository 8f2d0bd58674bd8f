package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// unthrottledPaths are exempt from rate limiting: load balancer health
// checks and Prometheus scrapes run on fixed schedules and must never see
// a 429.
var unthrottledPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

// NewRateLimiter creates a Gin middleware for rate limiting.
// requests is the number of requests allowed per period.
// period is a duration string (e.g., "1m", "1h", "24h").
func NewRateLimiter(requests int64, period string) (gin.HandlerFunc, error) {
	duration, err := time.ParseDuration(period)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit period %q: %w", period, err)
	}

	rate := limiter.Rate{
		Period: duration,
		Limit:  requests,
	}

	instance := limiter.New(memory.NewStore(), rate)
	limit := mgin.NewMiddleware(instance)

	return func(c *gin.Context) {
		if _, exempt := unthrottledPaths[c.FullPath()]; exempt {
			c.Next()
			return
		}
		limit(c)
	}, nil
}

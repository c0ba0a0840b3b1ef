package middleware

import (
	"fmt"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/metrics"
	"github.com/gin-gonic/gin"
)

// GinMetricsMiddleware records request counts and latency per route
func GinMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())
		metrics.HttpRequestsTotal.WithLabelValues(endpoint, status, method).Inc()
		metrics.HttpRequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
	}
}

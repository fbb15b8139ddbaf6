package middleware

import "github.com/gin-gonic/gin"

// RequestRecorder records one finished request. telemetry.HTTPMetrics
// implements it.
type RequestRecorder interface {
	Begin() func(method, route string, status int)
}

// Metrics records request count, latency and in-flight gauge per route
// template, so /customers/:id stays one series
func Metrics(rec RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := rec.Begin()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}

package server

import (
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-modsynth/internal/logger"
)

const sentryFlushTimeout = 2 * time.Second

// RequestTracking adds a request ID and logs every request.
func RequestTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		statusCode := c.Writer.Status()
		fields := logger.WithContext(c)
		fields["duration_ms"] = time.Since(start).Milliseconds()
		fields["status_code"] = statusCode
		fields["client_ip"] = c.ClientIP()

		switch {
		case statusCode >= http.StatusInternalServerError:
			logger.Error("Request failed with server error", nil, fields)
		case statusCode >= http.StatusBadRequest:
			logger.Warn("Request failed with client error", fields)
		default:
			logger.Debug("Request completed", fields)
		}
	}
}

// SentryMiddleware returns the Sentry middleware.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry recovers from panics, reports them and answers 500.
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.WithScope(func(scope *sentry.Scope) {
						scope.SetRequest(c.Request)
						scope.SetTag("request_id", c.GetString("request_id"))
						hub.RecoverWithContext(c.Request.Context(), err)
					})
				}

				logger.Error("Panic recovered", nil, logger.Fields{
					"request_id": c.GetString("request_id"),
					"error":      err,
					"path":       c.Request.URL.Path,
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": c.GetString("request_id"),
				})
			}
		}()
		c.Next()
	}
}

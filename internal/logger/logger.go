// Package logger writes leveled, structured log lines and mirrors them to
// Sentry when a client is bound to the current hub.
package logger

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Fields represents structured log fields.
type Fields map[string]any

// WithContext extracts request context for logging.
func WithContext(c *gin.Context) Fields {
	return Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
}

// Info logs an informational message with structured fields.
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s%s", msg, formatFields(fields))
	breadcrumb("info", msg, fields, sentry.LevelInfo)
}

// Warn logs a warning message with structured fields.
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s%s", msg, formatFields(fields))
	breadcrumb("warning", msg, fields, sentry.LevelWarning)
}

// Debug logs a debug message with structured fields.
func Debug(msg string, fields Fields) {
	log.Printf("[DEBUG] %s%s", msg, formatFields(fields))
	breadcrumb("debug", msg, fields, sentry.LevelDebug)
}

// Error logs an error message with structured fields and sends the error
// to Sentry. A nil err is captured as a message.
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v%s", msg, err, formatFields(fields))

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range fields {
			scope.SetContext(key, map[string]any{"value": value})
		}
		if requestID, ok := fields["request_id"].(string); ok {
			scope.SetTag("request_id", requestID)
		}
		if provider, ok := fields["provider"].(string); ok {
			scope.SetTag("provider", provider)
		}
		if err != nil {
			hub.CaptureException(err)
		} else {
			scope.SetLevel(sentry.LevelError)
			hub.CaptureMessage(msg)
		}
	})
}

func breadcrumb(kind, msg string, fields Fields, level sentry.Level) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     kind,
			Category: "log",
			Message:  msg,
			Data:     map[string]any(fields),
			Level:    level,
		}, nil)
	}
}

// formatFields renders fields as " key=value" pairs in key order.
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\n") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case float64:
		return fmt.Sprintf("%.2f", val)
	case error:
		return fmt.Sprintf("%q", val.Error())
	default:
		return fmt.Sprintf("%v", val)
	}
}

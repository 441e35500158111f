package middleware

import (
	"encoding/json"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerMiddleware writes JSON-structured access logs for each HTTP request.
// It replaces Gin's default logger with a compact, machine-parsable format.
// Sensitive data (tokens, media payloads) must not be logged here.
func LoggerMiddleware() gin.HandlerFunc {
	hostname, _ := os.Hostname()
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		entry := struct {
			Timestamp string  `json:"ts"`
			Level     string  `json:"level"`
			Hostname  string  `json:"host"`
			ClientIP  string  `json:"ip"`
			Method    string  `json:"method"`
			Path      string  `json:"path"`
			Status    int     `json:"status"`
			LatencyMs float64 `json:"latencyMs"`
			BodySize  int     `json:"size"`
			Error     string  `json:"error,omitempty"`
		}{
			Timestamp: param.TimeStamp.UTC().Format(time.RFC3339Nano),
			Level:     "info",
			Hostname:  hostname,
			ClientIP:  param.ClientIP,
			Method:    param.Method,
			Path:      param.Path,
			Status:    param.StatusCode,
			LatencyMs: float64(param.Latency) / float64(time.Millisecond),
			BodySize:  param.BodySize,
			Error:     param.ErrorMessage,
		}
		b, _ := json.Marshal(entry)
		return string(b) + "\n"
	})
}

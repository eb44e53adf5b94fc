package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger logs each request once completed. Authorization and Cookie
// headers never reach the log.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Core().Enabled(zapcore.DebugLevel) {
			hdr, _ := json.Marshal(scrub(c.Request.Header))
			log.Debug("incoming request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.ByteString("hdr", hdr),
			)
		}

		ts := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(ts)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		}

		if c.IsAborted() {
			log.Warn("request aborted", fields...)
			return
		}
		for _, e := range c.Errors {
			log.Error("handler error", append(fields, zap.Error(e))...)
		}
		log.Info("request completed", fields...)
	}
}

func scrub(headers map[string][]string) map[string][]string {
	clone := make(map[string][]string, len(headers))
	for k, v := range headers {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "authorization") || strings.Contains(lower, "cookie") {
			clone[k] = []string{"[redacted]"}
			continue
		}
		clone[k] = v
	}
	return clone
}

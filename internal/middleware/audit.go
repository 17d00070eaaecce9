package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs every successful write with the token subject that made it.
// Reads pass through untouched.
func Audit(logger *zap.Logger, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		subject := ""
		if claims := Claims(c); claims != nil {
			subject = claims.Subject
		}
		logger.Info("record changed",
			zap.String("resource", resource),
			zap.String("method", c.Request.Method),
			zap.String("record_id", c.Param("id")),
			zap.String("subject", subject),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

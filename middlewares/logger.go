package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jaypeewhat/ThriftStore/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once it finishes.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), rid))

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		elapsed := time.Since(start)
		switch {
		case len(c.Errors) > 0:
			log.Errorf(ctx, "%s %s %d %s: %s", c.Request.Method, c.FullPath(), status, elapsed, c.Errors.String())
		case status >= 500:
			log.Errorf(ctx, "%s %s %d %s", c.Request.Method, c.FullPath(), status, elapsed)
		default:
			log.Infof(ctx, "%s %s %d %s", c.Request.Method, c.FullPath(), status, elapsed)
		}
	}
}

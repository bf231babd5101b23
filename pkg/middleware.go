package pkg

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLoggedBody caps the request body copied into the access log. Signed
// transactions can be large.
const maxLoggedBody = 4 << 10

// LogMiddleware 访问日志, 失败的请求以 Warn 级别记录
func LogMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		data, _ := c.GetRawData()
		c.Request.Body = io.NopCloser(bytes.NewReader(data)) // 关键点

		c.Next()

		body := data
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
		}
		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.ByteString("body", body),
			zap.Duration("duration", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn(path, fields...)
			return
		}
		logger.Info(path, fields...)
	}
}

// CORSMiddleware 跨域中间件, 所有接口都是 POST
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

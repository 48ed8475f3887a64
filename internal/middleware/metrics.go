package middleware

import (
	"time"

	"github.com/haierkeys/note-attachment-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 记录请求计数和耗时，路径使用路由模式避免标签爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/note-attachment-service/pkg/app"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	"github.com/haierkeys/note-attachment-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
func RecoveryWithLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		defer func() {
			if err := recover(); err != nil {
				var errorMsg string
				switch e := err.(type) {
				case string:
					errorMsg = e
				case error:
					errorMsg = e.Error()
				default:
					errorMsg = fmt.Sprintf("%v", e)
				}

				lg.Error("Recovered from panic",
					zap.String(logger.FieldTraceID, GetTraceIDFromGin(c)),
					zap.Int("status", c.Writer.Status()),
					zap.String("router", path),
					zap.String("method", c.Request.Method),
					zap.String("query", query),
					zap.String("ip", c.ClientIP()),
					zap.String("user-agent", c.Request.UserAgent()),
					zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
					zap.String("panic_value", errorMsg),
					zap.String("stack", string(debug.Stack())),
				)

				// 返回统一的错误响应
				app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
				c.Abort()
			}
		}()

		c.Next()
	}
}

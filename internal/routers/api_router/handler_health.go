package api_router

import (
	"context"
	"net/http"
	"time"

	"github.com/haierkeys/note-attachment-service/internal/app"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string  `json:"status"`   // "healthy" 或 "unhealthy"
	Version  string  `json:"version"`  // 服务版本号
	Uptime   float64 `json:"uptime"`   // 运行时间（秒）
	Database string  `json:"database"` // "connected" 或 "error"
	Storage  string  `json:"storage"`  // "connected" 或 "error"
	Queue    string  `json:"queue"`    // "connected" 或 "error"
}

const healthProbeTimeout = 3 * time.Second

// Check 健康检查接口
// @Summary 健康检查
// @Description 检查数据库、对象存储与消息队列连通性，任一失败返回 503
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	response := HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
		Storage:  "connected",
		Queue:    "connected",
	}

	if err := h.App.DB.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		h.logError(ctx, "HealthHandler.Check database", err)
		response.Status, response.Database = "unhealthy", "error"
	}
	if err := h.App.Storage.Ping(ctx); err != nil {
		h.logError(ctx, "HealthHandler.Check storage", err)
		response.Status, response.Storage = "unhealthy", "error"
	}
	if err := h.App.Queue.Ping(ctx); err != nil {
		h.logError(ctx, "HealthHandler.Check queue", err)
		response.Status, response.Queue = "unhealthy", "error"
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

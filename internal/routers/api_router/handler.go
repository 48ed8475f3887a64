// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/middleware"
	pkgapp "github.com/haierkeys/note-attachment-service/pkg/app"
	"github.com/haierkeys/note-attachment-service/pkg/code"
	apperrors "github.com/haierkeys/note-attachment-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// bindUri 绑定路径参数，失败时直接输出 400
func (h *Handler) bindUri(c *gin.Context, method string, params interface{}) bool {
	valid, errs := pkgapp.BindUriAndValid(c, params)
	if !valid {
		h.App.Logger().Warn(method+".BindUriAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return false
	}
	return true
}

// bind 绑定请求体，失败时直接输出 400
func (h *Handler) bind(c *gin.Context, method string, params interface{}) bool {
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn(method+".BindAndValid err", zap.Error(errs))
		pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return false
	}
	return true
}

// fail 记录错误并输出统一错误响应
// 4xx 仅记录 Warn，5xx 记录 Error
func (h *Handler) fail(c *gin.Context, method string, err error) {
	h.logError(c.Request.Context(), method, err)
	apperrors.ErrorResponse(c, err)
}

func (h *Handler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Status < 500 {
		h.App.Logger().Warn(method,
			zap.Error(err),
			zap.String("traceId", traceID),
		)
		return
	}
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}

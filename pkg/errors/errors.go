package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haierkeys/note-attachment-service/internal/middleware"
	"github.com/haierkeys/note-attachment-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、HTTP 状态、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status HTTP 状态码（不序列化）
	Status int `json:"-"`
	// Message 错误消息
	Message string `json:"message"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// Data 附加数据（可选），例如配额上限
	Data interface{} `json:"data,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As 追踪原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New builds an AppError from a catalogue code and an optional cause.
// New 从 Code 对象创建 AppError
func New(c *code.Code, cause error) *AppError {
	e := &AppError{
		Code:      c.Code(),
		Status:    c.StatusCode(),
		Message:   c.Msg(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
	}
	if c.HaveData() {
		e.Data = c.Data()
	}
	return e
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// Is reports whether err carries the given catalogue code anywhere in its chain.
// Is 判断错误链中是否包含指定的错误码
func Is(err error, c *code.Code) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == c.Code()
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr.Code() == c.Code()
	}
	return false
}

// GetAppError 从错误链中获取 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ErrorResponse writes err as the unified JSON error body using the HTTP status bound to its code.
// ErrorResponse 统一错误响应处理，使用错误码绑定的 HTTP 状态返回
func ErrorResponse(c *gin.Context, err error) {
	traceID := middleware.GetTraceIDFromGin(c)

	var resp *AppError
	var codeErr *code.Code
	switch {
	case GetAppError(err) != nil:
		resp = GetAppError(err)
	case errors.As(err, &codeErr):
		resp = New(codeErr, nil)
	default:
		resp = New(code.ErrorServerInternal, err)
	}
	resp.TraceID = traceID

	status := resp.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if resp.Cause != nil {
		_ = c.Error(resp.Cause)
	}
	c.Set("status_code", status)
	c.AbortWithStatusJSON(status, resp)
}

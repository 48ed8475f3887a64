package app

import (
	"net/http"
	"strings"

	"github.com/haierkeys/note-attachment-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionInfo version information // 版本信息
type VersionInfo struct {
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

type Response struct {
	Ctx *gin.Context
}

type Pager struct {
	Page      int `json:"page"`      // Page number // 页码
	PageSize  int `json:"pageSize"`  // Page size // 每页数量
	TotalRows int `json:"totalRows"` // Total rows // 总行数
}

type ListRes struct {
	List  interface{} `json:"list"`  // Data list // 数据清单
	Pager Pager       `json:"pager"` // Pagination info // 翻页信息
}

// Res is the unified response structure: Code/Status/Msg/Data
// Res 是统一的响应结构：Code/Status/Msg/Data
type Res struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Message interface{} `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
	TraceID string      `json:"traceId,omitempty"`
}

func NewResponse(ctx *gin.Context) *Response {
	return &Response{
		Ctx: ctx,
	}
}

// NewPager builds the pager block from the request query
// NewPager 根据请求参数构建翻页信息
func NewPager(c *gin.Context, totalRows int) *Pager {
	return &Pager{
		Page:      GetPage(c),
		PageSize:  GetPageSize(c),
		TotalRows: totalRows,
	}
}

// GetRequestIP gets the request IP
// GetRequestIP 获取ip
func GetRequestIP(c *gin.Context) string {
	reqIP := c.ClientIP()
	if reqIP == "::1" {
		reqIP = "127.0.0.1"
	}
	return reqIP
}

func GetAccessHost(c *gin.Context) string {
	accessProto := ""
	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto == "" {
		accessProto = "http" + "://"
	} else {
		accessProto = proto + "://"
	}
	return accessProto + c.Request.Host
}

// ToResponse output to browser using the unified Res envelope
// ToResponse 输出到浏览器：统一使用 Res
func (r *Response) ToResponse(codeObj *code.Code) {
	status := codeObj.StatusCode()
	r.Ctx.Set("status_code", status)

	// 204 / 304 不允许携带响应体
	if !bodyAllowed(status) {
		r.Ctx.Status(status)
		r.Ctx.Writer.WriteHeaderNow()
		return
	}

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
		TraceID: r.Ctx.GetString("trace_id"),
	}

	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	r.send(status, content)
}

// ToResponseList outputs list response using ListRes as Data
// ToResponseList 输出列表响应，使用 ListRes 作为 Data
func (r *Response) ToResponseList(codeObj *code.Code, list interface{}, totalRows int) {
	r.ToResponsePage(codeObj, list, *NewPager(r.Ctx, totalRows))
}

// ToResponsePage outputs list response with a caller-built pager
// ToResponsePage 输出列表响应，翻页信息由调用方提供
func (r *Response) ToResponsePage(codeObj *code.Code, list interface{}, pager Pager) {
	r.Ctx.Set("status_code", codeObj.StatusCode())

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data: ListRes{
			List:  list,
			Pager: pager,
		},
		TraceID: r.Ctx.GetString("trace_id"),
	}

	r.send(codeObj.StatusCode(), content)
}

// ToRaw writes data as the bare JSON body without the envelope
// ToRaw 直接输出 JSON，不包裹统一结构
func (r *Response) ToRaw(statusCode int, data interface{}) {
	r.Ctx.Set("status_code", statusCode)
	r.send(statusCode, data)
}

func (r *Response) send(statusCode int, content interface{}) {
	r.Ctx.JSON(statusCode, content)
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status <= 199:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

package code

import (
	"fmt"
	"net/http"
)

type Code struct {
	// 状态码
	code int
	// HTTP 状态码
	httpStatus int
	// 状态
	status bool
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers an error code bound to an HTTP status
// NewError 注册一个绑定 HTTP 状态码的错误码
func NewError(code int, httpStatus int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, httpStatus: httpStatus, status: false, Lang: l}
}

// NewSuss registers a success code bound to an HTTP status
// NewSuss 注册一个绑定 HTTP 状态码的成功码
func NewSuss(code int, httpStatus int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, httpStatus: httpStatus, status: true, Lang: l}
}

// Clone creates a fresh copy so that WithData / WithDetails never touch the shared catalogue entry
// Clone 创建一个新的 Code 副本，避免 WithData / WithDetails 修改全局共享对象
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		httpStatus: e.httpStatus,
		status:     e.status,
		Lang:       e.Lang,
		details:    []string{},
	}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData returns a copy carrying data
// WithData 返回携带数据的副本
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.details, c.haveDetails = e.details, e.haveDetails
	c.haveData = true
	c.data = data
	return c
}

// WithDetails returns a copy carrying details
// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.data, c.haveData = e.data, e.haveData
	c.haveDetails = true
	c.details = append(c.details, details...)
	return c
}

// Is reports whether two codes share the same numeric code
// Is 判断两个 Code 是否为同一个错误码
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}

// StatusCode returns the HTTP status bound to the code
// StatusCode 返回绑定的 HTTP 状态码
func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}

package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 合并所有错误信息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), "; ")
}

// MapsToString 字段名 -> 错误信息
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid binds query/form/json into v and validates it
// BindAndValid 绑定请求参数并校验
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return collect(c, c.ShouldBind(v))
}

// BindUriAndValid binds path parameters into v and validates it
// BindUriAndValid 绑定路径参数并校验
func BindUriAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	return collect(c, c.ShouldBindUri(v))
}

func collect(c *gin.Context, err error) (bool, ValidErrors) {
	if err == nil {
		return true, nil
	}

	var errs ValidErrors
	verrs, ok := err.(val.ValidationErrors)
	if !ok {
		errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
		return false, errs
	}

	var trans ut.Translator
	if v, exists := c.Get("trans"); exists {
		trans, _ = v.(ut.Translator)
	}

	for _, fe := range verrs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		errs = append(errs, &ValidError{Key: fe.Field(), Message: msg})
	}
	return false, errs
}

package middleware

import (
	"strings"

	"github.com/haierkeys/note-attachment-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		}

		lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))

		// 校验翻译器只注册了 en / zh
		transName := lang
		if strings.HasPrefix(lang, "zh") {
			transName = "zh"
			lang = "zh_cn"
		}

		if uni != nil {
			trans, found := uni.GetTranslator(transName)
			if !found {
				trans, _ = uni.GetTranslator("en")
			}
			c.Set("trans", trans)
		}

		_ = code.SetGlobalDefaultLang(lang)

		c.Next()
	}
}

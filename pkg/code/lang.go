package code

import (
	"errors"
	"sync/atomic"
)

// lang stores the English and Chinese text of a message
// lang 存储消息的英文与中文文本
type lang struct {
	en    string
	zh_cn string
}

const FALLBACK_LNG = "en"

// lng is the active message language // 当前消息语言
var lng atomic.Value

func init() {
	lng.Store(FALLBACK_LNG)
}

var supportedLanguages = []string{"en", "zh_cn"}

// GetMessage returns the message for the active language, falling back to English
// GetMessage 返回当前语言的消息，缺失时回退到英文
func (l lang) GetMessage() string {
	return l.get(GetGlobalDefaultLang())
}

func (l lang) get(language string) string {
	switch language {
	case "zh_cn":
		if l.zh_cn != "" {
			return l.zh_cn
		}
	}
	return l.en
}

// GetSupportedLanguages 返回支持的语言列表
func GetSupportedLanguages() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// SetGlobalDefaultLang sets the active message language
// SetGlobalDefaultLang 设置全局默认语言，不支持的语言将回退为英文
func SetGlobalDefaultLang(language string) error {
	for _, l := range supportedLanguages {
		if l == language {
			lng.Store(language)
			return nil
		}
	}
	lng.Store(FALLBACK_LNG)
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang 获取全局默认语言
func GetGlobalDefaultLang() string {
	if v, ok := lng.Load().(string); ok {
		return v
	}
	return FALLBACK_LNG
}

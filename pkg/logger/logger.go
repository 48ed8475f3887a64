// Package logger builds the service-wide zap logger.
// Package logger 构建全局 zap 日志器
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string
	// File 日志文件路径，为空则只输出到控制台
	File string
	// Production 为 true 时文件输出使用 JSON 编码
	Production bool
}

// NewLogger builds a tee logger writing to stderr and, when configured, to a file.
// NewLogger 构建同时输出到控制台和文件的日志器
func NewLogger(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0754); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}

		var enc zapcore.Encoder
		if cfg.Production {
			prodCfg := zap.NewProductionEncoderConfig()
			prodCfg.EncodeTime = zapcore.ISO8601TimeEncoder
			enc = zapcore.NewJSONEncoder(prodCfg)
		} else {
			fileCfg := zap.NewDevelopmentEncoderConfig()
			fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
			enc = zapcore.NewConsoleEncoder(fileCfg)
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

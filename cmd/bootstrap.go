package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger 启动阶段日志器
// 在配置加载、主日志器初始化之前使用，始终输出到 stderr
var bootstrapLogger *zap.Logger

func init() {
	bootstrapLogger = newConsoleLogger(os.Getenv("DEBUG") != "")
}

// newConsoleLogger 创建彩色控制台日志器
func newConsoleLogger(debug bool) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)
	return zap.New(core, zap.AddCaller()).Named("bootstrap")
}

// BootstrapLogger 获取启动阶段日志器
func BootstrapLogger() *zap.Logger {
	return bootstrapLogger
}

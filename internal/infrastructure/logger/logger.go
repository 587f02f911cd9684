package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// New 根据日志配置创建*slog.Logger，并设置为默认logger
// 1. format=json 输出结构化JSON（生产环境）
// 2. format=text 输出便于阅读的文本并附带源码位置（开发环境）
// 3. level取值debug/info/warn/error，大小写不敏感，默认info
func New(cfg config.LogConfig) *slog.Logger {
	logger := NewWithWriter(cfg, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// NewWithWriter 输出到指定writer，不修改默认logger
func NewWithWriter(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard 丢弃所有输出（测试用）
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

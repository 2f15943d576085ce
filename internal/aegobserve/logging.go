// Package aegobserve file: internal/aegobserve/logging.go
package aegobserve

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ParseLevel 将配置字符串转换为 slog 级别，未知值回退 INFO
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger 初始化全局的结构化日志记录器。
// 它应该在 main 函数的早期被调用。
func InitLogger(levelStr string) {
	InitLoggerTo(os.Stdout, levelStr)
}

// InitLoggerTo 与 InitLogger 相同，但允许指定输出目标 (CLI 模式下写 stderr)
func InitLoggerTo(w io.Writer, levelStr string) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(levelStr),
		AddSource: true,
	})
	slog.SetDefault(slog.New(handler))
}

// RequestLogger 是访问日志中间件
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if id := c.Writer.Header().Get("X-Request-ID"); id != "" {
			attrs = append(attrs, "request_id", id)
		}
		if c.Writer.Status() >= 500 {
			slog.Warn("请求处理完成", attrs...)
			return
		}
		slog.Info("请求处理完成", attrs...)
	}
}

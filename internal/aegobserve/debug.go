// Package aegobserve file: internal/aegobserve/debug.go
package aegobserve

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof" // 自动注册 pprof
	"time"
)

// NewPprofServer 返回一个在指定地址上暴露 /debug/pprof 的服务器，由调用方负责启动与关闭。
// addr 为空时返回 nil。
func NewPprofServer(addr string) *http.Server {
	if addr == "" {
		slog.Info("pprof endpoint is disabled because address is empty")
		return nil
	}
	return &http.Server{
		Addr:              addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

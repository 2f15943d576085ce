// file: cmd/gateway/serve.go

package main

import (
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/aegmiddleware"
	"EmployeeAegis/internal/aegobserve"
	"EmployeeAegis/internal/transport/http/router"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 在日志系统完全初始化前，使用标准 log
			log.Printf("EmployeeAegis %s 正在启动...", version)

			cfg, v, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			aegobserve.InitLogger(cfg.Server.LogLevel)
			return runServe(cmd.Context(), cfg, v)
		},
	}
}

func runServe(parent context.Context, cfg *aegconf.Config, v *viper.Viper) error {
	slog.Info("EmployeeAegis starting up", "version", version, "environment", cfg.Server.Environment, "default_backend", cfg.DataSource.Default)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := buildRegistry(cfg, v)
	if err != nil {
		return err
	}
	slog.Info("服务层: 后端注册表初始化完成", "backends", registry.Names())

	aegobserve.Register()
	slog.Info("监控: metrics 已注册。")

	handler := router.New(router.Dependencies{
		Registry:      registry,
		Limiter:       aegmiddleware.NewIPRateLimiter(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst),
		RequestBudget: cfg.Timeouts.Request,
		Development:   cfg.IsDevelopment(),
	})
	slog.Info("传输层: HTTP 路由器创建完成。")

	servers := []*http.Server{{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Server.EnablePprof {
		if pprofServer := aegobserve.NewPprofServer(cfg.Server.PprofAddr); pprofServer != nil {
			servers = append(servers, pprofServer)
		}
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("开始监听HTTP请求...", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("监听 %s 失败: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("收到停机信号，准备优雅关闭...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP服务优雅关闭失败", "address", srv.Addr, "error", err)
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("HTTP服务已成功关闭。程序即将退出。")
	return nil
}

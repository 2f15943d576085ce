// file: internal/transport/http/router/router.go
package router

import (
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/aegmiddleware"
	"EmployeeAegis/internal/aegobserve"
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/service"
	"EmployeeAegis/internal/transport/http/middleware"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Dependencies 结构体用于将所有依赖项注入到路由器中
type Dependencies struct {
	Registry      *service.Registry
	Limiter       *aegmiddleware.IPRateLimiter // nil 表示不限流
	RequestBudget time.Duration
	Development   bool
}

// legacyRoutes 让旧的 URL 继续可用
var legacyRoutes = map[string]string{
	"/api/supabase-test":                   aegconf.BackendSupabase,
	"/.netlify/functions/employee":         aegconf.BackendSnowflake,
	"/.netlify/functions/employee-sql-api": aegconf.BackendSnowflakeAPI,
}

// New 创建并配置基于 Gin 的 HTTP 路由器
func New(deps Dependencies) http.Handler {
	router := gin.New()

	// --- 配置全局中间件 ---
	// 顺序: 请求ID -> 访问日志 -> 指标 -> 恢复 -> 固定响应头 (处理 OPTIONS) -> 限流
	router.Use(
		middleware.RequestID(),
		aegobserve.RequestLogger(),
		aegobserve.PrometheusMiddleware(),
		gin.Recovery(),
		middleware.FixedHeaders(),
		deps.Limiter.Middleware(),
	)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, domain.ErrorEnvelope("Not found"))
	})

	router.GET("/healthz", healthHandler(deps.Registry))
	router.GET("/metrics", gin.WrapH(aegobserve.Handler()))

	// --- 数据平面 (Data Plane) ---
	// 错误映射必须在 gzip 之内，否则错误响应会写进已关闭的压缩流
	data := router.Group("",
		gzip.Gzip(gzip.DefaultCompression),
		middleware.ErrorHandlingMiddleware(deps.Development),
		middleware.RequestBudget(deps.RequestBudget),
	)
	{
		data.GET("/api/employee", employeeHandler(deps.Registry, ""))
		data.GET("/api/employee/:backend", employeeHandler(deps.Registry, ""))
		for path, backend := range legacyRoutes {
			data.GET(path, employeeHandler(deps.Registry, backend))
		}
	}

	return router
}

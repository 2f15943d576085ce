// Package aegobserve 暴露 Prometheus 指标
package aegobserve

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标定义
var (
	FetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "employeeaegis_fetch_total",
		Help: "随机取行次数，按后端与结果分类",
	}, []string{"backend", "outcome"})

	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "employeeaegis_fetch_stage_duration_seconds",
		Help:    "连接/查询各阶段耗时",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
	}, []string{"backend", "stage"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "employeeaegis_http_request_duration_seconds",
		Help:    "HTTP 请求耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "code"})
)

// Register 必须在 main 调用一次
func Register() {
	prometheus.MustRegister(FetchTotal, StageDuration, httpRequestDuration)
}

// Handler 返回 HTTP 处理器
func Handler() http.Handler { return promhttp.Handler() }

// ObserveStage 记录某个阶段的耗时
func ObserveStage(backend, stage string, started time.Time) {
	StageDuration.WithLabelValues(backend, stage).Observe(time.Since(started).Seconds())
}

// PrometheusMiddleware 记录每个请求的耗时。path 使用路由模板，避免标签爆炸。
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

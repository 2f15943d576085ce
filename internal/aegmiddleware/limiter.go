// Package aegmiddleware file: internal/aegmiddleware/limiter.go
package aegmiddleware

import (
	"EmployeeAegis/internal/core/domain"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// 不活跃 IP 的条目在 idleTTL 后过期
	idleTTL         = 15 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// RateLimitedMessage 是 429 响应中的错误信息
const RateLimitedMessage = "Too many requests, please try again later"

// ============================================================================
//  按 IP 地址的速率限制器 (Per-IP Rate Limiter)
// ============================================================================

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶。
// 条目存放在 go-cache 中，每次命中都会刷新过期时间 (滑动过期)。
type IPRateLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter 创建限制器。perMinute <= 0 时返回 nil，表示不限流。
func NewIPRateLimiter(perMinute float64, burst int) *IPRateLimiter {
	if perMinute <= 0 {
		slog.Info("[IP Limiter] 未启用")
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	l := &IPRateLimiter{
		limiters: cache.New(idleTTL, cleanupInterval),
		rate:     rate.Limit(perMinute / 60.0),
		burst:    burst,
	}
	slog.Info("[IP Limiter] 初始化完成", "rate_per_minute", perMinute, "burst", burst)
	return l
}

// getLimiter 返回或创建指定 IP 的速率限制器
func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if x, found := l.limiters.Get(ip); found {
		limiter := x.(*rate.Limiter)
		l.limiters.Set(ip, limiter, cache.DefaultExpiration)
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters.Set(ip, limiter, cache.DefaultExpiration)
	return limiter
}

// Allow 报告该 IP 此刻是否还有令牌
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.getLimiter(ip).Allow()
}

// Middleware 返回 gin 中间件。OPTIONS 预检请求永远不受限制。
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.Allow(ip) {
			slog.Warn("[IP Limiter] 请求过于频繁", "ip", ip, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.ErrorEnvelope(RateLimitedMessage))
			return
		}
		c.Next()
	}
}

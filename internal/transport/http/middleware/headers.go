// Package middleware file: internal/transport/http/middleware/headers.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// contractHeaders 必须出现在每一个响应上，包括预检请求和错误响应
var contractHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Access-Control-Allow-Methods", "GET, OPTIONS"},
	{"Content-Type", "application/json"},
}

// FixedHeaders 在处理器运行之前写入固定的响应头。
// OPTIONS 请求在这里直接以 200 和空响应体结束，不会触达凭据或后端。
func FixedHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range contractHeaders {
			h.Set(kv[0], kv[1])
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

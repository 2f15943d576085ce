// Package middleware file: internal/transport/http/middleware/budget.go
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

const budgetKey = "request_budget"

// RequestBudget 给整个请求设置总时限，连接与查询各自的时限都在它之内
func RequestBudget(budget time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), budget)
		defer cancel()

		c.Set(budgetKey, budget)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// BudgetFrom 在请求的总时限已耗尽时返回该时限
func BudgetFrom(c *gin.Context) (time.Duration, bool) {
	v, ok := c.Get(budgetKey)
	if !ok || c.Request.Context().Err() != context.DeadlineExceeded {
		return 0, false
	}
	budget, ok := v.(time.Duration)
	return budget, ok
}

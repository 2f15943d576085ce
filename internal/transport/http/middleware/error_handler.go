// Package middleware file: internal/transport/http/middleware/error_handler.go
package middleware

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandlingMiddleware 是一个Gin中间件，用于集中处理错误。
// 处理器只需要 c.Error(err) 然后返回，状态码与响应体在这里统一决定。
// development 为 true 时，未分类的 500 错误会附带完整的错误链。
func ErrorHandlingMiddleware(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// 只处理最后一个错误，它通常是根本原因
		err := c.Errors.Last().Err
		status, msg := classify(c, err)
		if status == 0 {
			status, msg = http.StatusInternalServerError, err.Error()
			if development {
				msg = fmt.Sprintf("%s\n\nDetails: %+v", msg, err)
			}
		}

		if c.Writer.Written() {
			slog.Error("响应已写出，无法再返回错误", "error", err)
			return
		}
		c.JSON(status, domain.ErrorEnvelope(msg))
	}
}

// classify 把已知的错误类型映射为状态码与对外消息。未知错误返回 0。
func classify(c *gin.Context, err error) (int, string) {
	var missing *port.MissingCredentialsError
	var store *port.StoreError

	switch {
	case errors.As(err, &missing):
		return http.StatusInternalServerError, missing.Error()

	case errors.Is(err, port.ErrUnknownBackend):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, port.ErrNoData):
		return http.StatusNotFound, port.ErrNoData.Error()

	case errors.As(err, &store):
		status := store.Status
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		return status, store.Message

	case errors.Is(err, port.ErrTimeout):
		return http.StatusInternalServerError, err.Error()

	case errors.Is(err, context.DeadlineExceeded):
		if budget, ok := BudgetFrom(c); ok {
			return http.StatusInternalServerError, fmt.Sprintf("request timed out after %s", budget)
		}
	}
	return 0, ""
}

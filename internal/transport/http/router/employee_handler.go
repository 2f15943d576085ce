// file: internal/transport/http/router/employee_handler.go
package router

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// employeeHandler 取一行随机员工数据。
// fixed 非空时固定使用该后端，否则使用路径参数 :backend，再否则使用默认后端。
func employeeHandler(registry *service.Registry, fixed string) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc, err := pick(registry, fixed, c.Param("backend"))
		if err != nil {
			_ = c.Error(err)
			return
		}

		res, err := svc.FetchRandomEmployee(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, domain.SuccessEnvelope(res))
	}
}

func pick(registry *service.Registry, fixed, param string) (*service.EmployeeService, error) {
	switch {
	case fixed != "":
		return registry.Lookup(fixed)
	case param != "":
		return registry.Lookup(param)
	default:
		return registry.Default(), nil
	}
}

// healthHandler 只报告进程存活与已注册的后端，不访问任何存储
func healthHandler(registry *service.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.ResponseEnvelope{
			Success: true,
			Data: gin.H{
				"status":   "ok",
				"default":  registry.Default().Name(),
				"backends": registry.Names(),
			},
		})
	}
}

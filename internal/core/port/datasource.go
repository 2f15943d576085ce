// Package port file: internal/core/port/datasource.go
package port

import (
	"EmployeeAegis/internal/core/domain"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Standard errors
var (
	ErrNoData         = errors.New("No employee data found")
	ErrSchemaMismatch = errors.New("列元数据与行数据长度不一致")
	ErrTimeout        = errors.New("操作超时")
	ErrUnknownBackend = errors.New("unknown backend")
)

// Backend 是所有后端存储适配器都必须实现的接口。
// 每个后端只提供一种能力：为单个请求打开一个一次性的 Connection。
type Backend interface {
	// Open 建立连接。对于无状态的 HTTP 后端，它只构造一个已认证的请求模板。
	Open(ctx context.Context, creds domain.Credentials) (Connection, error)

	// Type 返回后端的类型标识符
	Type() string
}

// Connection 是某个请求独占的连接句柄，只使用一次，之后必须 Close。
type Connection interface {
	// FetchRandomRow 取出一行伪随机数据。表为空时返回 ErrNoData。
	FetchRandomRow(ctx context.Context) (domain.RawRow, error)

	// Close 尽力释放底层资源
	Close() error
}

// MissingCredentialsError 表示缺少必填凭据 (ConfigError)，不重试。
type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	return "Missing required credentials: " + strings.Join(e.Fields, ", ")
}

// TimeoutError 表示连接或查询超过了各自的时限
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ConnectError 包装连接阶段的失败
type ConnectError struct {
	Backend string
	Err     error
}

func (e *ConnectError) Error() string { return e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError 包装查询/归一化阶段的失败
type QueryError struct {
	Backend string
	Err     error
}

func (e *QueryError) Error() string { return e.Err.Error() }
func (e *QueryError) Unwrap() error { return e.Err }

// StoreError 携带存储自己报告的 HTTP 状态码
type StoreError struct {
	Status  int
	Message string
}

func (e *StoreError) Error() string { return e.Message }

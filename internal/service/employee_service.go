// Package service file: internal/service/employee_service.go
package service

import (
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/aegobserve"
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DegradedWarning 在后端没有返回列元数据时附加到响应中
const DegradedWarning = "Response returned as array - column metadata missing"

// CredentialResolver 是 aegconf.Resolver 的最小接口，方便测试替换
type CredentialResolver interface {
	Resolve(b aegconf.Binding) (domain.Credentials, error)
}

// Timeouts 是连接与查询两个挂起点各自的时限
type Timeouts struct {
	Connect time.Duration
	Query   time.Duration
}

// EmployeeService 是参数化的单一流水线:
// 凭据解析 -> 建立连接 -> 随机取行 -> 结果归一化。每个请求相互独立。
type EmployeeService struct {
	name     string
	backend  port.Backend
	binding  aegconf.Binding
	resolver CredentialResolver
	timeouts Timeouts
}

// NewEmployeeService 为某个后端创建流水线。name 是对外的后端名称 (也用作指标标签)。
func NewEmployeeService(name string, backend port.Backend, binding aegconf.Binding, resolver CredentialResolver, timeouts Timeouts) *EmployeeService {
	return &EmployeeService{
		name:     name,
		backend:  backend,
		binding:  binding,
		resolver: resolver,
		timeouts: timeouts,
	}
}

// Name 返回后端名称
func (s *EmployeeService) Name() string { return s.name }

// FetchRandomEmployee 执行一次完整的取行流程。
// 成功打开连接后，无论成功、失败、超时或无数据，连接都会被关闭。
// 查询超时时，关闭推迟到后台的取行调用返回之后。
func (s *EmployeeService) FetchRandomEmployee(ctx context.Context) (result *domain.FetchResult, err error) {
	defer func() {
		aegobserve.FetchTotal.WithLabelValues(s.name, outcomeLabel(err)).Inc()
	}()

	creds, err := s.resolver.Resolve(s.binding)
	if err != nil {
		slog.Error("缺少必要的凭据", "backend", s.name, "error", err)
		return nil, err
	}

	started := time.Now()
	conn, _, err := runWithTimeout(ctx, s.name+" connection", s.timeouts.Connect,
		func(ctx context.Context) (port.Connection, error) {
			return s.backend.Open(ctx, creds)
		},
		func(late port.Connection, err error) {
			if err != nil {
				return
			}
			slog.Warn("连接在超时后才建立，已丢弃", "backend", s.name)
			s.closeQuietly(late)
		},
	)
	aegobserve.ObserveStage(s.name, "connect", started)
	if err != nil {
		logFailure("连接后端失败", s.name, err)
		return nil, &port.ConnectError{Backend: s.name, Err: err}
	}
	slog.Debug("后端连接已建立", "backend", s.name, "type", s.backend.Type())
	// 查询超时后取行仍在后台运行: 连接交给 late 回调，在取行返回后再关闭，
	// 避免与驱动并发使用同一个连接
	handedOff := false
	defer func() {
		if !handedOff {
			s.closeQuietly(conn)
		}
	}()

	started = time.Now()
	raw, running, err := runWithTimeout(ctx, "query execution", s.timeouts.Query, conn.FetchRandomRow,
		func(domain.RawRow, error) {
			slog.Warn("超时的查询已返回，关闭连接", "backend", s.name)
			s.closeQuietly(conn)
		},
	)
	handedOff = running
	aegobserve.ObserveStage(s.name, "query", started)
	if err != nil {
		if errors.Is(err, port.ErrNoData) {
			slog.Warn("表中没有可返回的数据", "backend", s.name)
		} else {
			logFailure("查询执行失败", s.name, err)
		}
		return nil, &port.QueryError{Backend: s.name, Err: err}
	}

	if !raw.IsNative() && !raw.HasColumnMetadata() {
		slog.Warn("响应中没有列元数据，按数组格式返回", "backend", s.name)
		return &domain.FetchResult{
			Backend:  s.name,
			Degraded: scalarSlice(raw.Values),
			Warning:  DegradedWarning,
		}, nil
	}

	record, err := Normalize(raw)
	if err != nil {
		logFailure("结果归一化失败", s.name, err)
		return nil, &port.QueryError{Backend: s.name, Err: err}
	}
	slog.Info("随机员工数据获取成功", "backend", s.name, "columns", len(record))
	return &domain.FetchResult{Backend: s.name, Record: record}, nil
}

func (s *EmployeeService) closeQuietly(conn port.Connection) {
	if err := conn.Close(); err != nil {
		slog.Error("关闭后端连接时发生错误", "backend", s.name, "error", err)
	}
}

// logFailure 记录错误消息、类型与完整的包装链
func logFailure(msg, backend string, err error) {
	slog.Error(msg,
		"backend", backend,
		"error", err.Error(),
		"type", fmt.Sprintf("%T", err),
		"chain", fmt.Sprintf("%+v", err),
	)
}

func outcomeLabel(err error) string {
	var missing *port.MissingCredentialsError
	var store *port.StoreError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &missing):
		return "missing_credentials"
	case errors.Is(err, port.ErrNoData):
		return "no_data"
	case isTimeout(err):
		return "timeout"
	case errors.As(err, &store):
		return "store_error"
	default:
		return "error"
	}
}

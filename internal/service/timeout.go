// Package service file: internal/service/timeout.go
package service

import (
	"EmployeeAegis/internal/core/port"
	"context"
	"errors"
	"fmt"
	"time"
)

// runWithTimeout 让 fn 与一个计时器竞争。
// 计时器 (或父 context) 先结束时立即返回错误，fn 仍在后台运行，此时 running 为 true。
// fn 之后返回时，无论成功与否都会调用 late (可为 nil)，由它释放 fn 仍在使用的资源。
// running 为 true 时调用方不得再并发使用 fn 所依赖的对象。
func runWithTimeout[T any](
	parent context.Context,
	op string,
	timeout time.Duration,
	fn func(context.Context) (T, error),
	late func(T, error),
) (val T, running bool, err error) {
	ctx, cancel := context.WithTimeout(parent, timeout)

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{val: v, err: err}
	}()

	var zero T
	select {
	case out := <-done:
		cancel()
		if out.err != nil && ctx.Err() != nil {
			return zero, false, expired(parent, op, timeout)
		}
		return out.val, false, out.err
	case <-ctx.Done():
		err := expired(parent, op, timeout)
		go func() {
			defer cancel()
			out := <-done
			if late != nil {
				late(out.val, out.err)
			}
		}()
		return zero, true, err
	}
}

// expired 区分自身计时器超时与父 context 结束
func expired(parent context.Context, op string, timeout time.Duration) error {
	if err := parent.Err(); err != nil {
		return fmt.Errorf("%s 被中止: %w", op, err)
	}
	return &port.TimeoutError{Op: op, After: timeout}
}

// isTimeout 判断错误链中是否包含超时
func isTimeout(err error) bool {
	return errors.Is(err, port.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

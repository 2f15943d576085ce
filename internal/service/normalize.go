// Package service file: internal/service/normalize.go
package service

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Normalize 把存储原生的一行转换为统一的 EmployeeRecord。
//   - 原生键值行: 浅拷贝，避免下游修改源对象
//   - 位置行: 按下标把列名与值配对，长度不一致时返回 ErrSchemaMismatch
//
// 返回值中只包含标量或 JSON 对象/数组，不会泄露驱动内部对象。
// 没有列元数据的位置行不在这里处理，见 EmployeeService 的降级分支。
func Normalize(raw domain.RawRow) (domain.EmployeeRecord, error) {
	if raw.IsNative() {
		record := make(domain.EmployeeRecord, len(raw.Native))
		for k, v := range raw.Native {
			record[k] = scalar(v)
		}
		return record, nil
	}

	if len(raw.Columns) != len(raw.Values) {
		return nil, fmt.Errorf("%w: %d 个列名, %d 个值", port.ErrSchemaMismatch, len(raw.Columns), len(raw.Values))
	}
	record := make(domain.EmployeeRecord, len(raw.Columns))
	for i, col := range raw.Columns {
		record[col] = scalar(raw.Values[i])
	}
	return record, nil
}

// scalar 将驱动返回的值转换为可以直接序列化的值。
// 只有无法识别的驱动类型才会退化为 fmt.Sprint 文本。
func scalar(v any) any {
	switch val := v.(type) {
	case nil, bool, string, json.Number, json.RawMessage, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val
	// JSON 对象与数组 (jsonb、数组列) 原样保留
	case map[string]any, []any:
		return val
	case []byte:
		return string(val)
	case [16]byte:
		// pgx 把 uuid 列解码为 [16]byte
		return uuid.UUID(val).String()
	case driver.Valuer:
		inner, err := val.Value()
		if err != nil {
			return fmt.Sprint(val)
		}
		if _, again := inner.(driver.Valuer); again {
			return fmt.Sprint(inner)
		}
		return scalar(inner)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// scalarSlice 用于降级分支，保证原始数组中同样只有标量
func scalarSlice(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = scalar(v)
	}
	return out
}

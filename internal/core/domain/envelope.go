// Package domain file: internal/core/domain/envelope.go
package domain

// ResponseEnvelope 是对外固定的 JSON 响应结构。Data 与 Error 有且仅有一个被填充。
type ResponseEnvelope struct {
	Success bool   `json:"success" yaml:"success"`
	Data    any    `json:"data,omitempty" yaml:"data,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

// SuccessEnvelope 根据取行结果构造成功响应
func SuccessEnvelope(res *FetchResult) ResponseEnvelope {
	if res.Record == nil {
		return ResponseEnvelope{Success: true, Data: res.Degraded, Warning: res.Warning}
	}
	return ResponseEnvelope{Success: true, Data: res.Record}
}

// ErrorEnvelope 构造失败响应
func ErrorEnvelope(msg string) ResponseEnvelope {
	return ResponseEnvelope{Success: false, Error: msg}
}

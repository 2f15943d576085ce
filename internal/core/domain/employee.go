// Package domain file: internal/core/domain/employee.go
package domain

// Credentials 是一次请求连接后端存储所需的凭据。
// Account / Principal / Secret 对所有远程存储都是必填的；其余字段按存储类型可选。
type Credentials struct {
	Account   string
	Principal string // 用户名或令牌
	Secret    string // 密码或令牌
	Warehouse string
	Database  string
	Schema    string

	// Extra 保存特定后端才使用的附加值，例如私钥口令
	Extra map[string]string
}

// RawRow 是存储原生的一行结果，在归一化之前。
// 三种形态:
//   - 位置形态: Values + Columns (Snowflake SQL API, database/sql)
//   - 原生形态: Native (PostgREST)
//   - 降级形态: 只有 Values，缺少列元数据
type RawRow struct {
	Columns []string
	Values  []any
	Native  map[string]any
}

// IsNative 判断该行是否已经是键值结构
func (r RawRow) IsNative() bool {
	return r.Native != nil
}

// HasColumnMetadata 判断位置形态的行是否携带列名
func (r RawRow) HasColumnMetadata() bool {
	return r.Columns != nil
}

// EmployeeRecord 表示恰好一行员工数据，列名 -> 标量值
type EmployeeRecord map[string]any

// FetchResult 是一次随机取行的最终结果。
// 正常情况下 Record 非空；当后端没有返回列元数据时，Degraded 保存原始数组，并附带 Warning。
type FetchResult struct {
	Backend  string
	Record   EmployeeRecord
	Degraded []any
	Warning  string
}

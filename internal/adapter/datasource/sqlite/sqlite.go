// Package sqlite 是本地开发使用的 SQLite 后端
// internal/adapter/datasource/sqlite/sqlite.go
package sqlite

import (
	"EmployeeAegis/internal/adapter/datasource/sqldb"
	"EmployeeAegis/internal/core/domain"
	"errors"

	_ "modernc.org/sqlite"
)

const busyTimeoutPragma = "busy_timeout(5000)"

// New 创建 SQLite 后端。凭据中的 Account 为数据库文件路径。
func New(table string) *sqldb.Backend {
	return sqldb.New("sqlite_builtin", "sqlite", table, DSN)
}

// DSN 以只读方式打开已存在的数据库文件，避免误建空库
func DSN(creds domain.Credentials) (string, error) {
	if creds.Account == "" {
		return "", errors.New("SQLite 数据库路径不能为空")
	}
	return "file:" + creds.Account + "?mode=ro&_pragma=" + busyTimeoutPragma, nil
}

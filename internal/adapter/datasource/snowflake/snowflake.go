// Package snowflake 是基于官方 Go 驱动 (gosnowflake) 的有状态会话后端
package snowflake

import (
	"EmployeeAegis/internal/adapter/datasource/sqldb"
	"EmployeeAegis/internal/core/domain"
	"errors"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
)

// New 创建 Snowflake SDK 后端。loginTimeout 与连接超时保持一致。
func New(table string, loginTimeout time.Duration) *sqldb.Backend {
	return sqldb.New("snowflake_sdk", "snowflake", table, func(creds domain.Credentials) (string, error) {
		cfg, err := Config(creds, loginTimeout)
		if err != nil {
			return "", err
		}
		return sf.DSN(cfg)
	})
}

// Config 把凭据转换为驱动配置，可选项为空时不设置
func Config(creds domain.Credentials, loginTimeout time.Duration) (*sf.Config, error) {
	if creds.Account == "" || creds.Principal == "" || creds.Secret == "" {
		return nil, errors.New("Snowflake 账户、用户名和密码均不能为空")
	}
	cfg := &sf.Config{
		Account:      creds.Account,
		User:         creds.Principal,
		Password:     creds.Secret,
		LoginTimeout: loginTimeout,
	}
	if creds.Warehouse != "" {
		cfg.Warehouse = creds.Warehouse
	}
	if creds.Database != "" {
		cfg.Database = creds.Database
	}
	if creds.Schema != "" {
		cfg.Schema = creds.Schema
	}
	return cfg, nil
}

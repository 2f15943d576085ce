// Package postgres 是基于 pgx 的有状态会话后端，可直连 Supabase 底层的 Postgres
package postgres

import (
	"EmployeeAegis/internal/adapter/datasource/sqldb"
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var _ port.Backend = (*Backend)(nil)

// closeTimeout 是断开连接时给服务端的最长等待
const closeTimeout = 5 * time.Second

type Backend struct {
	query string
}

// New 创建 Postgres 后端。table 必须是已校验过的标识符。
func New(table string) *Backend {
	return &Backend{query: sqldb.RandomRowQuery(table)}
}

func (b *Backend) Type() string { return "postgres_pgx" }

// ConnConfig 解析连接 URL，并用凭据覆盖其中的用户名与密码
func ConnConfig(creds domain.Credentials) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(creds.Account)
	if err != nil {
		return nil, fmt.Errorf("解析 Postgres 连接 URL 失败: %w", err)
	}
	cfg.User = creds.Principal
	cfg.Password = creds.Secret
	return cfg, nil
}

func (b *Backend) Open(ctx context.Context, creds domain.Credentials) (port.Connection, error) {
	cfg, err := ConnConfig(creds)
	if err != nil {
		return nil, err
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("连接 Postgres 失败: %w", err)
	}
	return &Connection{conn: conn, query: b.query}, nil
}

type Connection struct {
	conn  *pgx.Conn
	query string
}

func (c *Connection) FetchRandomRow(ctx context.Context) (domain.RawRow, error) {
	rows, err := c.conn.Query(ctx, c.query)
	if err != nil {
		return domain.RawRow{}, fmt.Errorf("执行随机取行查询失败: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.RawRow{}, fmt.Errorf("迭代结果集失败: %w", err)
		}
		return domain.RawRow{}, port.ErrNoData
	}
	values, err := rows.Values()
	if err != nil {
		return domain.RawRow{}, fmt.Errorf("读取行数据失败: %w", err)
	}
	return domain.RawRow{Columns: columns, Values: values}, nil
}

func (c *Connection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return c.conn.Close(ctx)
}

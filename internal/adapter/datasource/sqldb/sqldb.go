// Package sqldb 是基于 database/sql 的通用后端，适用于能够在服务端完成随机排序的存储。
package sqldb

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"context"
	"database/sql"
	"fmt"
)

// 断言 *Backend 实现 port.Backend 接口，编译期校验
var _ port.Backend = (*Backend)(nil)

// DSNFunc 根据凭据构造驱动专用的连接串
type DSNFunc func(creds domain.Credentials) (string, error)

// Backend 使用 database/sql 驱动建立一次性会话
type Backend struct {
	kind       string
	driverName string
	dsn        DSNFunc
	query      string
}

// New 创建后端。table 必须是已校验过的标识符。
func New(kind, driverName, table string, dsn DSNFunc) *Backend {
	return &Backend{
		kind:       kind,
		driverName: driverName,
		dsn:        dsn,
		query:      RandomRowQuery(table),
	}
}

// RandomRowQuery 返回服务端随机排序取一行的 SQL
func RandomRowQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s ORDER BY RANDOM() LIMIT 1", table)
}

// Type 返回适配器类型
func (b *Backend) Type() string { return b.kind }

// Open 打开 *sql.DB 并立即取出一个真实会话，确保连接在计时范围内建立
func (b *Backend) Open(ctx context.Context, creds domain.Credentials) (port.Connection, error) {
	dsn, err := b.dsn(creds)
	if err != nil {
		return nil, fmt.Errorf("构建 %s 连接串失败: %w", b.kind, err)
	}
	db, err := sql.Open(b.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 %s 数据库失败: %w", b.kind, err)
	}
	// 不使用连接池: 每个请求独占一个会话
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接 %s 失败: %w", b.kind, err)
	}
	return &Connection{db: db, conn: conn, query: b.query}, nil
}

// Connection 是单次请求独占的会话
type Connection struct {
	db    *sql.DB
	conn  *sql.Conn
	query string
}

// FetchRandomRow 执行随机取行查询
func (c *Connection) FetchRandomRow(ctx context.Context) (domain.RawRow, error) {
	rows, err := c.conn.QueryContext(ctx, c.query)
	if err != nil {
		return domain.RawRow{}, fmt.Errorf("执行随机取行查询失败: %w", err)
	}
	defer rows.Close()

	row, err := ScanFirst(rows)
	if err != nil {
		return domain.RawRow{}, err
	}
	return row, nil
}

// Close 依次关闭会话与数据库句柄
func (c *Connection) Close() error {
	connErr := c.conn.Close()
	dbErr := c.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}

// ScanFirst 读取结果集的第一行，保留列顺序。没有任何行时返回 port.ErrNoData。
func ScanFirst(rows *sql.Rows) (domain.RawRow, error) {
	columns, err := rows.Columns()
	if err != nil {
		return domain.RawRow{}, fmt.Errorf("读取列元数据失败: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return domain.RawRow{}, fmt.Errorf("迭代结果集失败: %w", err)
		}
		return domain.RawRow{}, port.ErrNoData
	}

	scanDest := make([]any, len(columns))
	scanDestPtrs := make([]any, len(columns))
	for i := range scanDest {
		scanDestPtrs[i] = &scanDest[i]
	}
	if err := rows.Scan(scanDestPtrs...); err != nil {
		return domain.RawRow{}, fmt.Errorf("扫描行数据失败: %w", err)
	}
	for i, v := range scanDest {
		if b, ok := v.([]byte); ok {
			scanDest[i] = string(b)
		}
	}
	return domain.RawRow{Columns: columns, Values: scanDest}, nil
}

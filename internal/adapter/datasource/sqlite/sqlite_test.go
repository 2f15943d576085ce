// file: internal/adapter/datasource/sqlite/sqlite_test.go
package sqlite

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createEmployees = `CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT NOT NULL, title TEXT, salary REAL)`

func TestBackend_Type(t *testing.T) {
	assert.Equal(t, "sqlite_builtin", New("employees").Type())
}

func TestDSN(t *testing.T) {
	dsn, err := DSN(domain.Credentials{Account: "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/x.db?mode=ro&_pragma=busy_timeout(5000)", dsn)

	_, err = DSN(domain.Credentials{})
	assert.Error(t, err)
}

func TestFetchRandomRow_ReturnsOneRowWithAllColumns(t *testing.T) {
	path := createTestDB(t,
		createEmployees,
		`INSERT INTO employees (id, name, title, salary) VALUES (1, 'Ada', 'Engineer', 100.5)`,
		`INSERT INTO employees (id, name, title, salary) VALUES (2, 'Grace', 'Admiral', 200)`,
		`INSERT INTO employees (id, name, title, salary) VALUES (3, 'Linus', NULL, 50)`,
	)
	ctx := context.Background()

	conn, err := New("employees").Open(ctx, domain.Credentials{Account: path})
	require.NoError(t, err)
	defer conn.Close()

	row, err := conn.FetchRandomRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "title", "salary"}, row.Columns)
	require.Len(t, row.Values, 4)
	assert.Contains(t, []any{int64(1), int64(2), int64(3)}, row.Values[0])
	assert.IsType(t, "", row.Values[1])
}

func TestFetchRandomRow_EmptyTable(t *testing.T) {
	path := createTestDB(t, createEmployees)
	ctx := context.Background()

	conn, err := New("employees").Open(ctx, domain.Credentials{Account: path})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.FetchRandomRow(ctx)
	assert.ErrorIs(t, err, port.ErrNoData)
}

func TestFetchRandomRow_MissingTable(t *testing.T) {
	path := createTestDB(t, `CREATE TABLE other (id INTEGER)`)
	ctx := context.Background()

	conn, err := New("employees").Open(ctx, domain.Credentials{Account: path})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.FetchRandomRow(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrNoData)
}

func TestOpen_MissingFileFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.db")
	_, err := New("employees").Open(context.Background(), domain.Credentials{Account: missing})
	assert.Error(t, err, "只读模式下不应创建新的数据库文件")
}

func TestClose_ReleasesSession(t *testing.T) {
	path := createTestDB(t, createEmployees)
	ctx := context.Background()

	conn, err := New("employees").Open(ctx, domain.Credentials{Account: path})
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	_, err = conn.FetchRandomRow(ctx)
	assert.Error(t, err, "关闭后的会话不应再可用")
}

// file: internal/adapter/datasource/sqlite/main_test.go
package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// ============================================================================
//  共享测试辅助工具 (Shared Test Helpers)
// ============================================================================

// createTestDB 创建一个带有指定 schema 的临时数据库文件，返回文件路径。
// 这个定义将在这个包的所有测试文件中共享。
func createTestDB(t *testing.T, createStmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "employees.db")

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)

	for _, stmt := range createStmts {
		_, err = db.Exec(stmt)
		require.NoError(t, err, "Failed to execute statement: %s", stmt)
	}
	require.NoError(t, db.Close())

	return path
}

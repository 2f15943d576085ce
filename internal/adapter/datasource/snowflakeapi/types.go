// Package snowflakeapi file: internal/adapter/datasource/snowflakeapi/types.go
package snowflakeapi

// statementRequest 是 POST /api/v2/statements 的请求体
type statementRequest struct {
	Statement string `json:"statement"`
	Timeout   int    `json:"timeout,omitempty"` // 秒
	Warehouse string `json:"warehouse,omitempty"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
}

// statementResponse 同时覆盖 200 (结果) 与 202 (仍在执行) 两种响应
type statementResponse struct {
	ResultSetMetaData  *resultSetMetaData `json:"resultSetMetaData"`
	Data               [][]any            `json:"data"`
	Code               string             `json:"code"`
	Message            string             `json:"message"`
	StatementHandle    string             `json:"statementHandle"`
	StatementStatusURL string             `json:"statementStatusUrl"`
}

type resultSetMetaData struct {
	NumRows int          `json:"numRows"`
	RowType []columnMeta `json:"rowType"`
}

type columnMeta struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// columns 返回列名；没有元数据时返回 nil
func (r *statementResponse) columns() []string {
	if r.ResultSetMetaData == nil || len(r.ResultSetMetaData.RowType) == 0 {
		return nil
	}
	names := make([]string, len(r.ResultSetMetaData.RowType))
	for i, c := range r.ResultSetMetaData.RowType {
		names[i] = c.Name
	}
	return names
}

// file: internal/adapter/datasource/supabase/supabase.go
package supabase

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const restPath = "/rest/v1/"

// Int64N 返回 [0, n) 内的随机数, 测试时可替换
type Int64N func(n int64) int64

type Options struct {
	HTTPClient *http.Client
	Rand       Int64N
}

// Backend 通过 PostgREST 先计数再按偏移取行
type Backend struct {
	table string
	opts  Options
}

func New(table string, opts Options) *Backend {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.Int64N
	}
	return &Backend{table: table, opts: opts}
}

func (b *Backend) Type() string { return "supabase_postgrest" }

// Open 只准备请求模板, 不做网络 I/O
func (b *Backend) Open(_ context.Context, creds domain.Credentials) (port.Connection, error) {
	base, err := url.Parse(strings.TrimSuffix(creds.Account, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("无效的 SUPABASE_URL %q", creds.Account)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + restPath + b.table
	base.RawPath = ""
	return &tableClient{
		endpoint: base,
		key:      creds.Secret,
		client:   b.opts.HTTPClient,
		rand:     b.opts.Rand,
	}, nil
}

type tableClient struct {
	endpoint *url.URL
	key      string
	client   *http.Client
	rand     Int64N
}

func (c *tableClient) Close() error { return nil }

func (c *tableClient) FetchRandomRow(ctx context.Context) (domain.RawRow, error) {
	count, err := c.count(ctx)
	if err != nil {
		return domain.RawRow{}, err
	}
	if count == 0 {
		slog.Warn("Supabase 表为空, 或者 RLS 策略阻止了访问", "table", c.endpoint.Path)
		return domain.RawRow{}, port.ErrNoData
	}

	offset := PickOffset(count, c.rand)
	slog.Debug("按随机偏移读取员工", "offset", offset, "total", count)

	rows, err := c.rowAt(ctx, offset)
	if err != nil {
		return domain.RawRow{}, err
	}
	if len(rows) == 0 {
		slog.Warn("Supabase 查询没有返回数据, 可能是表为空、RLS 策略阻止访问或查询条件有误", "offset", offset)
		return domain.RawRow{}, port.ErrNoData
	}
	return domain.RawRow{Native: rows[0]}, nil
}

// PickOffset 在 [0, count-1] 内均匀选取偏移
func PickOffset(count int64, rnd Int64N) int64 {
	if count <= 1 {
		return 0
	}
	return rnd(count)
}

func (c *tableClient) count(ctx context.Context) (int64, error) {
	u := *c.endpoint
	u.RawQuery = url.Values{"select": {"*"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.do(req)
	if err != nil {
		return 0, countFailed(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, countFailed(errorMessage(resp))
	}
	n, err := ParseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, countFailed(err.Error())
	}
	return n, nil
}

func (c *tableClient) rowAt(ctx context.Context, offset int64) ([]map[string]any, error) {
	u := *c.endpoint
	q := url.Values{}
	q.Set("select", "*")
	q.Set("offset", strconv.FormatInt(offset, 10))
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, queryFailed(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, queryFailed(errorMessage(resp))
	}

	var rows []map[string]any
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, queryFailed(err.Error())
	}
	return rows, nil
}

func (c *tableClient) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	return c.client.Do(req)
}

// ParseContentRange 读取 "0-24/3573" 或 "*/0" 中斜杠后的总数
func ParseContentRange(header string) (int64, error) {
	i := strings.LastIndexByte(header, '/')
	if i < 0 {
		return 0, fmt.Errorf("Content-Range 头缺失或格式错误: %q", header)
	}
	total := header[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("服务端没有返回精确计数: %q", header)
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("无法解析 Content-Range 总数 %q", header)
	}
	return n, nil
}

// errorMessage 优先取 PostgREST 错误体里的 message 字段
func errorMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var pgErr struct {
		Message string `json:"message"`
	}
	if len(bytes.TrimSpace(body)) > 0 && json.Unmarshal(body, &pgErr) == nil && pgErr.Message != "" {
		return pgErr.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return resp.Status
}

func countFailed(msg string) error {
	return &port.StoreError{Status: http.StatusInternalServerError, Message: "Supabase count query failed: " + msg}
}

func queryFailed(msg string) error {
	return &port.StoreError{Status: http.StatusInternalServerError, Message: "Supabase query failed: " + msg}
}

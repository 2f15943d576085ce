// Package snowflakeapi 通过 Snowflake REST SQL API (/api/v2/statements) 取行。
// 这是无状态后端: Open 只构造一个已认证的请求模板，不做任何网络 I/O。
package snowflakeapi

import (
	"EmployeeAegis/internal/adapter/datasource/sqldb"
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var _ port.Backend = (*Backend)(nil)

const (
	statementsPath   = "/api/v2/statements"
	maxErrorBodySize = 64 << 10
	userAgent        = "EmployeeAegis/1.0"
)

// Options 控制后端行为
type Options struct {
	// BaseURL 为空时使用 https://<account>.snowflakecomputing.com
	BaseURL      string
	QueryTimeout time.Duration
	PollInterval time.Duration
	// KeyPair 为 true 时凭据中的 Secret 是私钥文件路径
	KeyPair    bool
	HTTPClient *http.Client
	Now        func() time.Time
}

type Backend struct {
	statement string
	opts      Options
}

// New 创建 SQL API 后端
func New(table string, opts Options) *Backend {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Backend{statement: sqldb.RandomRowQuery(table), opts: opts}
}

func (b *Backend) Type() string {
	if b.opts.KeyPair {
		return "snowflake_sql_api_keypair"
	}
	return "snowflake_sql_api"
}

// Open 构造请求模板。密钥对模式下在这里签发 JWT。
func (b *Backend) Open(_ context.Context, creds domain.Credentials) (port.Connection, error) {
	var auth Auth
	if b.opts.KeyPair {
		var err error
		auth, err = KeyPairAuth(creds.Account, creds.Principal, creds.Secret, creds.Extra[aegconf.ExtraPrivateKeyPassphrase], b.opts.Now())
		if err != nil {
			return nil, err
		}
	} else {
		auth = PATAuth(creds.Secret)
	}

	base := b.opts.BaseURL
	if base == "" {
		base = "https://" + creds.Account + ".snowflakecomputing.com"
	}
	endpoint, err := url.Parse(strings.TrimSuffix(base, "/") + statementsPath)
	if err != nil {
		return nil, fmt.Errorf("构建 Snowflake SQL API 地址失败: %w", err)
	}
	slog.Debug("Snowflake SQL API 请求模板已就绪", "endpoint", endpoint.String(), "token_type", auth.TokenType)

	return &statementTemplate{
		endpoint: endpoint,
		auth:     auth,
		body: statementRequest{
			Statement: b.statement,
			Timeout:   int(b.opts.QueryTimeout / time.Second),
			Warehouse: creds.Warehouse,
			Database:  creds.Database,
			Schema:    creds.Schema,
		},
		client:       b.opts.HTTPClient,
		pollInterval: b.opts.PollInterval,
	}, nil
}

// statementTemplate 是退化的 "连接": 一个预先认证好的请求模板
type statementTemplate struct {
	endpoint     *url.URL
	auth         Auth
	body         statementRequest
	client       *http.Client
	pollInterval time.Duration
}

func (t *statementTemplate) Close() error { return nil }

func (t *statementTemplate) FetchRandomRow(ctx context.Context) (domain.RawRow, error) {
	payload, err := json.Marshal(t.body)
	if err != nil {
		return domain.RawRow{}, fmt.Errorf("序列化请求体失败: %w", err)
	}

	target := *t.endpoint
	q := target.Query()
	q.Set("requestId", uuid.NewString())
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return domain.RawRow{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.do(req)
	if err != nil {
		return domain.RawRow{}, err
	}

	for resp.StatusCode == http.StatusAccepted {
		if resp.StatementStatusURL == "" {
			return domain.RawRow{}, fmt.Errorf("Snowflake SQL API 返回 202 但缺少 statementStatusUrl")
		}
		slog.Debug("语句仍在执行，等待后轮询", "handle", resp.StatementHandle)
		select {
		case <-ctx.Done():
			return domain.RawRow{}, ctx.Err()
		case <-time.After(t.pollInterval):
		}
		resp, err = t.poll(ctx, resp.StatementStatusURL)
		if err != nil {
			return domain.RawRow{}, err
		}
	}

	if len(resp.Data) == 0 {
		return domain.RawRow{}, port.ErrNoData
	}
	slog.Debug("Snowflake SQL API 响应已接收", "rows", len(resp.Data))
	return domain.RawRow{Columns: resp.columns(), Values: resp.Data[0]}, nil
}

func (t *statementTemplate) poll(ctx context.Context, statusURL string) (*decodedResponse, error) {
	ref, err := url.Parse(statusURL)
	if err != nil {
		return nil, fmt.Errorf("解析 statementStatusUrl 失败: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, err
	}
	return t.do(req)
}

type decodedResponse struct {
	StatusCode int
	statementResponse
}

// do 附加认证头并解析响应。非 2xx 状态转换为携带原始状态码的 port.StoreError。
func (t *statementTemplate) do(req *http.Request) (*decodedResponse, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+t.auth.Token)
	req.Header.Set("X-Snowflake-Authorization-Token-Type", t.auth.TokenType)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Snowflake SQL API 请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		slog.Error("Snowflake SQL API 错误", "status", resp.StatusCode, "body", string(body))
		return nil, &port.StoreError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("Snowflake SQL API request failed: %s - %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	out := &decodedResponse{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&out.statementResponse); err != nil {
		return nil, fmt.Errorf("解析 Snowflake SQL API 响应失败: %w", err)
	}
	return out, nil
}

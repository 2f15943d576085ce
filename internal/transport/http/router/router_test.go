// file: internal/transport/http/router/router_test.go
package router_test

import (
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/aegmiddleware"
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"EmployeeAegis/internal/service"
	"EmployeeAegis/internal/transport/http/router"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
//  测试替身
// ============================================================================

type stubResolver struct{ err error }

func (r stubResolver) Resolve(aegconf.Binding) (domain.Credentials, error) {
	return domain.Credentials{}, r.err
}

type stubConn struct {
	row   domain.RawRow
	err   error
	block bool
}

func (c *stubConn) FetchRandomRow(ctx context.Context) (domain.RawRow, error) {
	if c.block {
		<-ctx.Done()
		return domain.RawRow{}, ctx.Err()
	}
	return c.row, c.err
}
func (c *stubConn) Close() error { return nil }

type stubBackend struct {
	conn   *stubConn
	opened int
}

func (b *stubBackend) Open(context.Context, domain.Credentials) (port.Connection, error) {
	b.opened++
	return b.conn, nil
}
func (b *stubBackend) Type() string { return "stub" }

type fixture struct {
	backends map[string]*stubBackend
	handler  http.Handler
}

// newFixture 注册 snowflake/supabase/snowflake_sql_api 三个后端，默认 snowflake
func newFixture(t *testing.T, deps router.Dependencies, resolverErr error, conns map[string]*stubConn) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{backends: map[string]*stubBackend{}}
	var services []*service.EmployeeService
	for _, name := range []string{aegconf.BackendSnowflake, aegconf.BackendSupabase, aegconf.BackendSnowflakeAPI} {
		conn := conns[name]
		if conn == nil {
			conn = &stubConn{row: domain.RawRow{Native: map[string]any{"id": 1, "source": name}}}
		}
		b := &stubBackend{conn: conn}
		f.backends[name] = b
		services = append(services, service.NewEmployeeService(name, b, aegconf.Binding{}, stubResolver{err: resolverErr}, service.Timeouts{
			Connect: time.Second,
			Query:   time.Second,
		}))
	}
	reg, err := service.NewRegistry(aegconf.BackendSnowflake, services...)
	require.NoError(t, err)

	deps.Registry = reg
	if deps.RequestBudget == 0 {
		deps.RequestBudget = 5 * time.Second
	}
	f.handler = router.New(deps)
	return f
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func assertContractHeaders(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

// ============================================================================
//  测试用例
// ============================================================================

func TestOptions_AlwaysOKWithEmptyBody(t *testing.T) {
	missing := &port.MissingCredentialsError{Fields: []string{"SNOWFLAKE_ACCOUNT"}}
	f := newFixture(t, router.Dependencies{}, missing, nil)

	for _, path := range []string{"/api/employee", "/api/employee/supabase", "/.netlify/functions/employee", "/anything"} {
		t.Run(path, func(t *testing.T) {
			rr := f.do(http.MethodOptions, path)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Empty(t, rr.Body.String())
			assertContractHeaders(t, rr)
		})
	}
	for name, b := range f.backends {
		assert.Zero(t, b.opened, "OPTIONS 不应触达后端 %s", name)
	}
}

func TestGetEmployee_DefaultBackend(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, nil)

	rr := f.do(http.MethodGet, "/api/employee")
	require.Equal(t, http.StatusOK, rr.Code)
	assertContractHeaders(t, rr)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": float64(1), "source": "snowflake"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestGetEmployee_ExplicitAndLegacyRoutes(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, nil)

	testCases := map[string]string{
		"/api/employee/supabase":               "supabase",
		"/api/supabase-test":                   "supabase",
		"/.netlify/functions/employee":         "snowflake",
		"/.netlify/functions/employee-sql-api": "snowflake_sql_api",
	}
	for path, want := range testCases {
		t.Run(path, func(t *testing.T) {
			rr := f.do(http.MethodGet, path)
			require.Equal(t, http.StatusOK, rr.Code)
			data := decode(t, rr)["data"].(map[string]any)
			assert.Equal(t, want, data["source"])
		})
	}
}

func TestGetEmployee_MissingCredentials(t *testing.T) {
	missing := &port.MissingCredentialsError{Fields: []string{"SNOWFLAKE_ACCOUNT", "SNOWFLAKE_USERNAME"}}
	f := newFixture(t, router.Dependencies{}, missing, nil)

	rr := f.do(http.MethodGet, "/api/employee")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assertContractHeaders(t, rr)

	body := decode(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required credentials: SNOWFLAKE_ACCOUNT, SNOWFLAKE_USERNAME", body["error"])
	assert.NotContains(t, body, "data")
	assert.Zero(t, f.backends[aegconf.BackendSnowflake].opened)
}

func TestGetEmployee_NoData(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, map[string]*stubConn{
		aegconf.BackendSnowflake: {err: port.ErrNoData},
	})

	rr := f.do(http.MethodGet, "/api/employee")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No employee data found", decode(t, rr)["error"])
}

func TestGetEmployee_UnknownBackend(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, nil)

	rr := f.do(http.MethodGet, "/api/employee/oracle")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "unknown backend: 'oracle'", decode(t, rr)["error"])
}

func TestGetEmployee_StoreStatusPropagated(t *testing.T) {
	msg := "Snowflake SQL API request failed: 422 Unprocessable Entity - bad statement"
	f := newFixture(t, router.Dependencies{}, nil, map[string]*stubConn{
		aegconf.BackendSnowflakeAPI: {err: &port.StoreError{Status: http.StatusUnprocessableEntity, Message: msg}},
	})

	rr := f.do(http.MethodGet, "/api/employee/snowflake_sql_api")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, msg, decode(t, rr)["error"])
}

func TestGetEmployee_DegradedArray(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, map[string]*stubConn{
		aegconf.BackendSnowflakeAPI: {row: domain.RawRow{Values: []any{"1", "Ada"}}},
	})

	rr := f.do(http.MethodGet, "/api/employee/snowflake_sql_api")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, []any{"1", "Ada"}, body["data"])
	assert.Equal(t, service.DegradedWarning, body["warning"])
}

func TestGetEmployee_OtherErrorVerbosity(t *testing.T) {
	conns := map[string]*stubConn{aegconf.BackendSnowflake: {err: errors.New("SQL compilation error")}}

	prod := newFixture(t, router.Dependencies{}, nil, conns)
	rr := prod.do(http.MethodGet, "/api/employee")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "SQL compilation error", decode(t, rr)["error"])

	dev := newFixture(t, router.Dependencies{Development: true}, nil, conns)
	rr = dev.do(http.MethodGet, "/api/employee")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decode(t, rr)["error"], "SQL compilation error\n\nDetails: ")
}

func TestGetEmployee_RequestBudgetExhausted(t *testing.T) {
	f := newFixture(t, router.Dependencies{RequestBudget: 30 * time.Millisecond}, nil, map[string]*stubConn{
		aegconf.BackendSnowflake: {block: true},
	})

	rr := f.do(http.MethodGet, "/api/employee")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "request timed out after 30ms", decode(t, rr)["error"])
}

func TestRateLimited(t *testing.T) {
	f := newFixture(t, router.Dependencies{Limiter: aegmiddleware.NewIPRateLimiter(1, 1)}, nil, nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/employee").Code)
	rr := f.do(http.MethodGet, "/api/employee")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assertContractHeaders(t, rr)
	assert.Equal(t, false, decode(t, rr)["success"])

	assert.Equal(t, http.StatusOK, f.do(http.MethodOptions, "/api/employee").Code)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, nil)

	rr := f.do(http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "snowflake", data["default"])
}

func TestGetEmployee_GzipErrorBody(t *testing.T) {
	f := newFixture(t, router.Dependencies{}, nil, map[string]*stubConn{
		aegconf.BackendSnowflake: {err: port.ErrNoData},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/employee", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var reader io.Reader = rr.Body
	if rr.Header().Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(rr.Body)
		require.NoError(t, err)
		reader = zr
	}
	var body map[string]any
	require.NoError(t, json.NewDecoder(reader).Decode(&body))
	assert.Equal(t, "No employee data found", body["error"])
}

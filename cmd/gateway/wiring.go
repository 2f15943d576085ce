// file: cmd/gateway/wiring.go

package main

import (
	"EmployeeAegis/internal/adapter/datasource/postgres"
	"EmployeeAegis/internal/adapter/datasource/snowflake"
	"EmployeeAegis/internal/adapter/datasource/snowflakeapi"
	"EmployeeAegis/internal/adapter/datasource/sqlite"
	"EmployeeAegis/internal/adapter/datasource/supabase"
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/core/port"
	"EmployeeAegis/internal/service"
	"log/slog"
	"sort"

	"github.com/spf13/viper"
)

// buildRegistry 为每个受支持的后端组装一条流水线。
// 凭据在每次请求时才解析，所以缺少某个后端的凭据不会影响启动。
func buildRegistry(cfg *aegconf.Config, v *viper.Viper) (*service.Registry, error) {
	table := cfg.DataSource.Table
	apiOpts := snowflakeapi.Options{
		BaseURL:      cfg.Snowflake.APIBaseURL,
		QueryTimeout: cfg.Timeouts.Query,
		PollInterval: cfg.Snowflake.PollInterval,
	}
	keyPairOpts := apiOpts
	keyPairOpts.KeyPair = true

	backends := map[string]port.Backend{
		aegconf.BackendSnowflake:        snowflake.New(table, cfg.Timeouts.Connect),
		aegconf.BackendSnowflakeAPI:     snowflakeapi.New(table, apiOpts),
		aegconf.BackendSnowflakeKeyPair: snowflakeapi.New(table, keyPairOpts),
		aegconf.BackendSupabase:         supabase.New(cfg.Supabase.Table, supabase.Options{}),
		aegconf.BackendPostgres:         postgres.New(table),
		aegconf.BackendSQLite:           sqlite.New(table),
	}

	resolver := aegconf.DefaultResolver(v)
	bindings := aegconf.Bindings()
	timeouts := service.Timeouts{Connect: cfg.Timeouts.Connect, Query: cfg.Timeouts.Query}

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make([]*service.EmployeeService, 0, len(names))
	for _, name := range names {
		services = append(services, service.NewEmployeeService(name, backends[name], bindings[name], resolver, timeouts))
		slog.Debug("后端已注册", "backend", name, "type", backends[name].Type())
	}
	return service.NewRegistry(cfg.DataSource.Default, services...)
}

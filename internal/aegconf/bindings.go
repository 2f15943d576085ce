// Package aegconf file: internal/aegconf/bindings.go
package aegconf

import (
	"EmployeeAegis/internal/core/domain"
	"strings"
)

// Extra 凭据中使用的键
const (
	ExtraPrivateKeyPassphrase = "private_key_passphrase"
)

const snowflakeHostSuffix = ".snowflakecomputing.com"

var (
	snowflakeAccount   = Field{Env: "SNOWFLAKE_ACCOUNT", ConfigKey: "snowflake.account"}
	snowflakeWarehouse = Field{Env: "SNOWFLAKE_WAREHOUSE", ConfigKey: "snowflake.warehouse"}
	snowflakeDatabase  = Field{Env: "SNOWFLAKE_DATABASE", ConfigKey: "snowflake.database"}
	snowflakeSchema    = Field{Env: "SNOWFLAKE_SCHEMA", ConfigKey: "snowflake.schema"}
	snowflakeUsername  = Field{Env: "SNOWFLAKE_USERNAME", ConfigKey: "snowflake.username"}
)

// TrimSnowflakeAccount 去掉账户标识符上误带的 .snowflakecomputing.com 域名后缀
func TrimSnowflakeAccount(creds *domain.Credentials) {
	creds.Account = strings.TrimPrefix(creds.Account, "https://")
	creds.Account = strings.TrimSuffix(creds.Account, "/")
	creds.Account = strings.TrimSuffix(creds.Account, snowflakeHostSuffix)
}

// Bindings 返回每个后端的凭据映射
func Bindings() map[string]Binding {
	return map[string]Binding{
		BackendSnowflake: {
			Account:   snowflakeAccount,
			Principal: snowflakeUsername,
			Secret:    Field{Env: "SNOWFLAKE_PASSWORD", ConfigKey: "snowflake.password"},
			Warehouse: snowflakeWarehouse,
			Database:  snowflakeDatabase,
			Schema:    snowflakeSchema,
			Normalize: TrimSnowflakeAccount,
		},
		// PAT 同时作为 principal 和 secret
		BackendSnowflakeAPI: {
			Account:   snowflakeAccount,
			Principal: Field{Env: "SNOWFLAKE_PAT", ConfigKey: "snowflake.pat"},
			Secret:    Field{Env: "SNOWFLAKE_PAT", ConfigKey: "snowflake.pat"},
			Warehouse: snowflakeWarehouse,
			Database:  snowflakeDatabase,
			Schema:    snowflakeSchema,
			Normalize: TrimSnowflakeAccount,
		},
		BackendSnowflakeKeyPair: {
			Account:   snowflakeAccount,
			Principal: snowflakeUsername,
			Secret:    Field{Env: "SNOWFLAKE_PRIVATE_KEY_PATH", ConfigKey: "snowflake.private_key_path"},
			Warehouse: snowflakeWarehouse,
			Database:  snowflakeDatabase,
			Schema:    snowflakeSchema,
			Extra: map[string]Field{
				ExtraPrivateKeyPassphrase: {Env: "SNOWFLAKE_PRIVATE_KEY_PASSPHRASE", ConfigKey: "snowflake.private_key_passphrase"},
			},
			Normalize: TrimSnowflakeAccount,
		},
		BackendSupabase: {
			Account:   Field{Env: "SUPABASE_URL", ConfigKey: "supabase.url"},
			Principal: Field{Env: "SUPABASE_KEY", ConfigKey: "supabase.key"},
			Secret:    Field{Env: "SUPABASE_KEY", ConfigKey: "supabase.key"},
		},
		BackendPostgres: {
			Account:   Field{Env: "POSTGRES_URL", ConfigKey: "postgres.url"},
			Principal: Field{Env: "POSTGRES_USER", ConfigKey: "postgres.user"},
			Secret:    Field{Env: "POSTGRES_PASSWORD", ConfigKey: "postgres.password"},
		},
		// 本地开发后端只需要数据库文件路径
		BackendSQLite: {
			Account: Field{Env: "SQLITE_PATH", ConfigKey: "sqlite.path"},
		},
	}
}

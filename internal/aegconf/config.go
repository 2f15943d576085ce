// Package aegconf 负责集中式配置加载
package aegconf

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// 后端标识符
const (
	BackendSnowflake        = "snowflake"
	BackendSnowflakeAPI     = "snowflake_sql_api"
	BackendSnowflakeKeyPair = "snowflake_sql_api_keypair"
	BackendSupabase         = "supabase"
	BackendPostgres         = "postgres"
	BackendSQLite           = "sqlite"
)

const (
	defaultPort           = 10224
	defaultConnectTimeout = 20 * time.Second
	defaultQueryTimeout   = 10 * time.Second
	defaultRequestBudget  = 26 * time.Second
)

// DefaultConfigPath 是未指定 --config 时尝试读取的文件
const DefaultConfigPath = "configs/config.yaml"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*){0,2}$`)

type ServerConfig struct {
	Port               int     `mapstructure:"port" validate:"gt=0,lt=65536"`
	LogLevel           string  `mapstructure:"log_level"`
	Environment        string  `mapstructure:"environment" validate:"oneof=development production"`
	EnablePprof        bool    `mapstructure:"enable_pprof"`
	PprofAddr          string  `mapstructure:"pprof_addr"`
	RateLimitPerMinute float64 `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

type DataSourceConfig struct {
	Default string `mapstructure:"default" validate:"required,oneof=snowflake snowflake_sql_api snowflake_sql_api_keypair supabase postgres sqlite"`
	Table   string `mapstructure:"table" validate:"required"`
}

// TimeoutConfig 是对外契约的一部分: 连接 ≤20s, 查询 ≤10s, 整体 ≤26s, 均不少于 1s
type TimeoutConfig struct {
	Connect time.Duration `mapstructure:"connect" validate:"gte=1s,lte=20s"`
	Query   time.Duration `mapstructure:"query" validate:"gte=1s,lte=10s"`
	Request time.Duration `mapstructure:"request" validate:"gte=1s,lte=26s"`
}

type SnowflakeConfig struct {
	// APIBaseURL 覆盖 https://<account>.snowflakecomputing.com，主要用于测试
	APIBaseURL   string        `mapstructure:"api_base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

type SupabaseConfig struct {
	// PostgREST 中的表名允许包含空格，例如 "City of Chicago Employees"
	Table string `mapstructure:"table" validate:"required"`
}

// Config 是整个进程的静态配置，启动后只读
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	DataSource DataSourceConfig `mapstructure:"datasource"`
	Timeouts   TimeoutConfig    `mapstructure:"timeouts"`
	Snowflake  SnowflakeConfig  `mapstructure:"snowflake"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
}

// IsDevelopment 决定错误信息是否附带详细信息
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// SetDefaults 在给定的 viper 实例上注册所有默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultPort)
	v.SetDefault("server.log_level", "INFO")
	v.SetDefault("server.environment", "production")
	v.SetDefault("server.enable_pprof", false)
	v.SetDefault("server.pprof_addr", "localhost:6060")
	v.SetDefault("server.rate_limit_per_minute", 60)
	v.SetDefault("server.rate_limit_burst", 20)

	v.SetDefault("datasource.default", BackendSnowflake)
	v.SetDefault("datasource.table", "employees")

	v.SetDefault("timeouts.connect", defaultConnectTimeout)
	v.SetDefault("timeouts.query", defaultQueryTimeout)
	v.SetDefault("timeouts.request", defaultRequestBudget)

	v.SetDefault("snowflake.poll_interval", 500*time.Millisecond)
	v.SetDefault("supabase.table", "employees")
}

// Load 读取配置文件 (可缺省) 与 AEGIS_ 前缀的环境变量，返回校验后的配置。
// path 为空时尝试 DefaultConfigPath，文件不存在时只使用默认值。
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("AEGIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件 '%s' 失败: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("配置文件 '%s' 不可用: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置到结构体失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置的取值范围
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fmt.Errorf("配置校验失败: %s", ve.Error())
		}
		return fmt.Errorf("配置校验失败: %w", err)
	}
	if !tableNamePattern.MatchString(c.DataSource.Table) {
		return fmt.Errorf("配置校验失败: 表名 '%s' 不是合法的 SQL 标识符", c.DataSource.Table)
	}
	return nil
}

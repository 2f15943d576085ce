// Package aegconf file: internal/aegconf/credentials.go
package aegconf

import (
	"EmployeeAegis/internal/core/domain"
	"EmployeeAegis/internal/core/port"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Field 描述一个凭据项：对外契约中的环境变量名，以及结构化配置中的键
type Field struct {
	Env       string // e.g. SNOWFLAKE_ACCOUNT
	ConfigKey string // e.g. snowflake.account
}

func (f Field) bound() bool { return f.Env != "" }

// Source 是一个按名称查找配置值的来源
type Source interface {
	Lookup(f Field) (string, bool)
}

// ViperSource 从结构化的运行时配置 (配置文件) 中读取
type ViperSource struct {
	V *viper.Viper
}

func (s ViperSource) Lookup(f Field) (string, bool) {
	if s.V == nil || f.ConfigKey == "" || !s.V.IsSet(f.ConfigKey) {
		return "", false
	}
	return s.V.GetString(f.ConfigKey), true
}

// EnvSource 从进程环境变量中读取
type EnvSource struct{}

func (EnvSource) Lookup(f Field) (string, bool) {
	return os.LookupEnv(f.Env)
}

// Binding 描述某个后端如何把配置映射到 domain.Credentials
type Binding struct {
	Account   Field
	Principal Field
	Secret    Field
	Warehouse Field
	Database  Field
	Schema    Field

	// Extra 是后端专用的可选项，键为 domain.Credentials.Extra 中的名称
	Extra map[string]Field

	// Normalize 在校验通过后对凭据做最后的清洗
	Normalize func(*domain.Credentials)
}

// Resolver 按优先级依次查询多个 Source
type Resolver struct {
	sources  []Source
	validate *validator.Validate
}

// NewResolver 创建解析器，sources 按优先级从高到低排列
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources, validate: validator.New()}
}

// DefaultResolver 先查配置文件，再回退到进程环境变量
func DefaultResolver(v *viper.Viper) *Resolver {
	return NewResolver(ViperSource{V: v}, EnvSource{})
}

// lookup 返回第一个非空值。空字符串视为缺失。
func (r *Resolver) lookup(f Field) string {
	if !f.bound() {
		return ""
	}
	for _, s := range r.sources {
		if val, ok := s.Lookup(f); ok {
			if val = strings.TrimSpace(val); val != "" {
				return val
			}
		}
	}
	return ""
}

// Resolve 读取并校验凭据。缺失的必填项会全部列出 (按 Binding 中的顺序，去重)。
func (r *Resolver) Resolve(b Binding) (domain.Credentials, error) {
	creds := domain.Credentials{
		Account:   r.lookup(b.Account),
		Principal: r.lookup(b.Principal),
		Secret:    r.lookup(b.Secret),
		Warehouse: r.lookup(b.Warehouse),
		Database:  r.lookup(b.Database),
		Schema:    r.lookup(b.Schema),
	}
	if len(b.Extra) > 0 {
		creds.Extra = make(map[string]string, len(b.Extra))
		for name, f := range b.Extra {
			if val := r.lookup(f); val != "" {
				creds.Extra[name] = val
			}
		}
	}

	required := []struct {
		field Field
		value string
	}{
		{b.Account, creds.Account},
		{b.Principal, creds.Principal},
		{b.Secret, creds.Secret},
	}

	data := make(map[string]interface{}, len(required))
	rules := make(map[string]interface{}, len(required))
	order := make([]string, 0, len(required))
	presence := make([]any, 0, len(required)*2)
	for _, req := range required {
		if !req.field.bound() {
			continue
		}
		if _, seen := data[req.field.Env]; seen {
			continue
		}
		data[req.field.Env] = req.value
		rules[req.field.Env] = "required"
		order = append(order, req.field.Env)
		presence = append(presence, req.field.Env, maskPresence(req.value))
	}
	slog.Debug("凭据检查", presence...)

	failed := r.validate.ValidateMap(data, rules)
	if len(failed) > 0 {
		missing := make([]string, 0, len(failed))
		for _, name := range order {
			if _, bad := failed[name]; bad {
				missing = append(missing, name)
			}
		}
		return domain.Credentials{}, &port.MissingCredentialsError{Fields: missing}
	}

	if b.Normalize != nil {
		b.Normalize(&creds)
	}
	return creds, nil
}

func maskPresence(val string) string {
	if val == "" {
		return "missing"
	}
	return "***set***"
}

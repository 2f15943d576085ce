package snowflake

import (
	"EmployeeAegis/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_MapsCredentials(t *testing.T) {
	cfg, err := Config(domain.Credentials{
		Account:   "xy12345.us-east-1",
		Principal: "ada",
		Secret:    "s3cret",
		Warehouse: "COMPUTE_WH",
		Schema:    "PUBLIC",
	}, 20*time.Second)
	require.NoError(t, err)

	assert.Equal(t, "xy12345.us-east-1", cfg.Account)
	assert.Equal(t, "ada", cfg.User)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "COMPUTE_WH", cfg.Warehouse)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, "PUBLIC", cfg.Schema)
	assert.Equal(t, 20*time.Second, cfg.LoginTimeout)
}

func TestConfig_RejectsIncompleteCredentials(t *testing.T) {
	_, err := Config(domain.Credentials{Account: "xy12345", Principal: "ada"}, time.Second)
	assert.Error(t, err)
}

func TestNew_Type(t *testing.T) {
	assert.Equal(t, "snowflake_sdk", New("employees", time.Second).Type())
}

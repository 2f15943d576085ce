// Package service file: internal/service/registry_test.go
package service

import (
	"EmployeeAegis/internal/aegconf"
	"EmployeeAegis/internal/core/port"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func svcNamed(name string) *EmployeeService {
	return NewEmployeeService(name, &fakeBackend{}, aegconf.Binding{}, stubResolver{}, Timeouts{})
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry("snowflake", svcNamed("supabase"), svcNamed("snowflake"))
	require.NoError(t, err)

	assert.Equal(t, "snowflake", reg.Default().Name())
	assert.Equal(t, []string{"snowflake", "supabase"}, reg.Names())

	s, err := reg.Lookup("supabase")
	require.NoError(t, err)
	assert.Equal(t, "supabase", s.Name())

	_, err = reg.Lookup("oracle")
	assert.ErrorIs(t, err, port.ErrUnknownBackend)
	assert.Equal(t, "unknown backend: 'oracle'", err.Error())
}

func TestRegistry_Invalid(t *testing.T) {
	_, err := NewRegistry("snowflake", svcNamed("supabase"))
	assert.Error(t, err, "默认后端必须已注册")

	_, err = NewRegistry("a", svcNamed("a"), svcNamed("a"))
	assert.Error(t, err, "重复注册应失败")
}

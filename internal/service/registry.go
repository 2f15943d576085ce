// Package service file: internal/service/registry.go
package service

import (
	"EmployeeAegis/internal/core/port"
	"fmt"
	"sort"
)

// Registry 保存所有已配置的后端流水线，启动后只读
type Registry struct {
	services    map[string]*EmployeeService
	defaultName string
}

// NewRegistry 创建注册表。defaultName 必须是已注册的后端之一。
func NewRegistry(defaultName string, services ...*EmployeeService) (*Registry, error) {
	r := &Registry{
		services:    make(map[string]*EmployeeService, len(services)),
		defaultName: defaultName,
	}
	for _, s := range services {
		if _, dup := r.services[s.Name()]; dup {
			return nil, fmt.Errorf("后端 '%s' 被重复注册", s.Name())
		}
		r.services[s.Name()] = s
	}
	if _, ok := r.services[defaultName]; !ok {
		return nil, fmt.Errorf("默认后端 '%s' 未注册", defaultName)
	}
	return r, nil
}

// Lookup 按名称查找后端
func (r *Registry) Lookup(name string) (*EmployeeService, error) {
	s, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", port.ErrUnknownBackend, name)
	}
	return s, nil
}

// Default 返回默认后端
func (r *Registry) Default() *EmployeeService {
	return r.services[r.defaultName]
}

// Names 返回按字母序排列的后端名称
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

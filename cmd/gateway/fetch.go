// file: cmd/gateway/fetch.go

package main

import (
	"EmployeeAegis/internal/aegobserve"
	"EmployeeAegis/internal/core/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type fetchOptions struct {
	Backend string
	Output  string
}

var validOutputs = []string{"json", "yaml"}

// newFetchCommand 在命令行中执行一次取行流程，并打印与 HTTP 接口相同的响应体
func newFetchCommand(root *rootOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "取一行随机员工数据并打印",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, o := range validOutputs {
				if o == opts.Output {
					return nil
				}
			}
			return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, validOutputs)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, root, opts)
		},
	}
	opts.bindFlags(cmd.Flags())
	return cmd
}

func (o *fetchOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Backend, "backend", "b", "", "后端名称 (默认使用配置中的 datasource.default)")
	fs.StringVarP(&o.Output, "output", "o", "json", "输出格式 (json|yaml)")
}

func runFetch(cmd *cobra.Command, root *rootOptions, opts *fetchOptions) error {
	cfg, v, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	// 标准输出只留给结果
	aegobserve.InitLoggerTo(cmd.ErrOrStderr(), cfg.Server.LogLevel)

	registry, err := buildRegistry(cfg, v)
	if err != nil {
		return err
	}
	svc := registry.Default()
	if opts.Backend != "" {
		if svc, err = registry.Lookup(opts.Backend); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeouts.Request)
	defer cancel()

	res, fetchErr := svc.FetchRandomEmployee(ctx)
	var env domain.ResponseEnvelope
	if fetchErr != nil {
		env = domain.ErrorEnvelope(fetchErr.Error())
	} else {
		env = domain.SuccessEnvelope(res)
	}
	if err := writeEnvelope(cmd.OutOrStdout(), opts.Output, env); err != nil {
		return err
	}
	return fetchErr
}

func writeEnvelope(w io.Writer, format string, env domain.ResponseEnvelope) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("编码 YAML 失败: %w", err)
		}
		return enc.Close()
	default:
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return fmt.Errorf("编码 JSON 失败: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	}
}

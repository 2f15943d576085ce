// file: cmd/gateway/root.go

package main

import (
	"EmployeeAegis/internal/aegconf"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions 保存所有子命令共享的全局参数
type rootOptions struct {
	ConfigPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "gateway",
		Short:         "EmployeeAegis - 随机员工数据网关",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "配置文件路径 (默认 "+aegconf.DefaultConfigPath+")")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newFetchCommand(opts))
	return cmd
}

// loadConfig 使用独立的 viper 实例，凭据解析也从同一个实例读取
func (o *rootOptions) loadConfig() (*aegconf.Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := aegconf.Load(v, o.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

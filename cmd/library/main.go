// library 图书馆服务命令行
//
//	library serve                 启动HTTP服务
//	library stats                 输出馆藏统计
//	library import --file x.csv   批量上架
//	library token --staff alice   签发馆员令牌
//	library events                消费借还事件并写审计日志
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "library",
		Short:        "Library inventory and circulation service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config/config.yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newStatsCmd(&configPath),
		newImportCmd(&configPath),
		newTokenCmd(&configPath),
		newEventsCmd(&configPath),
	)
	return root
}

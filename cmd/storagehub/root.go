package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	configmodule "github.com/w3f-grants-archive/storage-hub/internal/config"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager"
	eventmodule "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/event"
	logmodule "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	metricsmodule "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/metrics"
	storagemodule "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage"
	configiface "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // JSON配置文件
	Verbose    bool   // 输出fx装配日志
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "storagehub",
	Short: "按文件内容寻址的存储引擎命令行工具",
	Long: `storagehub - 文件存储引擎命令行工具

文件被切分为 1024 字节的分块写入一棵二进制默克尔前缀树，树根即文件指纹。
支持:
- add: 切分并登记本地文件
- info / chunk: 查询元数据与分块
- proof / verify: 生成并回放紧凑证明
- rm / rm-bucket: 按文件或按存储桶删除`,
	SilenceUsage: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "JSON配置文件路径 (默认使用内置配置)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "输出依赖装配日志")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(rmBucketCmd)
}

// engine 一次命令执行期间可用的服务
type engine struct {
	Storage fm.FileStorage
	Logger  log.Logger
}

// withEngine 装配基础设施与文件存储引擎，执行fn后按序关闭
//
// 执行流程：
//  1. 加载配置文件
//  2. 以 config/log/event/metrics/storage/filemanager 模块构建fx应用
//  3. 启动应用并执行fn
//  4. 停止应用，关闭存储
func withEngine(fn func(e *engine) error) error {
	// 1. 配置
	appConfig, err := configmodule.LoadAppConfig(globalFlags.ConfigPath)
	if err != nil {
		return err
	}

	// 2. 装配
	var e engine
	options := []fx.Option{
		fx.Provide(func() configiface.AppOptions {
			return configmodule.StaticOptions{AppConfig: appConfig}
		}),
		configmodule.Module(),
		logmodule.Module(),
		eventmodule.Module(),
		metricsmodule.Module(),
		storagemodule.Module(),
		filemanager.Module(),
		fx.Populate(&e.Storage, &e.Logger),
	}
	if !globalFlags.Verbose {
		options = append(options, fx.NopLogger)
	}
	app := fx.New(options...)
	if err := app.Err(); err != nil {
		return fmt.Errorf("装配文件存储引擎失败: %w", err)
	}

	// 3. 执行
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("启动文件存储引擎失败: %w", err)
	}
	runErr := fn(&e)

	// 4. 关闭
	if err := app.Stop(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("关闭文件存储引擎失败: %w", err)
	}
	_ = e.Logger.Sync()
	return runErr
}

// printJSON 以缩进JSON输出到标准输出
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

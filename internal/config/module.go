// Package config 提供应用配置管理功能
package config

import (
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(ProvideConfigServices),
	)
}

// ProvideConfigServices 提供配置服务
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var appConfig *types.AppConfig
	if params.AppOptions != nil {
		appConfig = params.AppOptions.GetAppConfig()
	}

	return ConfigOutput{
		Provider: NewProvider(appConfig),
	}, nil
}

// StaticOptions 以固定应用配置实现AppOptions
type StaticOptions struct {
	AppConfig *types.AppConfig
}

// GetAppConfig 获取应用配置
func (o StaticOptions) GetAppConfig() *types.AppConfig {
	return o.AppConfig
}

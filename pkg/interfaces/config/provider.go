// Package config provides configuration provider interfaces.
package config

import (
	eventconfig "github.com/w3f-grants-archive/storage-hub/internal/config/event"
	fmconfig "github.com/w3f-grants-archive/storage-hub/internal/config/filemanager"
	logconfig "github.com/w3f-grants-archive/storage-hub/internal/config/log"
	badgerconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/badger"
	memoryconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/memory"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// AppOptions 应用配置选项接口
type AppOptions interface {
	// GetAppConfig 获取应用配置
	GetAppConfig() *types.AppConfig
}

// Provider 配置提供者接口
type Provider interface {
	// GetAppConfig 获取原始应用配置
	GetAppConfig() *types.AppConfig

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetNodeCache 获取数据树节点缓存配置
	GetNodeCache() *memoryconfig.MemoryOptions

	// GetFileManager 获取文件存储引擎配置
	GetFileManager() *fmconfig.FileManagerOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions
}

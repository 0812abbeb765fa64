package filemanager

import (
	configtypes "github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 存储后端名称
const (
	BackendMemory = "memory" // 进程内易失存储
	BackendBadger = "badger" // BadgerDB持久化存储
)

// FileManagerOptions 文件存储引擎配置选项
type FileManagerOptions struct {
	Backend string `json:"backend"` // 存储后端：memory | badger
}

// Config 文件存储引擎配置实现
type Config struct {
	options *FileManagerOptions
}

// New 创建文件存储引擎配置实现
func New(userConfig interface{}) *Config {
	options := &FileManagerOptions{
		Backend: defaultBackend,
	}
	if fmConfig, ok := userConfig.(*configtypes.UserFileManagerConfig); ok && fmConfig != nil {
		if fmConfig.Backend != nil && *fmConfig.Backend != "" {
			options.Backend = *fmConfig.Backend
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整的配置选项
func (c *Config) GetOptions() *FileManagerOptions {
	return c.options
}

// GetBackend 获取存储后端名称
func (c *Config) GetBackend() string {
	return c.options.Backend
}

// IsPersistent 是否使用持久化后端
func (c *Config) IsPersistent() bool {
	return c.options.Backend == BackendBadger
}

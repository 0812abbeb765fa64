package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/w3f-grants-archive/storage-hub/internal/config/event"
	"github.com/w3f-grants-archive/storage-hub/internal/config/filemanager"
	"github.com/w3f-grants-archive/storage-hub/internal/config/log"
	"github.com/w3f-grants-archive/storage-hub/internal/config/storage/badger"
	"github.com/w3f-grants-archive/storage-hub/internal/config/storage/memory"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/config"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 确保Provider实现了配置提供者接口
var _ config.Provider = (*Provider)(nil)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) *Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetBadger 获取BadgerDB存储配置
//
// 未配置 storage.data_root 但配置了 data_dir 时，数据落在 {data_dir}/badger。
func (p *Provider) GetBadger() *badger.BadgerOptions {
	storageConfig := p.appConfig.Storage
	if p.appConfig.DataDir != nil && (storageConfig == nil || storageConfig.DataRoot == nil) {
		merged := types.UserStorageConfig{}
		if storageConfig != nil {
			merged = *storageConfig
		}
		merged.DataRoot = p.appConfig.DataDir
		storageConfig = &merged
	}
	return badger.New(storageConfig).GetOptions()
}

// GetNodeCache 获取数据树节点缓存配置
func (p *Provider) GetNodeCache() *memory.MemoryOptions {
	return memory.New(p.appConfig.NodeCache).GetOptions()
}

// GetFileManager 获取文件存储引擎配置
func (p *Provider) GetFileManager() *filemanager.FileManagerOptions {
	return filemanager.New(p.appConfig.FileManager).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	return event.New(p.appConfig.Event).GetOptions()
}

// LoadAppConfig 从JSON配置文件加载应用配置
//
// 参数：
//   - path: 配置文件路径，为空时返回空配置（全部使用默认值）
//
// 返回：
//   - *types.AppConfig: 解析后的应用配置
//   - error: 读取或解析失败
func LoadAppConfig(path string) (*types.AppConfig, error) {
	if path == "" {
		return &types.AppConfig{}, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &appConfig, nil
}

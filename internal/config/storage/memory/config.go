package memory

import (
	"time"

	configtypes "github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// MemoryOptions 数据树节点缓存配置选项
type MemoryOptions struct {
	// === 基础配置 ===
	Enabled     bool          `json:"enabled"`       // 是否启用节点缓存
	MaxMemoryMB int           `json:"max_memory_mb"` // 缓存内存硬上限（MB）
	MaxEntries  int           `json:"max_entries"`   // 窗口内预估条目数
	LifeWindow  time.Duration `json:"life_window"`   // 条目生命周期

	// === 清理配置 ===
	CleanupInterval time.Duration `json:"cleanup_interval"` // 清理间隔
}

// Config 节点缓存配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建节点缓存配置实现
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultMemoryOptions()
	if cacheConfig, ok := userConfig.(*configtypes.UserNodeCacheConfig); ok && cacheConfig != nil {
		if cacheConfig.Enabled != nil {
			defaultOptions.Enabled = *cacheConfig.Enabled
		}
		if cacheConfig.MaxMemoryMB != nil && *cacheConfig.MaxMemoryMB > 0 {
			defaultOptions.MaxMemoryMB = *cacheConfig.MaxMemoryMB
		}
	}
	return &Config{
		options: defaultOptions,
	}
}

// createDefaultMemoryOptions 创建默认节点缓存配置
func createDefaultMemoryOptions() *MemoryOptions {
	return &MemoryOptions{
		Enabled:         defaultEnabled,
		MaxMemoryMB:     defaultMaxMemoryMB,
		MaxEntries:      defaultMaxEntries,
		LifeWindow:      defaultLifeWindow,
		CleanupInterval: defaultCleanupInterval,
	}
}

// GetOptions 获取完整的节点缓存配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// IsEnabled 是否启用节点缓存
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetMaxMemoryMB 获取缓存内存硬上限
func (c *Config) GetMaxMemoryMB() int {
	return c.options.MaxMemoryMB
}

// GetLifeWindow 获取条目生命周期
func (c *Config) GetLifeWindow() time.Duration {
	return c.options.LifeWindow
}

// GetCleanupInterval 获取清理间隔
func (c *Config) GetCleanupInterval() time.Duration {
	return c.options.CleanupInterval
}

// GetMaxEntriesInWindow 获取窗口内最大条目数
// BigCache 按此值预分配分片，上限 10000 避免启动时占用过多内存
func (c *Config) GetMaxEntriesInWindow() int {
	if c.options.MaxEntries > 10000 {
		return 10000
	}
	return c.options.MaxEntries
}

// GetMaxEntrySize 获取单个条目预估大小
// 叶子节点携带一个数据块（1KB）加 rlp 开销，分支节点约 70 字节
func (c *Config) GetMaxEntrySize() int {
	return 2 * 1024
}

package badger

import (
	"path/filepath"

	configtypes "github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 内存模式，不落盘
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入（数据安全性）

	// === 基础性能配置 ===
	MemTableSize     int64 `json:"mem_table_size"`      // 内存表大小
	ValueLogFileSize int64 `json:"value_log_file_size"` // 单个value log文件大小
	BlockCacheSize   int64 `json:"block_cache_size"`    // 块缓存大小
	IndexCacheSize   int64 `json:"index_cache_size"`    // 索引缓存大小

	// === 存储编码配置 ===
	CompressValues bool `json:"compress_values"` // 是否snappy压缩存储值

	// === 批量写入配置 ===
	MaxBatchBytes uint64 `json:"max_batch_bytes"` // 单次原子批量估算上限
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置实现
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultBadgerOptions()

	// 如果有用户配置，应用用户配置覆盖默认值
	if userConfig != nil {
		applyUserConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	return &Config{
		options: options,
	}
}

// NewInMemory 内存模式配置，用于测试和临时实例
func NewInMemory() *Config {
	options := createDefaultBadgerOptions()
	options.Path = ""
	options.InMemory = true
	options.SyncWrites = false
	return NewFromOptions(options)
}

// createDefaultBadgerOptions 创建默认BadgerDB配置
func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:             defaultPath,
		InMemory:         defaultInMemory,
		SyncWrites:       defaultSyncWrites,
		MemTableSize:     defaultMemTableSize,
		ValueLogFileSize: defaultValueLogFileSize,
		BlockCacheSize:   defaultBlockCacheSize,
		IndexCacheSize:   defaultIndexCacheSize,
		CompressValues:   defaultCompressValues,
		MaxBatchBytes:    defaultMaxBatchBytes,
	}
}

// applyUserConfig 应用用户配置覆盖默认值
//
// 路径构建规则：
// - 配置了 storage.data_root 时使用 {data_root}/badger/
// - 未配置时使用默认值 ./data/badger/
func applyUserConfig(options *BadgerOptions, userConfig interface{}) {
	storageConfig, ok := userConfig.(*configtypes.UserStorageConfig)
	if !ok || storageConfig == nil {
		return
	}
	if storageConfig.DataRoot != nil {
		options.Path = filepath.Join(*storageConfig.DataRoot, "badger")
	}
	if storageConfig.InMemory != nil {
		options.InMemory = *storageConfig.InMemory
	}
	if storageConfig.SyncWrites != nil {
		options.SyncWrites = *storageConfig.SyncWrites
	}
	if storageConfig.CompressValues != nil {
		options.CompressValues = *storageConfig.CompressValues
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

// === 基础配置访问方法 ===

// GetPath 获取数据库路径
func (c *Config) GetPath() string {
	return c.options.Path
}

// IsInMemory 是否内存模式
func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

// IsSyncWritesEnabled 是否启用同步写入
func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

// GetMemTableSize 获取内存表大小
func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

// GetValueLogFileSize 获取value log文件大小
func (c *Config) GetValueLogFileSize() int64 {
	return c.options.ValueLogFileSize
}

// GetBlockCacheSize 获取块缓存大小
func (c *Config) GetBlockCacheSize() int64 {
	return c.options.BlockCacheSize
}

// GetIndexCacheSize 获取索引缓存大小
func (c *Config) GetIndexCacheSize() int64 {
	return c.options.IndexCacheSize
}

// IsValueCompressionEnabled 是否压缩存储值
func (c *Config) IsValueCompressionEnabled() bool {
	return c.options.CompressValues
}

// GetMaxBatchBytes 获取单次原子批量的估算上限
func (c *Config) GetMaxBatchBytes() uint64 {
	return c.options.MaxBatchBytes
}

package types

// AppConfig 应用配置
// 对应JSON配置文件的顶层结构，所有字段可选，缺省时由各配置区域的默认值补全
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	Log         *UserLogConfig         `json:"log,omitempty"`
	Storage     *UserStorageConfig     `json:"storage,omitempty"`
	NodeCache   *UserNodeCacheConfig   `json:"node_cache,omitempty"`
	FileManager *UserFileManagerConfig `json:"file_manager,omitempty"`
	Event       *UserEventConfig       `json:"event,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot       *string `json:"data_root,omitempty"`       // 数据根目录
	InMemory       *bool   `json:"in_memory,omitempty"`       // 使用内存模式（不落盘）
	SyncWrites     *bool   `json:"sync_writes,omitempty"`     // 同步写入
	CompressValues *bool   `json:"compress_values,omitempty"` // snappy压缩存储值
}

// UserNodeCacheConfig 用户数据树节点缓存配置
type UserNodeCacheConfig struct {
	Enabled     *bool `json:"enabled,omitempty"`
	MaxMemoryMB *int  `json:"max_memory_mb,omitempty"`
}

// UserFileManagerConfig 用户文件管理配置
type UserFileManagerConfig struct {
	Backend *string `json:"backend,omitempty"` // memory | badger
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

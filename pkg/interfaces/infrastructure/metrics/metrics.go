// Package metrics 提供模块内存上报接口定义
package metrics

// ModuleMemoryStats 模块自行上报的逻辑内存状态
// 不追求绝对精确，关键是能反映趋势和相对大小
type ModuleMemoryStats struct {
	Module      string `json:"module"`       // 模块名称
	Layer       string `json:"layer"`        // 架构层级
	Objects     int64  `json:"objects"`      // 主要对象数
	ApproxBytes int64  `json:"approx_bytes"` // 估算字节数
	CacheItems  int64  `json:"cache_items"`  // 缓存条目
	QueueLength int64  `json:"queue_length"` // 待处理长度
}

// MemoryReporter 模块内存上报接口
type MemoryReporter interface {
	// ModuleName 返回模块名称
	ModuleName() string

	// CollectMemoryStats 收集当前模块的内存统计信息
	CollectMemoryStats() ModuleMemoryStats
}

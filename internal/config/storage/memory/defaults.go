package memory

import "time"

// 节点缓存默认配置值
const (
	// === 基础配置 ===

	// defaultEnabled 默认启用节点缓存
	defaultEnabled = true

	// defaultMaxMemoryMB 默认缓存内存硬上限为64MB
	defaultMaxMemoryMB = 64

	// defaultMaxEntries 默认窗口内预估条目数
	defaultMaxEntries = 10000

	// defaultLifeWindow 默认条目生命周期为10分钟
	// 节点按内容寻址不会变旧，过期只用于回收冷数据
	defaultLifeWindow = 10 * time.Minute

	// === 清理配置 ===

	// defaultCleanupInterval 默认清理间隔为5分钟
	defaultCleanupInterval = 5 * time.Minute
)

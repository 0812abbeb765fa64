package event

// 事件系统默认配置值
const (
	// defaultEnabled 默认启用事件系统
	// 文件完成与删除事件是指标和外部订阅方的唯一来源
	defaultEnabled = true
)

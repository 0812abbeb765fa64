package persistent

import "errors"

var (
	// ErrNilKeyValueDB 未注入持久化存储
	ErrNilKeyValueDB = errors.New("持久化存储不能为空")

	// ErrCorruptNodeRecord 节点记录长度不足，无法解析引用计数
	ErrCorruptNodeRecord = errors.New("节点记录损坏")
)

package storage

// NodeCache 进程内字节缓存
// 用于缓存按内容寻址、不可变的数据树节点，未命中不视为错误
type NodeCache interface {
	// Get 读取缓存，未命中时返回 (nil, false)
	Get(key []byte) ([]byte, bool)

	// Set 写入缓存，写入失败只影响命中率
	Set(key, value []byte)

	// Delete 移除缓存项
	Delete(key []byte)

	// Len 当前缓存条目数
	Len() int

	// Close 释放缓存资源
	Close() error
}

package badger

// BadgerDB存储默认配置值
const (
	// === 基础配置 ===

	// defaultPath 默认数据库路径
	// 原因：统一的数据目录便于管理和备份
	defaultPath = "./data/badger"

	// defaultInMemory 默认落盘
	// 原因：文件分块数据需要在进程重启后保留
	defaultInMemory = false

	// defaultSyncWrites 默认启用同步写入
	// 原因：每次分块写入都伴随数据树提交，写入返回即应持久
	defaultSyncWrites = true

	// === 性能配置 ===

	// defaultMemTableSize 默认内存表大小为64MB
	// 原因：平衡内存使用和写入吞吐
	defaultMemTableSize = 64 << 20

	// defaultValueLogFileSize 默认value log文件大小为512MB
	// 原因：降低单个文件的mmap虚拟地址占用
	defaultValueLogFileSize = 512 << 20

	// defaultBlockCacheSize 默认块缓存64MB
	// 原因：热点数据树节点由节点缓存承担，块缓存保持适中
	defaultBlockCacheSize = 64 << 20

	// defaultIndexCacheSize 默认索引缓存64MB
	defaultIndexCacheSize = 64 << 20

	// === 存储编码配置 ===

	// defaultCompressValues 默认不压缩
	// 原因：分块内容通常已是压缩或随机数据，压缩收益有限
	defaultCompressValues = false

	// === 批量写入配置 ===

	// defaultMaxBatchBytes 默认单次批量上限10MB
	// 原因：与BadgerDB默认事务大小限制一致，超出时整批拒绝以保持原子性
	defaultMaxBatchBytes = 10 << 20
)

// Package storage 提供存储基础设施接口定义
//
// 🗄️ **列式键值存储 (Columnar Key-Value Store)**
//
// 文件存储引擎的持久化后端只依赖这里定义的薄接口：
// - 按列读写：Get/Put/Delete
// - 前缀遍历：IterWithPrefix
// - 原子批量：Write 一次性应用一组 Put/Delete 操作，要么全部生效，要么全部不生效
//
// 🎯 **设计特点**
// - 列（Column）用于在同一物理库中隔离逻辑表，键空间互不重叠
// - Get 对不存在的键返回 (nil, nil)，以区分"不存在"与I/O错误
package storage

import "errors"

// ErrBatchTooLarge 批量超过实现的单事务上限
// 与I/O故障不同，同一批量重试必然再次失败
var ErrBatchTooLarge = errors.New("批量写入超过事务大小上限")

// Column 逻辑列编号
type Column uint8

// KeyValueDB 列式键值存储接口
type KeyValueDB interface {
	// Get 读取指定列中的键值
	// 键不存在时返回 (nil, nil)
	Get(col Column, key []byte) ([]byte, error)

	// Put 在指定列中写入键值
	Put(col Column, key, value []byte) error

	// Delete 删除指定列中的键
	Delete(col Column, key []byte) error

	// IterWithPrefix 按键序遍历指定列中以prefix开头的所有键值
	// 回调收到的key不含列前缀；回调返回错误时遍历停止并返回该错误
	IterWithPrefix(col Column, prefix []byte, fn func(key, value []byte) error) error

	// Write 原子应用一组写操作
	Write(tx *DBTransaction) error

	// Close 关闭存储
	Close() error
}

// BatchLimiter 单个原子批量有大小上限的存储实现此接口
// 调用方据此把大批量拆成多个不超过上限的批量
type BatchLimiter interface {
	// MaxBatchBytes 单个批量的估算大小上限（字节）
	MaxBatchBytes() uint64
}

// OpKind 写操作类型
type OpKind uint8

const (
	// OpPut 写入
	OpPut OpKind = iota
	// OpDelete 删除
	OpDelete
)

// DBOp 批量中的单个写操作
type DBOp struct {
	Kind   OpKind
	Column Column
	Key    []byte
	Value  []byte
}

// DBTransaction 待原子提交的写操作列表
// 同一键的多次操作按追加顺序生效，最后一次为准
type DBTransaction struct {
	Ops []DBOp
}

// NewDBTransaction 创建空的写批量
func NewDBTransaction() *DBTransaction {
	return &DBTransaction{}
}

// Put 追加写入操作
func (t *DBTransaction) Put(col Column, key, value []byte) {
	t.Ops = append(t.Ops, DBOp{Kind: OpPut, Column: col, Key: key, Value: value})
}

// Delete 追加删除操作
func (t *DBTransaction) Delete(col Column, key []byte) {
	t.Ops = append(t.Ops, DBOp{Kind: OpDelete, Column: col, Key: key})
}

// Len 操作数量
func (t *DBTransaction) Len() int {
	return len(t.Ops)
}

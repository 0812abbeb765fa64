package trie

import "github.com/w3f-grants-archive/storage-hub/pkg/types"

// NodeReader 按哈希读取节点编码
type NodeReader interface {
	// Get 节点不存在时返回 (nil, nil)
	Get(hash types.Hash) ([]byte, error)
}

// NodeDB 可写节点存储
type NodeDB interface {
	NodeReader

	// Emplace 以给定哈希写入节点，已存在时引用计数加一
	Emplace(hash types.Hash, value []byte)

	// Remove 引用计数减一；节点不存在时记为"欠账"（负计数）
	Remove(hash types.Hash)
}

// Entry 节点值及其引用计数
type Entry struct {
	Value    []byte
	RefCount int32
}

// MemoryDB 带引用计数的内存节点存储
//
// 引用计数<=0的节点对读取不可见；负计数表示删除了一个本存储中没有的节点，
// 提交到下层存储时应从其计数中扣除。
type MemoryDB struct {
	entries map[types.Hash]*Entry
}

// NewMemoryDB 创建空的内存节点存储
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{entries: make(map[types.Hash]*Entry)}
}

// Get 读取引用计数为正的节点
func (m *MemoryDB) Get(hash types.Hash) ([]byte, error) {
	if e, ok := m.entries[hash]; ok && e.RefCount > 0 {
		return e.Value, nil
	}
	return nil, nil
}

// Contains 节点是否可见
func (m *MemoryDB) Contains(hash types.Hash) bool {
	e, ok := m.entries[hash]
	return ok && e.RefCount > 0
}

// Emplace 写入节点
func (m *MemoryDB) Emplace(hash types.Hash, value []byte) {
	if e, ok := m.entries[hash]; ok {
		if e.Value == nil {
			e.Value = value
		}
		e.RefCount++
		return
	}
	m.entries[hash] = &Entry{Value: value, RefCount: 1}
}

// Remove 引用计数减一
func (m *MemoryDB) Remove(hash types.Hash) {
	if e, ok := m.entries[hash]; ok {
		e.RefCount--
		return
	}
	m.entries[hash] = &Entry{RefCount: -1}
}

// Changes 返回全部条目的副本，不清空
func (m *MemoryDB) Changes() map[types.Hash]Entry {
	out := make(map[types.Hash]Entry, len(m.entries))
	for h, e := range m.entries {
		out[h] = *e
	}
	return out
}

// Drain 返回全部条目并清空
func (m *MemoryDB) Drain() map[types.Hash]Entry {
	out := m.Changes()
	m.Clear()
	return out
}

// Forget 丢弃指定条目，用于已经写入下层存储的部分变更
func (m *MemoryDB) Forget(hashes []types.Hash) {
	for _, h := range hashes {
		delete(m.entries, h)
	}
}

// Clear 清空全部条目
func (m *MemoryDB) Clear() {
	m.entries = make(map[types.Hash]*Entry)
}

// Purge 丢弃引用计数归零的条目
func (m *MemoryDB) Purge() {
	for h, e := range m.entries {
		if e.RefCount == 0 {
			delete(m.entries, h)
		}
	}
}

// Len 可见节点数量
func (m *MemoryDB) Len() int {
	n := 0
	for _, e := range m.entries {
		if e.RefCount > 0 {
			n++
		}
	}
	return n
}

// PendingLen 全部条目数量（含计数<=0的条目）
func (m *MemoryDB) PendingLen() int {
	return len(m.entries)
}

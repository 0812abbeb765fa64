// Package persistent 提供基于列式键值存储的持久化文件数据树与文件注册表
//
// 🎯 **核心职责**
// - 数据树节点写入 chunks 列，记录格式为 4字节大端引用计数 || 节点编码
// - 变更先进入 Overlay 写缓冲，提交时按存储的批量上限拆成若干原子批量
// - 元数据、部分根指针、存储桶索引分别存放在独立的列中
//
// 💡 **引用计数**
// 内容相同的文件共享节点，提交时按 新计数 = 已存储计数 + 缓冲增量 合并，
// 计数降到0的节点才会被物理删除，删除一个文件不会影响另一个相同内容的文件。
//
// 💡 **批量顺序**
// 计数增加的节点先落盘；部分根指针与元数据所在的批量是提交点；
// 计数减少的节点在提交点之后落盘。任何时刻崩溃，指针指向的树都完整，
// 最坏情况只是部分节点计数偏高。
package persistent

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/trie"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 逻辑列
const (
	ColumnMetadata     storage.Column = 0 // file_key -> rlp(FileMetadata)
	ColumnRoots        storage.Column = 1 // fingerprint || file_key -> 部分根
	ColumnChunks       storage.Column = 2 // 节点哈希 -> 引用计数 || 节点编码
	ColumnBucketPrefix storage.Column = 3 // bucket_id || file_key -> 空值
)

const refCountLength = 4

// defaultBatchBudget 存储未声明批量上限时每个批量的估算上限
const defaultBatchBudget = 4 << 20

// 确保StorageDB可以作为数据树的下层节点存储
var _ trie.NodeReader = (*StorageDB)(nil)

// StorageDB 持久化存储上的读写辅助
type StorageDB struct {
	db     storage.KeyValueDB
	cache  storage.NodeCache
	logger log.Logger

	// budget 单个批量的估算上限，留出四分之一给指针与元数据
	budget int
}

// NewStorageDB 创建存储辅助，cache 可以为 nil
func NewStorageDB(db storage.KeyValueDB, cache storage.NodeCache, logger log.Logger) (*StorageDB, error) {
	if db == nil {
		return nil, ErrNilKeyValueDB
	}
	budget := defaultBatchBudget
	if l, ok := db.(storage.BatchLimiter); ok && l.MaxBatchBytes() > 0 {
		budget = int(l.MaxBatchBytes() / 4 * 3)
	}
	return &StorageDB{db: db, cache: cache, logger: logger, budget: budget}, nil
}

// read 读取单个键，I/O失败映射为 ErrFailedToReadStorage
func (s *StorageDB) read(col storage.Column, key []byte) ([]byte, error) {
	v, err := s.db.Get(col, key)
	if err != nil {
		s.logger.Warnf("读取存储失败: column=%d err=%v", col, err)
		return nil, fmt.Errorf("%w: %w", fm.ErrFailedToReadStorage, err)
	}
	return v, nil
}

// write 原子写入批量，I/O失败映射为 ErrFailedToWriteToStorage
func (s *StorageDB) write(tx *storage.DBTransaction) error {
	if err := s.db.Write(tx); err != nil {
		s.logger.Errorf("写入存储失败: ops=%d err=%v", tx.Len(), err)
		return fmt.Errorf("%w: %w", fm.ErrFailedToWriteToStorage, err)
	}
	return nil
}

// iterPrefix 前缀遍历
func (s *StorageDB) iterPrefix(col storage.Column, prefix []byte, fn func(key, value []byte) error) error {
	if err := s.db.IterWithPrefix(col, prefix, fn); err != nil {
		s.logger.Warnf("遍历存储失败: column=%d err=%v", col, err)
		return fmt.Errorf("%w: %w", fm.ErrFailedToReadStorage, err)
	}
	return nil
}

// nodeRecord 读取节点记录，不存在时返回 (0, nil, nil)
func (s *StorageDB) nodeRecord(h types.Hash) (int32, []byte, error) {
	raw, err := s.read(ColumnChunks, h.Bytes())
	if err != nil || raw == nil {
		return 0, nil, err
	}
	if len(raw) < refCountLength {
		return 0, nil, fmt.Errorf("%w: %s 长度%d", ErrCorruptNodeRecord, h.Hex(), len(raw))
	}
	return int32(binary.BigEndian.Uint32(raw[:refCountLength])), raw[refCountLength:], nil
}

func encodeNodeRecord(refCount int32, enc []byte) []byte {
	out := make([]byte, refCountLength+len(enc))
	binary.BigEndian.PutUint32(out, uint32(refCount))
	copy(out[refCountLength:], enc)
	return out
}

// Get 读取已持久化的节点编码，实现 trie.NodeReader
func (s *StorageDB) Get(h types.Hash) ([]byte, error) {
	if s.cache != nil {
		if enc, ok := s.cache.Get(h.Bytes()); ok {
			return enc, nil
		}
	}

	refCount, enc, err := s.nodeRecord(h)
	if err != nil {
		return nil, err
	}
	if refCount <= 0 {
		return nil, nil
	}
	if s.cache != nil {
		s.cache.Set(h.Bytes(), enc)
	}
	return enc, nil
}

// nodeWrite 一个节点合并后的落盘操作
type nodeWrite struct {
	hash  types.Hash
	delta int32
	// record 非nil时写入合并后的节点记录；为nil且del为false时无需落盘
	record []byte
	del    bool
}

// cost 与存储实现的批量估算规则一致：键含一字节列前缀
func (w nodeWrite) cost() int {
	switch {
	case w.record != nil:
		return len(w.hash) + 1 + len(w.record) + 20
	case w.del:
		return len(w.hash) + 1 + 10
	default:
		return 0
	}
}

// planNodeChanges 把写缓冲的引用计数增量与已存储计数合并
//
// 返回：
//   - grow: 计数增加的节点，必须在提交点之前落盘
//   - shrink: 计数减少的节点，只能在提交点之后落盘
//   - error: 读取节点记录失败，或正计数的节点找不到编码
func (s *StorageDB) planNodeChanges(changes map[types.Hash]trie.Entry) (grow, shrink []nodeWrite, err error) {
	for h, e := range changes {
		if e.RefCount == 0 {
			continue
		}
		stored, storedEnc, err := s.nodeRecord(h)
		if err != nil {
			return nil, nil, err
		}

		w := nodeWrite{hash: h, delta: e.RefCount}
		merged := stored + e.RefCount
		if merged > 0 {
			value := e.Value
			if value == nil {
				value = storedEnc
			}
			if value == nil {
				return nil, nil, fmt.Errorf("%w: 节点 %s 计数为%d但没有编码", fm.ErrFailedToPersistChanges, h.Hex(), merged)
			}
			w.record = encodeNodeRecord(merged, value)
		} else {
			w.del = storedEnc != nil
		}

		if e.RefCount > 0 {
			grow = append(grow, w)
		} else {
			shrink = append(shrink, w)
		}
	}

	byHash := func(ws []nodeWrite) {
		sort.Slice(ws, func(i, j int) bool { return bytes.Compare(ws[i].hash[:], ws[j].hash[:]) < 0 })
	}
	byHash(grow)
	byHash(shrink)
	return grow, shrink, nil
}

// nodeBatch 正在装填的一个批量
type nodeBatch struct {
	tx    *storage.DBTransaction
	size  int
	nodes []nodeWrite
}

func newNodeBatch() *nodeBatch {
	return &nodeBatch{tx: storage.NewDBTransaction()}
}

// fits 批量为空时总能装入，避免单个超大节点导致死循环
func (b *nodeBatch) fits(w nodeWrite, budget int) bool {
	return b.tx.Len() == 0 || b.size+w.cost() <= budget
}

func (b *nodeBatch) add(w nodeWrite) {
	b.nodes = append(b.nodes, w)
	b.size += w.cost()
	switch {
	case w.record != nil:
		b.tx.Put(ColumnChunks, w.hash.Bytes(), w.record)
	case w.del:
		b.tx.Delete(ColumnChunks, w.hash.Bytes())
	}
}

func (b *nodeBatch) hashes() []types.Hash {
	out := make([]types.Hash, len(b.nodes))
	for i, w := range b.nodes {
		out[i] = w.hash
	}
	return out
}

func (b *nodeBatch) deleted() []types.Hash {
	var out []types.Hash
	for _, w := range b.nodes {
		if w.del {
			out = append(out, w.hash)
		}
	}
	return out
}

// evict 从节点缓存中移除已物理删除的节点
func (s *StorageDB) evict(hashes []types.Hash) {
	if s.cache == nil {
		return
	}
	for _, h := range hashes {
		s.cache.Delete(h.Bytes())
	}
}

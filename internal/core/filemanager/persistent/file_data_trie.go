package persistent

import (
	"fmt"

	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/trie"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 确保FileDataTrie实现了数据树接口
var _ fm.FileDataTrie = (*FileDataTrie)(nil)

// FileDataTrie 持久化数据树
//
// 💡 **两个根**
// - root：已提交的根，读取与 GetRoot 只看这个根
// - staged：写缓冲中的根，变更总是基于它构建
//
// 提交成功后二者相等并清空写缓冲；提交失败时未落盘的变更保留在写缓冲中，
// 之后的写入或 Commit 会把它们重新提交。
type FileDataTrie struct {
	storage *StorageDB
	overlay *trie.Overlay
	root    types.Hash
	staged  types.Hash

	// pointerKey 非空时每次提交同时更新 roots 列中的部分根指针
	pointerKey []byte

	// flushed 提交点之前已经落盘的计数增量，新根作废时据此回退
	flushed map[types.Hash]int32
}

func newFileDataTrie(s *StorageDB, root types.Hash, pointerKey []byte) *FileDataTrie {
	return &FileDataTrie{
		storage:    s,
		overlay:    trie.NewOverlay(s),
		root:       root,
		staged:     root,
		pointerKey: pointerKey,
	}
}

// NewFileDataTrie 创建不登记到注册表的空持久化数据树
func NewFileDataTrie(s *StorageDB) *FileDataTrie {
	return newFileDataTrie(s, filedata.EmptyRoot(), nil)
}

func (t *FileDataTrie) readView() *trie.Trie {
	return trie.New(filedata.Layout, t.overlay, t.root)
}

func (t *FileDataTrie) writeView() *trie.Trie {
	return trie.New(filedata.Layout, t.overlay, t.staged)
}

// GetRoot 已提交的根
func (t *FileDataTrie) GetRoot() types.Hash {
	return t.root
}

// HasPendingChanges 写缓冲中是否有未落盘的变更
func (t *FileDataTrie) HasPendingChanges() bool {
	return t.staged != t.root || t.overlay.PendingLen() > 0
}

// StoredChunksCount 当前分块数
func (t *FileDataTrie) StoredChunksCount() (uint64, error) {
	return filedata.StoredChunksCount(t.readView())
}

// GenerateProof 为指定分块生成紧凑证明
func (t *FileDataTrie) GenerateProof(chunkIDs []types.ChunkID) (*types.FileProof, error) {
	return filedata.GenerateProof(t.readView(), chunkIDs)
}

// GetChunk 读取分块
func (t *FileDataTrie) GetChunk(chunkID types.ChunkID) (types.Chunk, error) {
	return filedata.GetChunk(t.readView(), chunkID)
}

// ForEachChunk 按分块序号升序遍历
func (t *FileDataTrie) ForEachChunk(fn func(chunkID types.ChunkID, data types.Chunk) error) error {
	return filedata.ForEachChunk(t.readView(), fn)
}

// WriteChunk 写入分块并立即提交
func (t *FileDataTrie) WriteChunk(chunkID types.ChunkID, data types.Chunk) error {
	v := t.writeView()
	if err := filedata.InsertChunk(v, chunkID, data); err != nil {
		return err
	}
	t.staged = v.Root()
	return t.commit(nil)
}

// Delete 删除全部分块并提交
func (t *FileDataTrie) Delete() error {
	if err := t.stageDelete(); err != nil {
		return err
	}
	return t.commit(nil)
}

func (t *FileDataTrie) stageDelete() error {
	v := t.writeView()
	if err := filedata.RemoveAll(v); err != nil {
		return err
	}
	t.staged = v.Root()
	return nil
}

// Commit 重新提交之前失败的变更，没有待提交内容时直接返回
func (t *FileDataTrie) Commit() error {
	if !t.HasPendingChanges() {
		return nil
	}
	return t.commit(nil)
}

// commit 把写缓冲、部分根指针以及extra追加的操作写入存储
//
// 变更按批量上限拆分，变更较小时只有一个原子批量。
//
// 执行流程：
//  1. 合并写缓冲的引用计数增量
//  2. 计数增加的节点装批落盘
//  3. 部分根指针与extra追加的操作加入当前批量，该批量成功即为提交点，推进已提交的根
//  4. 计数减少的节点装批落盘
//
// 每个批量成功后，其中的节点从写缓冲移除；失败时剩余变更留在写缓冲中。
func (t *FileDataTrie) commit(extra func(tx *storage.DBTransaction)) error {
	if extra == nil && !t.HasPendingChanges() {
		t.storage.logger.Warnf("数据树根未变化，跳过提交: root=%s", t.root.Hex())
		return nil
	}

	// 1. 合并
	grow, shrink, err := t.storage.planNodeChanges(t.overlay.Changes())
	if err != nil {
		return fmt.Errorf("%w: %w", fm.ErrFailedToPersistChanges, err)
	}

	b := newNodeBatch()
	passed := false
	flush := func(commitPoint, last bool) error {
		if b.tx.Len() > 0 {
			if err := t.storage.write(b.tx); err != nil {
				if passed {
					t.storage.logger.Errorf("提交点之后的节点批量写入失败，剩余%d个节点待重试: root=%s",
						t.overlay.PendingLen(), t.root.Hex())
				}
				return fmt.Errorf("%w: %w", fm.ErrFailedToPersistChanges, err)
			}
		}
		t.flushedBatch(b, commitPoint, last)
		passed = passed || commitPoint
		b = newNodeBatch()
		return nil
	}

	// 2. 新增
	for _, w := range grow {
		if !b.fits(w, t.storage.budget) {
			if err := flush(false, false); err != nil {
				return err
			}
		}
		b.add(w)
	}

	// 3. 提交点
	if t.pointerKey != nil {
		b.tx.Put(ColumnRoots, t.pointerKey, t.staged.Bytes())
	}
	if extra != nil {
		extra(b.tx)
	}
	commitPoint := true

	// 4. 扣减
	for _, w := range shrink {
		if !b.fits(w, t.storage.budget) {
			if err := flush(commitPoint, false); err != nil {
				return err
			}
			commitPoint = false
		}
		b.add(w)
	}
	return flush(commitPoint, true)
}

// flushedBatch 一个批量写入成功后更新内存状态
func (t *FileDataTrie) flushedBatch(b *nodeBatch, commitPoint, last bool) {
	if !commitPoint && t.root != t.staged {
		if t.flushed == nil {
			t.flushed = make(map[types.Hash]int32)
		}
		for _, w := range b.nodes {
			t.flushed[w.hash] += w.delta
		}
	}
	if commitPoint {
		t.root = t.staged
		t.flushed = nil
	}

	if last {
		t.overlay.Clear()
	} else {
		t.overlay.Forget(b.hashes())
	}
	t.storage.evict(b.deleted())
}

// detach 把提交失败的数据树转为只等待释放节点计数的孤立树
//
// 未到达提交点时新根作废，已经落盘的计数增量转为待扣减；
// 到达提交点之后只剩待扣减的计数。之后调用 Commit 完成释放。
//
// 返回：
//   - bool: 是否仍有需要释放的计数
func (t *FileDataTrie) detach() bool {
	if t.staged != t.root {
		t.overlay.Clear()
		for h, d := range t.flushed {
			for i := int32(0); i < d; i++ {
				t.overlay.Remove(h)
			}
		}
		t.staged = t.root
	}
	t.flushed = nil
	t.pointerKey = nil
	return t.HasPendingChanges()
}

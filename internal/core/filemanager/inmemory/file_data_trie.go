// Package inmemory 提供易失的文件数据树与文件注册表实现
//
// 🎯 **适用场景**
// - 测试与临时节点：进程退出即丢失全部数据
// - 上传暂存：内容先写入内存数据树，再整体登记到持久化注册表
//
// ⚠️ 实现内部不做同步，见 filemanager 包的并发约束。
package inmemory

import (
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/trie"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 确保FileDataTrie实现了数据树接口
var _ fm.FileDataTrie = (*FileDataTrie)(nil)

// FileDataTrie 内存数据树
// 节点存放在带引用计数的 MemoryDB 中，每次写入后丢弃计数归零的节点
type FileDataTrie struct {
	db   *trie.MemoryDB
	root types.Hash
}

// NewFileDataTrie 创建空的内存数据树
func NewFileDataTrie() *FileDataTrie {
	return &FileDataTrie{
		db:   trie.NewMemoryDB(),
		root: filedata.EmptyRoot(),
	}
}

func (t *FileDataTrie) view() *trie.Trie {
	return trie.New(filedata.Layout, t.db, t.root)
}

// GetRoot 当前树根
func (t *FileDataTrie) GetRoot() types.Hash {
	return t.root
}

// StoredChunksCount 当前分块数
func (t *FileDataTrie) StoredChunksCount() (uint64, error) {
	return filedata.StoredChunksCount(t.view())
}

// GenerateProof 为指定分块生成紧凑证明
func (t *FileDataTrie) GenerateProof(chunkIDs []types.ChunkID) (*types.FileProof, error) {
	return filedata.GenerateProof(t.view(), chunkIDs)
}

// GetChunk 读取分块
func (t *FileDataTrie) GetChunk(chunkID types.ChunkID) (types.Chunk, error) {
	return filedata.GetChunk(t.view(), chunkID)
}

// WriteChunk 写入分块，分块已存在时返回 ErrFileChunkAlreadyExists
func (t *FileDataTrie) WriteChunk(chunkID types.ChunkID, data types.Chunk) error {
	v := t.view()
	if err := filedata.InsertChunk(v, chunkID, data); err != nil {
		return err
	}
	t.root = v.Root()
	t.db.Purge()
	return nil
}

// Delete 删除全部分块并回到规范空树
func (t *FileDataTrie) Delete() error {
	v := t.view()
	if err := filedata.RemoveAll(v); err != nil {
		return err
	}
	t.db.Clear()
	t.root = filedata.EmptyRoot()
	return nil
}

// ForEachChunk 按分块序号升序遍历
func (t *FileDataTrie) ForEachChunk(fn func(chunkID types.ChunkID, data types.Chunk) error) error {
	return filedata.ForEachChunk(t.view(), fn)
}

// NodeCount 当前可见节点数
func (t *FileDataTrie) NodeCount() int {
	return t.db.Len()
}

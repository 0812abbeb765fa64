package manager

import (
	"sync"

	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// lockedTrie 与注册表共享读写锁的独立数据树
// 持久化后端的独立数据树与注册表写同一份节点引用计数，必须串行提交
type lockedTrie struct {
	inner fm.FileDataTrie
	mu    *sync.RWMutex
}

func (t *lockedTrie) GetRoot() types.Hash {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.GetRoot()
}

func (t *lockedTrie) StoredChunksCount() (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.StoredChunksCount()
}

func (t *lockedTrie) GenerateProof(chunkIDs []types.ChunkID) (*types.FileProof, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.GenerateProof(chunkIDs)
}

func (t *lockedTrie) GetChunk(chunkID types.ChunkID) (types.Chunk, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.GetChunk(chunkID)
}

func (t *lockedTrie) WriteChunk(chunkID types.ChunkID, data types.Chunk) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.WriteChunk(chunkID, data)
}

func (t *lockedTrie) Delete() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.Delete()
}

func (t *lockedTrie) ForEachChunk(fn func(chunkID types.ChunkID, data types.Chunk) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.inner.ForEachChunk(fn)
}

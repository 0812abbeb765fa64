// Package filedata 提供两种文件数据树实现共用的分块级操作
//
// 🎯 **核心职责**
// - 分块与数据树叶子之间的编解码：键为 ChunkID 的8字节大端编码，值为 rlp(ChunkWithID)
// - 把数据树的底层错误映射为文件存储引擎的错误分类
// - 生成与回放紧凑证明
//
// 本包不持有状态，调用方传入已经打开的数据树视图。
package filedata

import (
	"errors"
	"fmt"

	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/trie"
	"github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/crypto/hash"
	cryptointf "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/crypto"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// Layout 文件数据树布局，进程内唯一
var Layout = trie.NewLayout(hash.Default)

// EmptyRoot 规范空树根
func EmptyRoot() types.Hash {
	return Layout.EmptyRoot()
}

// GetChunk 读取分块
//
// 参数：
//   - t: 数据树视图
//   - chunkID: 分块序号
//
// 返回：
//   - types.Chunk: 分块数据
//   - error: 不存在返回 ErrFileChunkDoesNotExist；叶子损坏返回 ErrFailedToParseChunkWithID
func GetChunk(t *trie.Trie, chunkID types.ChunkID) (types.Chunk, error) {
	raw, ok, err := t.Get(chunkID.AsTrieKey())
	if err != nil {
		return nil, fmt.Errorf("%w: 分块 %d: %w", fm.ErrFailedToGetFileChunk, chunkID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: 分块 %d", fm.ErrFileChunkDoesNotExist, chunkID)
	}
	return decodeLeaf(chunkID, raw)
}

func decodeLeaf(chunkID types.ChunkID, raw []byte) (types.Chunk, error) {
	c, err := types.DecodeChunkWithID(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: 分块 %d: %w", fm.ErrFailedToParseChunkWithID, chunkID, err)
	}
	if c.ChunkID != chunkID {
		return nil, fmt.Errorf("%w: 键 %d 下存放的是分块 %d", fm.ErrFailedToParseChunkWithID, chunkID, c.ChunkID)
	}
	return c.Data, nil
}

// StoredChunksCount 通过完整遍历统计叶子数
func StoredChunksCount(t *trie.Trie) (uint64, error) {
	n, err := t.Len()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", fm.ErrFailedToConstructTrieIter, err)
	}
	return n, nil
}

// InsertChunk 插入分块，分块已存在时拒绝
func InsertChunk(t *trie.Trie, chunkID types.ChunkID, data types.Chunk) error {
	key := chunkID.AsTrieKey()

	exists, err := t.Contains(key)
	if err != nil {
		return fmt.Errorf("%w: 分块 %d: %w", fm.ErrFailedToGetFileChunk, chunkID, err)
	}
	if exists {
		return fmt.Errorf("%w: 分块 %d", fm.ErrFileChunkAlreadyExists, chunkID)
	}

	leaf := &types.ChunkWithID{ChunkID: chunkID, Data: data}
	value, err := leaf.Encode()
	if err != nil {
		return fmt.Errorf("%w: 分块 %d: %w", fm.ErrFailedToInsertFileChunk, chunkID, err)
	}
	if err := t.Insert(key, value); err != nil {
		return fmt.Errorf("%w: 分块 %d: %w", fm.ErrFailedToInsertFileChunk, chunkID, err)
	}
	return nil
}

// ForEachChunk 按分块序号升序遍历
func ForEachChunk(t *trie.Trie, fn func(chunkID types.ChunkID, data types.Chunk) error) error {
	errStop := errors.New("stop")
	var cbErr error

	err := t.Iterate(func(key, value []byte) error {
		chunkID, err := types.ChunkIDFromTrieKey(key)
		if err != nil {
			return fmt.Errorf("%w: %w", fm.ErrFailedToParseKey, err)
		}
		data, err := decodeLeaf(chunkID, value)
		if err != nil {
			return err
		}
		if err := fn(chunkID, data); err != nil {
			cbErr = err
			return errStop
		}
		return nil
	})
	if cbErr != nil {
		return cbErr
	}
	if err != nil {
		if errors.Is(err, fm.ErrFailedToParseKey) || errors.Is(err, fm.ErrFailedToParseChunkWithID) {
			return err
		}
		return fmt.Errorf("%w: %w", fm.ErrFailedToConstructTrieIter, err)
	}
	return nil
}

// RemoveAll 删除遍历到的全部叶子，结束后数据树为空树
func RemoveAll(t *trie.Trie) error {
	var keys [][]byte
	if err := t.Iterate(func(key, _ []byte) error {
		keys = append(keys, append([]byte(nil), key...))
		return nil
	}); err != nil {
		return fmt.Errorf("%w: %w", fm.ErrFailedToConstructTrieIter, err)
	}

	for _, key := range keys {
		if _, err := t.Remove(key); err != nil {
			return fmt.Errorf("%w: %w", fm.ErrFailedToDeleteChunk, err)
		}
	}
	return nil
}

// GenerateProof 为指定分块生成紧凑证明
//
// 执行流程：
//  1. 在数据树上挂接记录器，先读取根节点保证证明至少包含根
//  2. 逐个读取请求的分块，被访问的路径节点全部进入记录器
//  3. 把记录结果压缩为以当前根为锚点的紧凑证明
func GenerateProof(t *trie.Trie, chunkIDs []types.ChunkID) (*types.FileProof, error) {
	recorder := trie.NewRecorder()
	recording := t.WithRecorder(recorder)

	// 1. 根节点
	if err := recording.LoadRoot(); err != nil {
		return nil, fmt.Errorf("%w: %w", fm.ErrFailedToGenerateCompactProof, err)
	}

	// 2. 读取分块
	for _, id := range chunkIDs {
		if _, err := GetChunk(recording, id); err != nil {
			return nil, err
		}
	}

	// 3. 压缩
	proof, err := trie.EncodeCompactProof(Layout, t.Root(), recorder.Drain())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fm.ErrFailedToGenerateCompactProof, err)
	}

	return &types.FileProof{
		Proof:       proof,
		Fingerprint: t.Root(),
	}, nil
}

// ProvenChunks 以证明声明的指纹校验紧凑证明，返回其中携带的分块
//
// 参数：
//   - hasher: 节点哈希算法，nil 时使用默认算法
//   - proof: 待回放的证明
//
// 返回：
//   - []types.ChunkWithID: 按分块序号升序排列的已证明分块
//   - error: 证明无效、根不匹配或叶子损坏
func ProvenChunks(hasher cryptointf.Hasher, proof *types.FileProof) ([]types.ChunkWithID, error) {
	layout := Layout
	if hasher != nil && hasher.Name() != Layout.Hasher().Name() {
		layout = trie.NewLayout(hasher)
	}

	leaves, err := trie.VerifyCompactProof(layout, proof.Fingerprint, proof.Proof)
	if err != nil {
		return nil, err
	}

	out := make([]types.ChunkWithID, 0, len(leaves))
	for _, leaf := range leaves {
		chunkID, err := types.ChunkIDFromTrieKey(leaf.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", fm.ErrFailedToParseKey, err)
		}
		data, err := decodeLeaf(chunkID, leaf.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, types.ChunkWithID{ChunkID: chunkID, Data: data})
	}
	return out, nil
}

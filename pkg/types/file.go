package types

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	"golang.org/x/crypto/blake2b"
)

// ChunkID 文件分块序号，取值范围 [0, chunks_count)
type ChunkID uint64

// AsTrieKey 返回分块在数据树中的键
// 8字节大端编码，保证字节序与数值序一致
func (id ChunkID) AsTrieKey() []byte {
	key := make([]byte, constants.TrieKeyLength)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// ChunkIDFromTrieKey 从数据树键还原分块序号
func ChunkIDFromTrieKey(key []byte) (ChunkID, error) {
	if len(key) != constants.TrieKeyLength {
		return 0, fmt.Errorf("分块键长度无效: %d", len(key))
	}
	return ChunkID(binary.BigEndian.Uint64(key)), nil
}

// Chunk 文件分块数据，最长FileChunkSize字节
type Chunk []byte

// ChunkWithID 叶子节点中实际存储的值
// 携带自身序号，解码时用于校验叶子与键是否匹配
type ChunkWithID struct {
	ChunkID ChunkID
	Data    Chunk
}

// Encode 编码为叶子值
func (c *ChunkWithID) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(c)
}

// DecodeChunkWithID 解码叶子值
func DecodeChunkWithID(b []byte) (*ChunkWithID, error) {
	var c ChunkWithID
	if err := rlp.DecodeBytes(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FileMetadata 文件元数据
//
// Fingerprint 是全部分块写入完成后数据树根的期望值，由客户端在存储请求中给出，
// 写入过程中用于与实际计算出的根比较，发现损坏或短写。
type FileMetadata struct {
	Owner       []byte      `json:"owner"`
	BucketID    []byte      `json:"bucket_id"`
	Location    []byte      `json:"location"`
	FileSize    uint64      `json:"file_size"`
	Fingerprint Fingerprint `json:"fingerprint"`
}

// ChunksCount 文件分块数量 = ceil(file_size / FileChunkSize)
func (m *FileMetadata) ChunksCount() uint64 {
	return ceilDiv(m.FileSize, constants.FileChunkSize)
}

// ceilDiv 向上取整除法，size 接近 2^64 时不会溢出
func ceilDiv(size, unit uint64) uint64 {
	n := size / unit
	if size%unit != 0 {
		n++
	}
	return n
}

// ChallengesCount 文件需要应答的挑战数，至少为1
func (m *FileMetadata) ChallengesCount() uint64 {
	n := ceilDiv(m.FileSize, constants.FileSizeToChallenges)
	if n == 0 {
		return 1
	}
	return n
}

// Encode 文件元数据的规范编码
// 字段顺序固定：owner, bucket_id, location, file_size, fingerprint
func (m *FileMetadata) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(m)
}

// DecodeFileMetadata 解码规范编码的文件元数据
func DecodeFileMetadata(b []byte) (*FileMetadata, error) {
	var m FileMetadata
	if err := rlp.DecodeBytes(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// FileKey 计算文件唯一标识 = Blake2b-256(Encode())
func (m *FileMetadata) FileKey() (FileKey, error) {
	enc, err := m.Encode()
	if err != nil {
		return FileKey{}, fmt.Errorf("编码文件元数据失败: %w", err)
	}
	return blake2b.Sum256(enc), nil
}

// BucketPrefixKey 存储桶二级索引的组合键 bucket_id || file_key
func BucketPrefixKey(bucketID []byte, key FileKey) []byte {
	out := make([]byte, 0, len(bucketID)+len(key))
	out = append(out, bucketID...)
	return append(out, key[:]...)
}

// Package filemanager 提供按文件内容寻址的存储引擎公共接口定义
//
// 📁 **文件存储引擎接口 (Per-File Content-Addressed Storage)**
//
// 一个文件被切分为定长分块，分块作为叶子存入一棵二进制默克尔前缀树（文件数据树），
// 树根即文件的"指纹"。引擎负责分块读写、完整性判定以及针对分块子集生成紧凑证明。
//
// 🎯 **核心职责**：
// - FileDataTrie：单个文件的数据树，内存与持久化两种实现共享同一契约
// - FileStorage：以 FileKey 为主键的文件注册表，维护元数据、数据树及存储桶二级索引
//
// ⚠️ **并发约束**：
// - 实现内部不做同步，调用方必须按注册表实例持有读写锁
// - 读操作（GetChunk、GenerateProof、StoredChunksCount）可并发
// - 写操作（WriteChunk、InsertFile、DeleteFile）必须独占
package filemanager

import "github.com/w3f-grants-archive/storage-hub/pkg/types"

// WriteOutcome 分块写入后的文件状态
type WriteOutcome uint8

const (
	// FileIncomplete 文件仍缺少分块
	FileIncomplete WriteOutcome = iota
	// FileComplete 全部分块已写入且树根等于指纹
	FileComplete
)

// String 返回可读名称
func (o WriteOutcome) String() string {
	switch o {
	case FileComplete:
		return "FileComplete"
	case FileIncomplete:
		return "FileIncomplete"
	default:
		return "Unknown"
	}
}

// FileDataTrie 单个文件的数据树
//
// 💡 **设计理念**：
// - 分块只写一次：已存在的分块再次写入返回 ErrFileChunkAlreadyExists，不覆盖
// - 持久化实现在每次变更后立即提交，已提交状态不会指向过期的写缓冲
type FileDataTrie interface {
	// GetRoot 当前树根；新建的空树返回规范空树根
	GetRoot() types.Hash

	// StoredChunksCount 当前叶子数量，通过完整遍历得到，代价与分块数成正比
	StoredChunksCount() (uint64, error)

	// GenerateProof 为指定分块生成紧凑证明
	//
	// 参数：
	//   - chunkIDs: 需要证明的分块序号
	//
	// 返回：
	//   - *types.FileProof: 证明字节及当前树根
	//   - error: 任一分块不存在时返回 ErrFileChunkDoesNotExist
	GenerateProof(chunkIDs []types.ChunkID) (*types.FileProof, error)

	// GetChunk 读取分块
	GetChunk(chunkID types.ChunkID) (types.Chunk, error)

	// WriteChunk 写入分块
	WriteChunk(chunkID types.ChunkID, data types.Chunk) error

	// Delete 删除全部分块，树回到空树状态
	Delete() error

	// ForEachChunk 按分块序号升序遍历全部分块
	ForEachChunk(fn func(chunkID types.ChunkID, data types.Chunk) error) error
}

// FileStorage 文件注册表
type FileStorage interface {
	// NewFileDataTrie 创建与本注册表后端一致的空数据树
	NewFileDataTrie() FileDataTrie

	// GenerateProof 生成文件级证明
	// 必须先校验完整性（ErrIncompleteFile）与指纹一致性（ErrFingerprintAndStoredFileMismatch）
	GenerateProof(key types.FileKey, chunkIDs []types.ChunkID) (*types.FileKeyProof, error)

	// DeleteFile 删除元数据、数据树及存储桶索引项
	DeleteFile(key types.FileKey) error

	// GetMetadata 读取元数据；键不存在时返回 (nil, nil)
	GetMetadata(key types.FileKey) (*types.FileMetadata, error)

	// InsertFile 以空数据树登记文件
	InsertFile(key types.FileKey, metadata types.FileMetadata) error

	// InsertFileWithData 以已有数据的数据树登记文件
	InsertFileWithData(key types.FileKey, metadata types.FileMetadata, fileData FileDataTrie) error

	// StoredChunksCount 文件已存储分块数
	StoredChunksCount(key types.FileKey) (uint64, error)

	// GetChunk 读取文件分块
	GetChunk(key types.FileKey, chunkID types.ChunkID) (types.Chunk, error)

	// WriteChunk 写入文件分块，并根据完整性重新判定文件状态
	WriteChunk(key types.FileKey, chunkID types.ChunkID, data types.Chunk) (WriteOutcome, error)

	// DeleteFilesWithPrefix 删除存储桶下的全部文件
	DeleteFilesWithPrefix(bucketID []byte) error
}

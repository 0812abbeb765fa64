package inmemory

import (
	"fmt"

	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	logimpl "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 确保FileStorage实现了文件注册表接口
var _ fm.FileStorage = (*FileStorage)(nil)

// FileStorage 内存文件注册表
//
// metadata 与 fileData 必须成对出现，任何一侧单独存在都视为内部一致性被破坏。
type FileStorage struct {
	metadata    map[types.FileKey]types.FileMetadata
	fileData    map[types.FileKey]*FileDataTrie
	bucketIndex bucketIndex
	logger      log.Logger
}

// NewFileStorage 创建内存文件注册表
func NewFileStorage(logger log.Logger) *FileStorage {
	if logger == nil {
		logger = logimpl.NewNop()
	}
	return &FileStorage{
		metadata: make(map[types.FileKey]types.FileMetadata),
		fileData: make(map[types.FileKey]*FileDataTrie),
		logger:   logger.With("module", "filemanager", "backend", "inmemory"),
	}
}

// lookup 按键取出元数据与数据树，并校验二者成对
func (s *FileStorage) lookup(key types.FileKey) (types.FileMetadata, *FileDataTrie, bool) {
	md, hasMetadata := s.metadata[key]
	data, hasData := s.fileData[key]
	if hasMetadata != hasData {
		s.logger.Errorf("元数据与数据树不成对: file_key=%s metadata=%t data=%t", key.Hex(), hasMetadata, hasData)
		panic(fmt.Errorf("%w: file_key=%s", fm.ErrPairingInvariantViolated, key.Hex()))
	}
	return md, data, hasMetadata
}

// NewFileDataTrie 创建空的内存数据树
func (s *FileStorage) NewFileDataTrie() fm.FileDataTrie {
	return NewFileDataTrie()
}

// GetMetadata 读取元数据，键不存在时返回 (nil, nil)
func (s *FileStorage) GetMetadata(key types.FileKey) (*types.FileMetadata, error) {
	md, _, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	return &md, nil
}

// InsertFile 以空数据树登记文件
func (s *FileStorage) InsertFile(key types.FileKey, metadata types.FileMetadata) error {
	return s.insert(key, metadata, NewFileDataTrie())
}

// InsertFileWithData 以已有数据的数据树登记文件
// 非本后端的数据树会被逐块复制
func (s *FileStorage) InsertFileWithData(key types.FileKey, metadata types.FileMetadata, fileData fm.FileDataTrie) error {
	if err := filedata.CheckBucketID(metadata.BucketID); err != nil {
		return err
	}
	if _, _, ok := s.lookup(key); ok {
		return fmt.Errorf("%w: %s", fm.ErrFileAlreadyExists, key.Hex())
	}

	data, ok := fileData.(*FileDataTrie)
	if !ok {
		data = NewFileDataTrie()
		if err := fileData.ForEachChunk(data.WriteChunk); err != nil {
			return err
		}
	}
	return s.insert(key, metadata, data)
}

func (s *FileStorage) insert(key types.FileKey, metadata types.FileMetadata, data *FileDataTrie) error {
	if err := filedata.CheckBucketID(metadata.BucketID); err != nil {
		return err
	}
	if _, _, ok := s.lookup(key); ok {
		return fmt.Errorf("%w: %s", fm.ErrFileAlreadyExists, key.Hex())
	}
	s.metadata[key] = metadata
	s.fileData[key] = data
	s.bucketIndex.insert(types.BucketPrefixKey(metadata.BucketID, key))

	s.logger.Debugf("登记文件: file_key=%s size=%d", key.Hex(), metadata.FileSize)
	return nil
}

// StoredChunksCount 文件已存储分块数
func (s *FileStorage) StoredChunksCount(key types.FileKey) (uint64, error) {
	_, data, ok := s.lookup(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", fm.ErrFileDoesNotExist, key.Hex())
	}
	return data.StoredChunksCount()
}

// GetChunk 读取文件分块
func (s *FileStorage) GetChunk(key types.FileKey, chunkID types.ChunkID) (types.Chunk, error) {
	_, data, ok := s.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fm.ErrFileDoesNotExist, key.Hex())
	}
	return data.GetChunk(chunkID)
}

// WriteChunk 写入文件分块并重新判定完整性
//
// 返回：
//   - FileComplete: 分块数达到 chunks_count 且树根等于指纹
//   - FileIncomplete: 仍缺少分块
//   - error: 分块数已满但树根与指纹不一致时返回 ErrFingerprintAndStoredFileMismatch，分块保留
func (s *FileStorage) WriteChunk(key types.FileKey, chunkID types.ChunkID, chunk types.Chunk) (fm.WriteOutcome, error) {
	md, data, ok := s.lookup(key)
	if !ok {
		return fm.FileIncomplete, fmt.Errorf("%w: %s", fm.ErrFileDoesNotExist, key.Hex())
	}

	if err := data.WriteChunk(chunkID, chunk); err != nil {
		return fm.FileIncomplete, err
	}

	return filedata.Completeness(s.logger, key, &md, data)
}

// GenerateProof 先校验完整性与指纹一致性，再生成文件级证明
func (s *FileStorage) GenerateProof(key types.FileKey, chunkIDs []types.ChunkID) (*types.FileKeyProof, error) {
	md, data, ok := s.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fm.ErrFileDoesNotExist, key.Hex())
	}

	if err := filedata.CheckProvable(s.logger, key, &md, data); err != nil {
		return nil, err
	}

	proof, err := data.GenerateProof(chunkIDs)
	if err != nil {
		return nil, err
	}
	return proof.ToFileKeyProof(md), nil
}

// DeleteFile 删除元数据、数据树及存储桶索引项，键不存在时直接返回
func (s *FileStorage) DeleteFile(key types.FileKey) error {
	md, data, ok := s.lookup(key)
	if !ok {
		return nil
	}

	if err := data.Delete(); err != nil {
		return err
	}
	delete(s.metadata, key)
	delete(s.fileData, key)
	s.bucketIndex.remove(types.BucketPrefixKey(md.BucketID, key))

	s.logger.Debugf("删除文件: file_key=%s", key.Hex())
	return nil
}

// DeleteFilesWithPrefix 删除存储桶下的全部文件
func (s *FileStorage) DeleteFilesWithPrefix(bucketID []byte) error {
	if err := filedata.CheckBucketID(bucketID); err != nil {
		return err
	}
	for _, composite := range s.bucketIndex.withPrefix(bucketID) {
		key, err := fileKeyFromComposite(composite)
		if err != nil {
			return err
		}
		if err := s.DeleteFile(key); err != nil {
			return err
		}
	}
	return nil
}

// fileKeyFromComposite 取组合键末尾的 file_key
func fileKeyFromComposite(composite []byte) (types.FileKey, error) {
	if len(composite) != 2*constants.HLength {
		return types.FileKey{}, fmt.Errorf("%w: 组合键长度%d", fm.ErrFailedToParseKey, len(composite))
	}
	key, err := types.HashFromBytes(composite[len(composite)-constants.HLength:])
	if err != nil {
		return types.FileKey{}, fmt.Errorf("%w: %w", fm.ErrFailedToHasherOutput, err)
	}
	return key, nil
}

// Stats 注册表规模统计
func (s *FileStorage) Stats() (files int, nodes int) {
	for _, data := range s.fileData {
		nodes += data.NodeCount()
	}
	return len(s.metadata), nodes
}

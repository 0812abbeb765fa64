package persistent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	logimpl "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// 确保FileStorage实现了文件注册表接口
var _ fm.FileStorage = (*FileStorage)(nil)

// FileStorage 持久化文件注册表
//
// 元数据与部分根指针必须成对存在；指针按 fingerprint || file_key 存放，
// 内容相同的两个文件各自持有独立的指针。
type FileStorage struct {
	storage *StorageDB
	logger  log.Logger

	// orphans 提交中途失败、仍有节点计数待释放的数据树
	orphansMu sync.Mutex
	orphans   []*FileDataTrie
}

// NewFileStorage 创建持久化文件注册表
//
// 参数：
//   - db: 列式键值存储
//   - cache: 数据树节点缓存，可以为 nil
//   - logger: 日志记录器，为 nil 时不输出
//
// 返回：
//   - *FileStorage: 注册表实例
//   - error: db 为 nil 时返回 ErrNilKeyValueDB
func NewFileStorage(db storage.KeyValueDB, cache storage.NodeCache, logger log.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = logimpl.NewNop()
	}
	logger = logger.With("module", "filemanager", "backend", "persistent")

	s, err := NewStorageDB(db, cache, logger)
	if err != nil {
		return nil, err
	}
	return &FileStorage{storage: s, logger: logger}, nil
}

func rootsKey(md *types.FileMetadata, key types.FileKey) []byte {
	out := make([]byte, 0, 2*constants.HLength)
	out = append(out, md.Fingerprint.Bytes()...)
	return append(out, key.Bytes()...)
}

// adopt 接管提交失败的数据树，稍后释放其已落盘但不再被引用的节点
func (s *FileStorage) adopt(t *FileDataTrie) {
	if !t.detach() {
		return
	}
	s.orphansMu.Lock()
	s.orphans = append(s.orphans, t)
	n := len(s.orphans)
	s.orphansMu.Unlock()
	s.logger.Warnf("提交失败的数据树留有%d个待释放的节点变更，共%d棵待释放", t.overlay.PendingLen(), n)
}

// releaseOrphans 重新提交待释放的节点计数，仍然失败的留待下次
func (s *FileStorage) releaseOrphans() {
	s.orphansMu.Lock()
	defer s.orphansMu.Unlock()

	kept := s.orphans[:0]
	for _, t := range s.orphans {
		if err := t.Commit(); err != nil {
			s.logger.Warnf("释放孤立节点失败，稍后重试: %v", err)
			kept = append(kept, t)
		}
	}
	s.orphans = kept
}

// NewFileDataTrie 创建不登记到注册表的空持久化数据树
func (s *FileStorage) NewFileDataTrie() fm.FileDataTrie {
	return NewFileDataTrie(s.storage)
}

// GetMetadata 读取元数据，键不存在时返回 (nil, nil)
func (s *FileStorage) GetMetadata(key types.FileKey) (*types.FileMetadata, error) {
	raw, err := s.storage.read(ColumnMetadata, key.Bytes())
	if err != nil || raw == nil {
		return nil, err
	}
	md, err := types.DecodeFileMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fm.ErrFailedToParseFileMetadata, key.Hex(), err)
	}
	return md, nil
}

// open 读取元数据并在部分根上打开数据树
// 元数据存在而部分根指针缺失时panic
func (s *FileStorage) open(key types.FileKey) (*types.FileMetadata, *FileDataTrie, error) {
	md, err := s.GetMetadata(key)
	if err != nil {
		return nil, nil, err
	}
	if md == nil {
		return nil, nil, fmt.Errorf("%w: %s", fm.ErrFileDoesNotExist, key.Hex())
	}

	pointerKey := rootsKey(md, key)
	raw, err := s.storage.read(ColumnRoots, pointerKey)
	if err != nil {
		return nil, nil, err
	}
	if raw == nil {
		s.logger.Errorf("元数据存在但部分根指针缺失: file_key=%s", key.Hex())
		panic(fmt.Errorf("%w: file_key=%s", fm.ErrPairingInvariantViolated, key.Hex()))
	}
	root, err := types.HashFromBytes(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", fm.ErrFailedToParsePartialRoot, key.Hex(), err)
	}

	return md, newFileDataTrie(s.storage, root, pointerKey), nil
}

// InsertFile 以空数据树登记文件
// 元数据、部分根指针与存储桶索引在同一批量中写入，存储桶ID必须为32字节
func (s *FileStorage) InsertFile(key types.FileKey, metadata types.FileMetadata) error {
	return s.insert(key, metadata, nil)
}

// InsertFileWithData 以已有数据的数据树登记文件
//
// 分块被复制进一棵新数据树。节点按批量上限分批落盘，
// 新增节点全部落盘后，元数据、部分根指针与存储桶索引随提交点批量写入，此前失败不会登记文件；
// 传入的数据树保持独立，之后对它的修改不影响已登记的文件。
func (s *FileStorage) InsertFileWithData(key types.FileKey, metadata types.FileMetadata, fileData fm.FileDataTrie) error {
	return s.insert(key, metadata, fileData)
}

func (s *FileStorage) insert(key types.FileKey, metadata types.FileMetadata, fileData fm.FileDataTrie) error {
	if err := filedata.CheckBucketID(metadata.BucketID); err != nil {
		return err
	}
	s.releaseOrphans()

	existing, err := s.GetMetadata(key)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", fm.ErrFileAlreadyExists, key.Hex())
	}

	encoded, err := metadata.Encode()
	if err != nil {
		return fmt.Errorf("%w: %w", fm.ErrFailedToWriteToStorage, err)
	}

	t := newFileDataTrie(s.storage, filedata.EmptyRoot(), rootsKey(&metadata, key))
	if fileData != nil {
		v := t.writeView()
		if err := fileData.ForEachChunk(func(id types.ChunkID, data types.Chunk) error {
			return filedata.InsertChunk(v, id, data)
		}); err != nil {
			return err
		}
		t.staged = v.Root()
	}

	if err := t.commit(func(tx *storage.DBTransaction) {
		tx.Put(ColumnMetadata, key.Bytes(), encoded)
		tx.Put(ColumnBucketPrefix, types.BucketPrefixKey(metadata.BucketID, key), []byte{})
	}); err != nil {
		s.adopt(t)
		return err
	}

	s.logger.Debugf("登记文件: file_key=%s size=%d root=%s", key.Hex(), metadata.FileSize, t.GetRoot().Hex())
	return nil
}

// StoredChunksCount 文件已存储分块数
func (s *FileStorage) StoredChunksCount(key types.FileKey) (uint64, error) {
	_, t, err := s.open(key)
	if err != nil {
		return 0, err
	}
	return t.StoredChunksCount()
}

// GetChunk 读取文件分块
func (s *FileStorage) GetChunk(key types.FileKey, chunkID types.ChunkID) (types.Chunk, error) {
	_, t, err := s.open(key)
	if err != nil {
		return nil, err
	}
	return t.GetChunk(chunkID)
}

// WriteChunk 写入文件分块，单个分块的节点与部分根指针在同一批量中提交
func (s *FileStorage) WriteChunk(key types.FileKey, chunkID types.ChunkID, data types.Chunk) (fm.WriteOutcome, error) {
	md, t, err := s.open(key)
	if err != nil {
		return fm.FileIncomplete, err
	}
	if err := t.WriteChunk(chunkID, data); err != nil {
		s.adopt(t)
		return fm.FileIncomplete, err
	}
	return filedata.Completeness(s.logger, key, md, t)
}

// GenerateProof 先校验完整性与指纹一致性，再生成文件级证明
func (s *FileStorage) GenerateProof(key types.FileKey, chunkIDs []types.ChunkID) (*types.FileKeyProof, error) {
	md, t, err := s.open(key)
	if err != nil {
		return nil, err
	}
	if err := filedata.CheckProvable(s.logger, key, md, t); err != nil {
		return nil, err
	}

	proof, err := t.GenerateProof(chunkIDs)
	if err != nil {
		return nil, err
	}
	return proof.ToFileKeyProof(*md), nil
}

// DeleteFile 删除数据树节点、元数据、部分根指针与存储桶索引项
//
// 元数据、指针与索引项和第一批节点扣减一起写入，该批量失败时文件保持完整；
// 其后的节点扣减批量失败时文件已删除，剩余扣减留待之后的写操作释放。
// 键不存在时直接返回。
func (s *FileStorage) DeleteFile(key types.FileKey) error {
	s.releaseOrphans()

	md, t, err := s.open(key)
	if err != nil {
		if errors.Is(err, fm.ErrFileDoesNotExist) {
			return nil
		}
		return err
	}

	if err := t.stageDelete(); err != nil {
		return err
	}
	pointerKey := t.pointerKey
	t.pointerKey = nil

	if err := t.commit(func(tx *storage.DBTransaction) {
		tx.Delete(ColumnMetadata, key.Bytes())
		tx.Delete(ColumnRoots, pointerKey)
		tx.Delete(ColumnBucketPrefix, types.BucketPrefixKey(md.BucketID, key))
	}); err != nil {
		s.adopt(t)
		return err
	}

	s.logger.Debugf("删除文件: file_key=%s", key.Hex())
	return nil
}

// DeleteFilesWithPrefix 删除存储桶下的全部文件
//
// 执行流程：
//  1. 在存储桶索引列上按定长 bucket_id 前缀收集组合键
//  2. 逐个删除对应文件；索引项指向的元数据已不存在时只清理索引项
func (s *FileStorage) DeleteFilesWithPrefix(bucketID []byte) error {
	if err := filedata.CheckBucketID(bucketID); err != nil {
		return err
	}

	// 1. 收集
	var composites [][]byte
	if err := s.storage.iterPrefix(ColumnBucketPrefix, bucketID, func(k, _ []byte) error {
		composites = append(composites, append([]byte(nil), k...))
		return nil
	}); err != nil {
		return err
	}

	// 2. 删除
	for _, composite := range composites {
		if len(composite) != 2*constants.HLength {
			return fmt.Errorf("%w: 组合键长度%d", fm.ErrFailedToParseKey, len(composite))
		}
		key, err := types.HashFromBytes(composite[len(composite)-constants.HLength:])
		if err != nil {
			return fmt.Errorf("%w: %w", fm.ErrFailedToHasherOutput, err)
		}

		md, err := s.GetMetadata(key)
		if err != nil {
			return err
		}
		if md == nil {
			s.logger.Warnf("存储桶索引项指向不存在的文件，清理索引: file_key=%s", key.Hex())
			tx := storage.NewDBTransaction()
			tx.Delete(ColumnBucketPrefix, composite)
			if err := s.storage.write(tx); err != nil {
				return err
			}
			continue
		}
		if err := s.DeleteFile(key); err != nil {
			return err
		}
	}
	return nil
}

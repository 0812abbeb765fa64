package persistent

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	badgerconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/badger"
	memoryconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/memory"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/testutil"
	badgerstore "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage/badger"
	memorystore "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage/memory"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

func newTestStorage(t *testing.T, db storage.KeyValueDB) *FileStorage {
	t.Helper()
	logger, _ := testutil.NewObservedLogger()
	s, err := NewFileStorage(db, nil, logger)
	require.NoError(t, err)
	return s
}

// writeAll 按序写入全部分块，返回最后一次写入的结果
func writeAll(t *testing.T, s fm.FileStorage, key types.FileKey, chunks []types.Chunk) fm.WriteOutcome {
	t.Helper()
	var outcome fm.WriteOutcome
	for i, c := range chunks {
		var err error
		outcome, err = s.WriteChunk(key, types.ChunkID(i), c)
		require.NoError(t, err)
	}
	return outcome
}

// countColumn 统计某列的键数
func countColumn(t *testing.T, db storage.KeyValueDB, col storage.Column) int {
	t.Helper()
	n := 0
	require.NoError(t, db.IterWithPrefix(col, nil, func(_, _ []byte) error {
		n++
		return nil
	}))
	return n
}

func TestNewFileStorage_NilDB(t *testing.T) {
	_, err := NewFileStorage(nil, nil, nil)

	assert.ErrorIs(t, err, ErrNilKeyValueDB)
}

func TestFileStorage_ThreeChunkScenario(t *testing.T) {
	// Arrange
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	chunks := testutil.Chunks(3)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.NoError(t, s.InsertFile(key, md))

	// Act & Assert
	for i, c := range chunks {
		outcome, err := s.WriteChunk(key, types.ChunkID(i), c)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, fm.FileIncomplete, outcome)
		} else {
			assert.Equal(t, fm.FileComplete, outcome)
		}
	}

	got, err := s.GetMetadata(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, md.Fingerprint, got.Fingerprint)
	assert.Equal(t, md.FileSize, got.FileSize)

	proof, err := s.GenerateProof(key, []types.ChunkID{0, 1, 2})
	require.NoError(t, err)
	proven, err := filedata.ProvenChunks(nil, proof.FileProof())
	require.NoError(t, err)
	require.Len(t, proven, 3)
	for i, c := range proven {
		assert.Equal(t, chunks[i], c.Data)
	}

	require.NoError(t, s.DeleteFile(key))
	got, err = s.GetMetadata(key)
	require.NoError(t, err)
	assert.Nil(t, got)
	_, err = s.GetChunk(key, 0)
	assert.ErrorIs(t, err, fm.ErrFileDoesNotExist)
	assert.Zero(t, countColumn(t, db, ColumnChunks), "删除唯一的文件后不应残留节点")
	assert.Zero(t, countColumn(t, db, ColumnRoots))
	assert.Zero(t, countColumn(t, db, ColumnBucketPrefix))
}

func TestFileStorage_InsertFile_WritesIndexAndPointer(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	md, key := testutil.File(t, testutil.Bucket(1), testutil.Chunks(2))

	require.NoError(t, s.InsertFile(key, md))

	pointer, err := db.Get(ColumnRoots, rootsKey(&md, key))
	require.NoError(t, err)
	assert.Equal(t, filedata.EmptyRoot().Bytes(), pointer, "新登记的文件指向规范空树")
	marker, err := db.Get(ColumnBucketPrefix, types.BucketPrefixKey(md.BucketID, key))
	require.NoError(t, err)
	assert.NotNil(t, marker)
	assert.ErrorIs(t, s.InsertFile(key, md), fm.ErrFileAlreadyExists)
}

func TestFileStorage_DuplicateChunk(t *testing.T) {
	s := newTestStorage(t, testutil.NewBadgerKV(t))
	chunks := testutil.Chunks(2)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.NoError(t, s.InsertFile(key, md))
	_, err := s.WriteChunk(key, 0, chunks[0])
	require.NoError(t, err)

	_, err = s.WriteChunk(key, 0, chunks[1])

	assert.ErrorIs(t, err, fm.ErrFileChunkAlreadyExists)
	got, err := s.GetChunk(key, 0)
	require.NoError(t, err)
	assert.Equal(t, chunks[0], got, "原有分块不变")
}

func TestFileStorage_SharedContentSurvivesDelete(t *testing.T) {
	// Arrange: 两个存储桶下内容完全相同的文件
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	chunks := testutil.Chunks(3)
	mdA, keyA := testutil.File(t, testutil.Bucket(1), chunks)
	mdB, keyB := testutil.File(t, testutil.Bucket(2), chunks)
	require.Equal(t, mdA.Fingerprint, mdB.Fingerprint)
	require.NotEqual(t, keyA, keyB)
	require.NoError(t, s.InsertFile(keyA, mdA))
	require.NoError(t, s.InsertFile(keyB, mdB))
	require.Equal(t, fm.FileComplete, writeAll(t, s, keyA, chunks))
	require.Equal(t, fm.FileComplete, writeAll(t, s, keyB, chunks))
	nodes := countColumn(t, db, ColumnChunks)

	// Act
	require.NoError(t, s.DeleteFilesWithPrefix(testutil.Bucket(1)))

	// Assert
	assert.Equal(t, nodes, countColumn(t, db, ColumnChunks), "共享节点只减少引用计数")
	for i, c := range chunks {
		got, err := s.GetChunk(keyB, types.ChunkID(i))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := s.GenerateProof(keyB, []types.ChunkID{0, 2})
	assert.NoError(t, err)
	md, err := s.GetMetadata(keyA)
	require.NoError(t, err)
	assert.Nil(t, md)

	require.NoError(t, s.DeleteFile(keyB))
	assert.Zero(t, countColumn(t, db, ColumnChunks), "最后一个引用删除后节点被物理移除")
}

func TestFileStorage_FingerprintMismatch(t *testing.T) {
	logger, logs := testutil.NewObservedLogger()
	s, err := NewFileStorage(testutil.NewBadgerKV(t), nil, logger)
	require.NoError(t, err)
	chunks := testutil.Chunks(2)
	md, _ := testutil.File(t, testutil.Bucket(1), chunks)
	md.Fingerprint = testutil.Fingerprint(t, testutil.Chunks(3)[1:])
	key, err := md.FileKey()
	require.NoError(t, err)
	require.NoError(t, s.InsertFile(key, md))

	_, err = s.WriteChunk(key, 0, chunks[0])
	require.NoError(t, err)
	outcome, err := s.WriteChunk(key, 1, chunks[1])

	assert.ErrorIs(t, err, fm.ErrFingerprintAndStoredFileMismatch)
	assert.Equal(t, fm.FileIncomplete, outcome)
	n, err := s.StoredChunksCount(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n, "分块已落盘")
	assert.NotEmpty(t, testutil.ErrorLogs(logs))
}

func TestFileStorage_InsertFileWithData(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	chunks := testutil.Chunks(3)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	data := s.NewFileDataTrie()
	for i, c := range chunks {
		require.NoError(t, data.WriteChunk(types.ChunkID(i), c))
	}

	require.NoError(t, s.InsertFileWithData(key, md, data))

	n, err := s.StoredChunksCount(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	_, err = s.GenerateProof(key, []types.ChunkID{1})
	assert.NoError(t, err)

	// 独立数据树与登记的文件互不影响
	require.NoError(t, data.Delete())
	got, err := s.GetChunk(key, 2)
	require.NoError(t, err)
	assert.Equal(t, chunks[2], got)
}

func TestFileStorage_WriteFailure_IsRetryable(t *testing.T) {
	// Arrange
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	s := newTestStorage(t, kv)
	chunks := testutil.Chunks(2)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.NoError(t, s.InsertFile(key, md))

	// Act: 批量写入失败
	kv.FailWrites.Store(true)
	_, err := s.WriteChunk(key, 0, chunks[0])

	// Assert
	require.Error(t, err)
	assert.True(t, fm.IsRetryable(err), "存储写失败可以重试")
	assert.ErrorIs(t, err, fm.ErrFailedToPersistChanges)
	kv.FailWrites.Store(false)
	n, err := s.StoredChunksCount(key)
	require.NoError(t, err)
	assert.Zero(t, n, "失败的写入没有留下任何痕迹")

	// 重试相同的写入
	outcome, err := s.WriteChunk(key, 0, chunks[0])
	require.NoError(t, err)
	assert.Equal(t, fm.FileIncomplete, outcome)
	outcome, err = s.WriteChunk(key, 1, chunks[1])
	require.NoError(t, err)
	assert.Equal(t, fm.FileComplete, outcome)
}

func TestFileStorage_ReadFailure_IsRetryable(t *testing.T) {
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	s := newTestStorage(t, kv)
	md, key := testutil.File(t, testutil.Bucket(1), testutil.Chunks(1))
	require.NoError(t, s.InsertFile(key, md))

	kv.FailReads.Store(true)
	_, err := s.GetMetadata(key)

	assert.ErrorIs(t, err, fm.ErrFailedToReadStorage)
	assert.True(t, fm.IsRetryable(err))
	assert.ErrorIs(t, s.DeleteFilesWithPrefix(md.BucketID), fm.ErrFailedToReadStorage)
}

func TestFileStorage_DeleteFailure_LeavesFileIntact(t *testing.T) {
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	s := newTestStorage(t, kv)
	chunks := testutil.Chunks(2)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.NoError(t, s.InsertFile(key, md))
	writeAll(t, s, key, chunks)

	kv.FailWrites.Store(true)
	require.Error(t, s.DeleteFile(key))
	kv.FailWrites.Store(false)

	_, err := s.GenerateProof(key, []types.ChunkID{0, 1})
	assert.NoError(t, err, "删除失败时文件保持完整")
	require.NoError(t, s.DeleteFile(key))
	assert.NoError(t, s.DeleteFile(key), "重复删除直接返回")
}

func TestFileDataTrie_CommitRetry(t *testing.T) {
	// Arrange: 不登记到注册表的独立数据树
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	logger, logs := testutil.NewObservedLogger()
	sdb, err := NewStorageDB(kv, nil, logger)
	require.NoError(t, err)
	tr := NewFileDataTrie(sdb)
	chunk := testutil.Chunk(7)

	// Act: 写入时提交失败
	kv.FailWrites.Store(true)
	err = tr.WriteChunk(0, chunk)

	// Assert: 已提交的根不变，写缓冲保留
	require.ErrorIs(t, err, fm.ErrFailedToPersistChanges)
	assert.Equal(t, filedata.EmptyRoot(), tr.GetRoot())
	assert.True(t, tr.HasPendingChanges())
	_, err = tr.GetChunk(0)
	assert.ErrorIs(t, err, fm.ErrFileChunkDoesNotExist)
	assert.NotEmpty(t, testutil.ErrorLogs(logs))

	kv.FailWrites.Store(false)
	require.NoError(t, tr.Commit())
	assert.False(t, tr.HasPendingChanges())
	assert.Equal(t, testutil.Fingerprint(t, []types.Chunk{chunk}), tr.GetRoot())
	got, err := tr.GetChunk(0)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
	writes := kv.Writes.Load()
	require.NoError(t, tr.Commit(), "没有待提交内容时直接返回")
	assert.Equal(t, writes, kv.Writes.Load())
}

func TestFileDataTrie_Delete(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	logger, _ := testutil.NewObservedLogger()
	sdb, err := NewStorageDB(db, nil, logger)
	require.NoError(t, err)
	tr := NewFileDataTrie(sdb)
	for i, c := range testutil.Chunks(4) {
		require.NoError(t, tr.WriteChunk(types.ChunkID(i), c))
	}
	require.NotZero(t, countColumn(t, db, ColumnChunks))

	require.NoError(t, tr.Delete())

	assert.Equal(t, filedata.EmptyRoot(), tr.GetRoot())
	assert.Zero(t, countColumn(t, db, ColumnChunks))
}

func TestFileStorage_MissingPointerPanics(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	logger, logs := testutil.NewObservedLogger()
	s, err := NewFileStorage(db, nil, logger)
	require.NoError(t, err)
	md, key := testutil.File(t, testutil.Bucket(1), testutil.Chunks(1))
	require.NoError(t, s.InsertFile(key, md))
	require.NoError(t, db.Delete(ColumnRoots, rootsKey(&md, key)))

	assert.Panics(t, func() { _, _ = s.StoredChunksCount(key) })
	assert.NotEmpty(t, testutil.ErrorLogs(logs))
}

func TestFileStorage_CorruptMetadata(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	key := types.FileKey{0x01}
	require.NoError(t, db.Put(ColumnMetadata, key.Bytes(), []byte{0xff, 0x00}))

	_, err := s.GetMetadata(key)

	assert.ErrorIs(t, err, fm.ErrFailedToParseFileMetadata)
	assert.True(t, fm.IsCorruption(err))
}

func TestFileStorage_DeleteFilesWithPrefix_CleansStaleIndex(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	stale := types.FileKey{0x42}
	require.NoError(t, db.Put(ColumnBucketPrefix, types.BucketPrefixKey(testutil.Bucket(1), stale), []byte{}))

	require.NoError(t, s.DeleteFilesWithPrefix(testutil.Bucket(1)))

	assert.Zero(t, countColumn(t, db, ColumnBucketPrefix))
}

func TestFileStorage_PersistsAcrossReopen(t *testing.T) {
	cfg := badgerconfig.New(nil)
	cfg.GetOptions().Path = t.TempDir()
	cfg.GetOptions().ValueLogFileSize = 16 << 20
	chunks := testutil.Chunks(3)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)

	db, err := badgerstore.New(cfg, nil)
	require.NoError(t, err)
	s := newTestStorage(t, db)
	require.NoError(t, s.InsertFile(key, md))
	writeAll(t, s, key, chunks[:2])
	require.NoError(t, db.Close())

	reopened, err := badgerstore.New(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()
	s = newTestStorage(t, reopened)

	n, err := s.StoredChunksCount(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	outcome, err := s.WriteChunk(key, 2, chunks[2])
	require.NoError(t, err)
	assert.Equal(t, fm.FileComplete, outcome, "重启后可以继续写入")
}

func TestFileStorage_WithNodeCache(t *testing.T) {
	cache, err := memorystore.New(memoryconfig.New(nil), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	logger, _ := testutil.NewObservedLogger()
	s, err := NewFileStorage(testutil.NewBadgerKV(t), cache, logger)
	require.NoError(t, err)
	chunks := testutil.Chunks(3)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.NoError(t, s.InsertFile(key, md))
	writeAll(t, s, key, chunks)

	_, err = s.GenerateProof(key, []types.ChunkID{0, 1, 2})
	require.NoError(t, err)

	assert.Positive(t, cache.Len(), "读取过的节点进入缓存")
	require.NoError(t, s.DeleteFile(key))
	assert.Zero(t, cache.Len(), "物理删除的节点移出缓存")
}

// newLimitedStorage 在批量上限较小的存储上创建注册表
func newLimitedStorage(t *testing.T, limit uint64) (*testutil.FailingKV, *FileStorage) {
	t.Helper()
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	kv.BatchLimit = limit
	return kv, newTestStorage(t, kv)
}

// stage 把分块写入一棵独立的暂存数据树
func stage(t *testing.T, s *FileStorage, chunks []types.Chunk) fm.FileDataTrie {
	t.Helper()
	data := s.NewFileDataTrie()
	for i, c := range chunks {
		require.NoError(t, data.WriteChunk(types.ChunkID(i), c))
	}
	return data
}

func TestFileStorage_InsertFileWithData_LargerThanOneBatch(t *testing.T) {
	// Arrange: 超过10MB的文件，暂存树与登记的文件都在同一个BadgerDB中
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	s := newTestStorage(t, kv)
	chunks := testutil.UniqueChunks(12000)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.Greater(t, md.FileSize, uint64(10<<20))
	data := stage(t, s, chunks)
	writes := kv.Writes.Load()

	// Act
	err := s.InsertFileWithData(key, md, data)

	// Assert
	require.NoError(t, err, "大文件登记不应触发批量超限")
	assert.Greater(t, kv.Writes.Load()-writes, int64(1), "节点被拆成多个批量")
	n, err := s.StoredChunksCount(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(12000), n)
	got, err := s.GetChunk(key, 11999)
	require.NoError(t, err)
	assert.Equal(t, chunks[11999], got)
	_, err = s.GenerateProof(key, []types.ChunkID{0, 6000, 11999})
	assert.NoError(t, err)

	require.NoError(t, s.DeleteFile(key), "大文件删除同样分批")
	require.NoError(t, data.Delete())
	assert.Zero(t, countColumn(t, kv, ColumnChunks), "全部节点被释放")
	assert.Zero(t, countColumn(t, kv, ColumnMetadata))
	assert.Zero(t, countColumn(t, kv, ColumnRoots))
	assert.Zero(t, countColumn(t, kv, ColumnBucketPrefix))
}

func TestFileStorage_SmallBatchLimit_SplitsCommit(t *testing.T) {
	kv, s := newLimitedStorage(t, 8<<10)
	chunks := testutil.UniqueChunks(20)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	data := stage(t, s, chunks)
	writes := kv.Writes.Load()

	require.NoError(t, s.InsertFileWithData(key, md, data))

	assert.Greater(t, kv.Writes.Load()-writes, int64(2))
	_, err := s.GenerateProof(key, []types.ChunkID{0, 19})
	assert.NoError(t, err)
}

func TestFileStorage_InsertFailsMidway_ReleasesFlushedNodes(t *testing.T) {
	// Arrange
	kv, s := newLimitedStorage(t, 8<<10)
	chunks := testutil.UniqueChunks(20)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	data := stage(t, s, chunks)

	// Act: 第一个节点批量成功，第二个失败
	kv.FailWritesAfter(1)
	err := s.InsertFileWithData(key, md, data)
	kv.FailWritesAfter(-1)

	// Assert: 文件未登记
	require.ErrorIs(t, err, fm.ErrFailedToPersistChanges)
	assert.True(t, fm.IsRetryable(err))
	got, err := s.GetMetadata(key)
	require.NoError(t, err)
	assert.Nil(t, got, "提交点之前失败不登记文件")
	assert.Zero(t, countColumn(t, kv, ColumnRoots))
	assert.Zero(t, countColumn(t, kv, ColumnBucketPrefix))
	require.Len(t, s.orphans, 1, "已落盘的计数增量等待释放")

	// 下一次写操作先释放遗留的计数
	require.NoError(t, s.InsertFileWithData(key, md, data))
	assert.Empty(t, s.orphans)
	require.NoError(t, s.DeleteFile(key))
	require.NoError(t, data.Delete())
	assert.Zero(t, countColumn(t, kv, ColumnChunks), "引用计数与失败前一致")
}

func TestFileStorage_DeleteFailsAfterCommitPoint(t *testing.T) {
	// Arrange
	logger, logs := testutil.NewObservedLogger()
	kv := testutil.NewFailingKV(testutil.NewBadgerKV(t))
	kv.BatchLimit = 8 << 10
	s, err := NewFileStorage(kv, nil, logger)
	require.NoError(t, err)
	chunks := testutil.UniqueChunks(200)
	md, key := testutil.File(t, testutil.Bucket(1), chunks)
	require.NoError(t, s.InsertFile(key, md))
	writeAll(t, s, key, chunks)

	// Act: 提交点批量成功，之后的扣减批量失败
	kv.FailWritesAfter(1)
	err = s.DeleteFile(key)
	kv.FailWritesAfter(-1)

	// Assert
	require.ErrorIs(t, err, fm.ErrFailedToPersistChanges)
	got, err := s.GetMetadata(key)
	require.NoError(t, err)
	assert.Nil(t, got, "提交点之后文件已删除")
	assert.Zero(t, countColumn(t, kv, ColumnRoots))
	assert.NotZero(t, countColumn(t, kv, ColumnChunks), "剩余节点尚未释放")
	assert.NotEmpty(t, testutil.ErrorLogs(logs))

	require.NoError(t, s.DeleteFile(key), "文件已不存在，顺带释放剩余节点")
	assert.Zero(t, countColumn(t, kv, ColumnChunks))
	assert.Empty(t, s.orphans)
}

func TestFileStorage_RejectsShortBucketID(t *testing.T) {
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	chunks := testutil.Chunks(2)
	md, key := testutil.File(t, []byte{0x01}, chunks)

	assert.ErrorIs(t, s.InsertFile(key, md), fm.ErrInvalidBucketID)
	assert.ErrorIs(t, s.InsertFileWithData(key, md, stage(t, s, chunks)), fm.ErrInvalidBucketID)
	assert.ErrorIs(t, s.DeleteFilesWithPrefix([]byte{0x01}), fm.ErrInvalidBucketID)
	assert.ErrorIs(t, s.DeleteFilesWithPrefix(nil), fm.ErrInvalidBucketID, "空ID会匹配全部存储桶")
	assert.Zero(t, countColumn(t, db, ColumnMetadata))
}

func TestFileStorage_DeleteFilesWithPrefix_KeepsNeighbourBucket(t *testing.T) {
	// Arrange: 两个存储桶ID只差最后一个字节
	db := testutil.NewBadgerKV(t)
	s := newTestStorage(t, db)
	bucketA := testutil.Bucket(1)
	bucketB := append(bytes.Repeat([]byte{0x01}, 31), 0x02)
	mdA, keyA := testutil.File(t, bucketA, testutil.Chunks(1))
	mdB, keyB := testutil.File(t, bucketB, testutil.Chunks(2))
	require.NoError(t, s.InsertFile(keyA, mdA))
	require.NoError(t, s.InsertFile(keyB, mdB))

	// Act
	require.NoError(t, s.DeleteFilesWithPrefix(bucketA))

	// Assert
	got, err := s.GetMetadata(keyA)
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = s.GetMetadata(keyB)
	require.NoError(t, err)
	assert.NotNil(t, got, "相邻存储桶的文件保留")
}

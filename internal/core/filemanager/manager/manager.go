// Package manager 提供文件注册表的并发安全门面
//
// 🎯 **核心职责**
// - 按注册表实例持有读写锁：读操作并发，写操作独占
// - 记录操作耗时与结果的 Prometheus 指标
// - 文件完整与文件删除时在事件总线上发布 types.FileEvent
// - 作为 metrics.MemoryReporter 上报注册表规模
//
// ⚠️ 元数据与数据树不成对时底层注册表会panic，门面不做恢复，锁在 defer 中释放。
package manager

import (
	"sync"
	"time"

	logimpl "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/event"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/metrics"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// ModuleName 上报内存统计时使用的模块名
const ModuleName = "filemanager"

// 确保Manager实现了文件注册表与内存上报接口
var (
	_ fm.FileStorage         = (*Manager)(nil)
	_ metrics.MemoryReporter = (*Manager)(nil)
)

// statsReporter 能上报规模的后端（内存后端）
type statsReporter interface {
	Stats() (files int, nodes int)
}

// Manager 文件注册表门面
type Manager struct {
	mu      sync.RWMutex
	storage fm.FileStorage
	bus     event.EventBus
	logger  log.Logger
	backend string
}

// New 创建注册表门面
//
// 参数：
//   - storage: 底层注册表（内存或持久化后端）
//   - bus: 事件总线，可以为 nil
//   - logger: 日志记录器，为 nil 时不输出
//   - backend: 后端名称，仅用于日志与内存上报
func New(storage fm.FileStorage, bus event.EventBus, logger log.Logger, backend string) *Manager {
	if logger == nil {
		logger = logimpl.NewNop()
	}
	return &Manager{
		storage: storage,
		bus:     bus,
		logger:  logger.With("module", ModuleName, "backend", backend),
		backend: backend,
	}
}

// NewFileDataTrie 创建与后端一致的独立数据树
// 返回的数据树与注册表共用同一把锁
func (m *Manager) NewFileDataTrie() fm.FileDataTrie {
	return &lockedTrie{inner: m.storage.NewFileDataTrie(), mu: &m.mu}
}

// GetMetadata 读取元数据
func (m *Manager) GetMetadata(key types.FileKey) (md *types.FileMetadata, err error) {
	start := time.Now()
	defer func() { observe("get_metadata", start, err) }()
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.storage.GetMetadata(key)
}

// InsertFile 以空数据树登记文件
func (m *Manager) InsertFile(key types.FileKey, metadata types.FileMetadata) (err error) {
	start := time.Now()
	defer func() { observe("insert_file", start, err) }()
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.storage.InsertFile(key, metadata)
}

// InsertFileWithData 以已有数据的数据树登记文件
// 数据树已包含全部分块且树根等于指纹时同样发布 EventTypeFileComplete
func (m *Manager) InsertFileWithData(key types.FileKey, metadata types.FileMetadata, fileData fm.FileDataTrie) (err error) {
	start := time.Now()
	defer func() { observe("insert_file_with_data", start, err) }()
	if locked, ok := fileData.(*lockedTrie); ok {
		fileData = locked.inner
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err = m.storage.InsertFileWithData(key, metadata, fileData); err != nil {
		return err
	}
	if fileData.GetRoot() != metadata.Fingerprint {
		return nil
	}
	n, err := fileData.StoredChunksCount()
	if err != nil {
		return err
	}
	if n == metadata.ChunksCount() {
		m.completed(key, &metadata)
	}
	return nil
}

// StoredChunksCount 文件已存储分块数
func (m *Manager) StoredChunksCount(key types.FileKey) (n uint64, err error) {
	start := time.Now()
	defer func() { observe("stored_chunks_count", start, err) }()
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.storage.StoredChunksCount(key)
}

// GetChunk 读取文件分块
func (m *Manager) GetChunk(key types.FileKey, chunkID types.ChunkID) (chunk types.Chunk, err error) {
	start := time.Now()
	defer func() { observe("get_chunk", start, err) }()
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.storage.GetChunk(key, chunkID)
}

// WriteChunk 写入文件分块，文件进入完整状态时发布 EventTypeFileComplete
func (m *Manager) WriteChunk(key types.FileKey, chunkID types.ChunkID, data types.Chunk) (outcome fm.WriteOutcome, err error) {
	start := time.Now()
	defer func() { observe("write_chunk", start, err) }()
	m.mu.Lock()
	defer m.mu.Unlock()

	outcome, err = m.storage.WriteChunk(key, chunkID, data)
	if err == nil || fm.IsCritical(err) {
		chunkBytesWritten.Add(float64(len(data)))
	}
	if err != nil {
		m.reportCritical("write_chunk", key, err)
		return outcome, err
	}
	if outcome != fm.FileComplete {
		return outcome, nil
	}

	md, err := m.storage.GetMetadata(key)
	if err != nil {
		return outcome, err
	}
	if md != nil {
		m.completed(key, md)
	}
	return outcome, nil
}

func (m *Manager) completed(key types.FileKey, md *types.FileMetadata) {
	filesCompleted.Inc()
	m.logger.Infof("文件已完整: file_key=%s size=%d", key.Hex(), md.FileSize)
	m.publish(types.EventTypeFileComplete, key, md)
}

// GenerateProof 生成文件级证明
func (m *Manager) GenerateProof(key types.FileKey, chunkIDs []types.ChunkID) (proof *types.FileKeyProof, err error) {
	start := time.Now()
	defer func() { observe("generate_proof", start, err) }()
	m.mu.RLock()
	defer m.mu.RUnlock()

	proof, err = m.storage.GenerateProof(key, chunkIDs)
	if err != nil {
		m.reportCritical("generate_proof", key, err)
	}
	return proof, err
}

// DeleteFile 删除文件，文件存在时发布 EventTypeFileDeleted
func (m *Manager) DeleteFile(key types.FileKey) (err error) {
	start := time.Now()
	defer func() { observe("delete_file", start, err) }()
	m.mu.Lock()
	defer m.mu.Unlock()

	md, err := m.storage.GetMetadata(key)
	if err != nil {
		return err
	}
	if err = m.storage.DeleteFile(key); err != nil {
		return err
	}
	if md != nil {
		m.publish(types.EventTypeFileDeleted, key, md)
	}
	return nil
}

// DeleteFilesWithPrefix 删除存储桶下的全部文件
func (m *Manager) DeleteFilesWithPrefix(bucketID []byte) (err error) {
	start := time.Now()
	defer func() { observe("delete_files_with_prefix", start, err) }()
	m.mu.Lock()
	defer m.mu.Unlock()

	if err = m.storage.DeleteFilesWithPrefix(bucketID); err != nil {
		m.logger.Warnf("删除存储桶文件失败: bucket=%x err=%v", bucketID, err)
		return err
	}
	m.logger.Infof("已删除存储桶文件: bucket=%x", bucketID)
	return nil
}

func (m *Manager) publish(eventType types.EventType, key types.FileKey, md *types.FileMetadata) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(eventType, &types.FileEvent{
		FileKey:     key,
		BucketID:    md.BucketID,
		Fingerprint: md.Fingerprint,
		FileSize:    md.FileSize,
	})
}

func (m *Manager) reportCritical(op string, key types.FileKey, err error) {
	if !fm.IsCritical(err) {
		return
	}
	criticalErrors.Inc()
	m.logger.Errorf("%s 发现严重错误: file_key=%s err=%v", op, key.Hex(), err)
}

// ModuleName 实现 metrics.MemoryReporter
func (m *Manager) ModuleName() string {
	return ModuleName
}

// CollectMemoryStats 实现 metrics.MemoryReporter
// 只有内存后端能给出规模，持久化后端的数据在磁盘上
func (m *Manager) CollectMemoryStats() metrics.ModuleMemoryStats {
	stats := metrics.ModuleMemoryStats{Module: ModuleName, Layer: "core"}

	r, ok := m.storage.(statsReporter)
	if !ok {
		return stats
	}
	m.mu.RLock()
	files, nodes := r.Stats()
	m.mu.RUnlock()

	stats.Objects = int64(files)
	stats.CacheItems = int64(nodes)
	stats.ApproxBytes = int64(nodes) * int64(constants.FileChunkSize)
	return stats
}

// Package badger 提供基于BadgerDB的列式键值存储实现
//
// 🎯 **核心职责**
// - 在单个BadgerDB实例上模拟多列：每个键前置一字节列编号，列之间键空间互不重叠
// - Write 在一个BadgerDB读写事务中应用全部操作，提交成功才对读取可见
// - 可选snappy压缩存储值，对调用方透明
package badger

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/golang/snappy"
	badgerconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/badger"
	logimpl "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/log"
	log "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	interfaces "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

// 确保Store实现了KeyValueDB与BatchLimiter接口
var (
	_ interfaces.KeyValueDB   = (*Store)(nil)
	_ interfaces.BatchLimiter = (*Store)(nil)
)

// Store 实现KeyValueDB接口
type Store struct {
	db       *badgerdb.DB
	config   *badgerconfig.Config
	logger   log.Logger
	compress bool

	// Close 过程中拒绝新的写入，并等待进行中的写入完成
	closing int32
	writeWg sync.WaitGroup
}

// New 创建新的BadgerDB列式存储
func New(config *badgerconfig.Config, logger log.Logger) (*Store, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if logger == nil {
		logger = logimpl.NewNop()
	}

	var opts badgerdb.Options
	if config.IsInMemory() {
		logger.Info("初始化内存BadgerDB存储")
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := config.GetPath()
		if dataDir == "" {
			return nil, ErrEmptyPath
		}
		logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		opts.ValueLogFileSize = config.GetValueLogFileSize()
	}

	opts.MemTableSize = config.GetMemTableSize()
	opts.BlockCacheSize = config.GetBlockCacheSize()
	opts.IndexCacheSize = config.GetIndexCacheSize()
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		logger.Errorf("无法打开BadgerDB: %v", err)
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}

	logger.Info("BadgerDB存储初始化完成")
	return &Store{
		db:       db,
		config:   config,
		logger:   logger,
		compress: config.IsValueCompressionEnabled(),
	}, nil
}

// NewInMemory 创建内存模式存储
func NewInMemory(logger log.Logger) (*Store, error) {
	return New(badgerconfig.NewInMemory(), logger)
}

// Close 关闭存储并释放资源
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}
	s.writeWg.Wait()

	if err := s.db.Close(); err != nil {
		s.logger.Errorf("关闭BadgerDB失败: %v", err)
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}
	s.logger.Info("BadgerDB存储已关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, ErrStoreClosing
	}
	s.writeWg.Add(1)
	// Add 之后再检查一次，避免与 Close 交错
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, ErrStoreClosing
	}
	return s.writeWg.Done, nil
}

// Get 获取指定列中的键值，不存在时返回 (nil, nil)
func (s *Store) Get(col interfaces.Column, key []byte) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(columnKey(col, key))
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger获取键失败: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return s.decodeValue(raw)
}

// Put 写入单个键值
func (s *Store) Put(col interfaces.Column, key, value []byte) error {
	tx := interfaces.NewDBTransaction()
	tx.Put(col, key, value)
	return s.Write(tx)
}

// Delete 删除单个键
func (s *Store) Delete(col interfaces.Column, key []byte) error {
	tx := interfaces.NewDBTransaction()
	tx.Delete(col, key)
	return s.Write(tx)
}

// IterWithPrefix 按键序遍历列中以prefix开头的键值
func (s *Store) IterWithPrefix(col interfaces.Column, prefix []byte, fn func(key, value []byte) error) error {
	fullPrefix := columnKey(col, prefix)

	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = fullPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(fullPrefix); it.ValidForPrefix(fullPrefix); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)

			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			v, err := s.decodeValue(raw)
			if err != nil {
				return err
			}
			if err := fn(k[1:], v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger前缀遍历失败: %w", err)
	}
	return nil
}

// Write 原子应用一组写操作
//
// 全部操作放在同一个BadgerDB事务中；估算大小超过上限时整批拒绝，不拆分。
func (s *Store) Write(tx *interfaces.DBTransaction) error {
	if tx == nil || tx.Len() == 0 {
		return nil
	}
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()

	est := NewTxSizeEstimator(s.config.GetMaxBatchBytes())
	for _, op := range tx.Ops {
		if op.Kind == interfaces.OpPut {
			est.AddWrite(len(op.Key)+1, len(op.Value))
		} else {
			est.AddDelete(len(op.Key) + 1)
		}
	}
	if est.IsOverLimit() {
		return fmt.Errorf("%w: 估算%d字节, 上限%d字节", ErrBatchTooLarge, est.GetCurrentSize(), est.GetMaxSize())
	}
	if est.IsNearLimit() {
		s.logger.Warnf("批量写入接近事务大小上限: %.1f%% (%d个操作)", est.GetUsagePercent(), tx.Len())
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	for _, op := range tx.Ops {
		k := columnKey(op.Column, op.Key)
		switch op.Kind {
		case interfaces.OpPut:
			if err := txn.Set(k, s.encodeValue(op.Value)); err != nil {
				return fmt.Errorf("事务写入失败: %w", err)
			}
		case interfaces.OpDelete:
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("事务删除失败: %w", err)
			}
		default:
			return fmt.Errorf("未知写操作类型: %d", op.Kind)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// MaxBatchBytes 单个批量的估算上限，Write 按同一估算规则拒绝超限批量
func (s *Store) MaxBatchBytes() uint64 {
	return NewTxSizeEstimator(s.config.GetMaxBatchBytes()).GetMaxSize()
}

func (s *Store) encodeValue(v []byte) []byte {
	if !s.compress {
		return v
	}
	return snappy.Encode(nil, v)
}

func (s *Store) decodeValue(raw []byte) ([]byte, error) {
	if !s.compress {
		return raw, nil
	}
	v, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	return v, nil
}

// columnKey 列编号 || 键
func columnKey(col interfaces.Column, key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, byte(col))
	return append(out, key...)
}

// badgerLogger 实现BadgerDB的日志接口
type badgerLogger struct {
	logger log.Logger
}

func newBadgerLogger(logger log.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.With("component", "badger")}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

package testutil

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	badgerstore "github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/storage/badger"
	storage "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

// ErrInjected 注入的存储故障
var ErrInjected = errors.New("injected storage failure")

// NewBadgerKV 创建内存模式BadgerDB存储，测试结束时关闭
func NewBadgerKV(t testing.TB) *badgerstore.Store {
	t.Helper()
	store, err := badgerstore.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// FailingKV 可按需注入读写故障的存储包装
type FailingKV struct {
	storage.KeyValueDB

	FailReads  atomic.Bool
	FailWrites atomic.Bool
	Writes     atomic.Int64

	// BatchLimit 非零时覆盖下层存储的批量上限
	BatchLimit uint64

	// failAt 为 0 时关闭，否则成功写入数达到 failAt-1 后批量写入失败
	failAt atomic.Int64
}

var _ storage.BatchLimiter = (*FailingKV)(nil)

// NewFailingKV 包装下层存储
func NewFailingKV(inner storage.KeyValueDB) *FailingKV {
	return &FailingKV{KeyValueDB: inner}
}

// FailWritesAfter 再成功写入n个批量后让批量写入失败，n<0时关闭
func (f *FailingKV) FailWritesAfter(n int64) {
	if n < 0 {
		f.failAt.Store(0)
		return
	}
	f.failAt.Store(f.Writes.Load() + n + 1)
}

// MaxBatchBytes 批量上限，优先使用 BatchLimit
func (f *FailingKV) MaxBatchBytes() uint64 {
	if f.BatchLimit > 0 {
		return f.BatchLimit
	}
	if l, ok := f.KeyValueDB.(storage.BatchLimiter); ok {
		return l.MaxBatchBytes()
	}
	return 0
}

// Get 读取
func (f *FailingKV) Get(col storage.Column, key []byte) ([]byte, error) {
	if f.FailReads.Load() {
		return nil, ErrInjected
	}
	return f.KeyValueDB.Get(col, key)
}

// IterWithPrefix 前缀遍历
func (f *FailingKV) IterWithPrefix(col storage.Column, prefix []byte, fn func(key, value []byte) error) error {
	if f.FailReads.Load() {
		return ErrInjected
	}
	return f.KeyValueDB.IterWithPrefix(col, prefix, fn)
}

// Write 原子批量
func (f *FailingKV) Write(tx *storage.DBTransaction) error {
	if f.FailWrites.Load() {
		return ErrInjected
	}
	if at := f.failAt.Load(); at > 0 && f.Writes.Load() >= at-1 {
		return ErrInjected
	}
	f.Writes.Add(1)
	return f.KeyValueDB.Write(tx)
}

// Put 单键写入
func (f *FailingKV) Put(col storage.Column, key, value []byte) error {
	if f.FailWrites.Load() {
		return ErrInjected
	}
	return f.KeyValueDB.Put(col, key, value)
}

// Delete 单键删除
func (f *FailingKV) Delete(col storage.Column, key []byte) error {
	if f.FailWrites.Load() {
		return ErrInjected
	}
	return f.KeyValueDB.Delete(col, key)
}

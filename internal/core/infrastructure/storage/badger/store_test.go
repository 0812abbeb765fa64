package badger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	badgerconfig "github.com/w3f-grants-archive/storage-hub/internal/config/storage/badger"
	interfaces "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/storage"
)

const (
	colA interfaces.Column = 0
	colB interfaces.Column = 1
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGet_MissingKey_ReturnsNil(t *testing.T) {
	store := newTestStore(t)

	v, err := store.Get(colA, []byte("missing"))

	require.NoError(t, err)
	assert.Nil(t, v, "不存在的键应返回nil")
}

func TestPutGetDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(colA, []byte("k"), []byte("v")))
	v, err := store.Get(colA, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, store.Delete(colA, []byte("k")))
	v, err = store.Get(colA, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestColumns_AreIsolated(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Put(colA, []byte("k"), []byte("a")))
	require.NoError(t, store.Put(colB, []byte("k"), []byte("b")))

	a, err := store.Get(colA, []byte("k"))
	require.NoError(t, err)
	b, err := store.Get(colB, []byte("k"))
	require.NoError(t, err)

	assert.Equal(t, []byte("a"), a)
	assert.Equal(t, []byte("b"), b, "不同列的同名键互不影响")
}

func TestIterWithPrefix_OrderedAndStripped(t *testing.T) {
	store := newTestStore(t)
	tx := interfaces.NewDBTransaction()
	tx.Put(colA, []byte("p2"), []byte("2"))
	tx.Put(colA, []byte("p1"), []byte("1"))
	tx.Put(colA, []byte("q1"), []byte("x"))
	tx.Put(colB, []byte("p3"), []byte("y"))
	require.NoError(t, store.Write(tx))

	var keys, values [][]byte
	err := store.IterWithPrefix(colA, []byte("p"), func(k, v []byte) error {
		keys = append(keys, k)
		values = append(values, v)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("p1"), []byte("p2")}, keys, "按键序返回且不含列前缀")
	assert.Equal(t, [][]byte{[]byte("1"), []byte("2")}, values)
}

func TestIterWithPrefix_CallbackErrorStops(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(colA, []byte("a1"), []byte("1")))
	require.NoError(t, store.Put(colA, []byte("a2"), []byte("2")))
	stop := errors.New("stop")

	calls := 0
	err := store.IterWithPrefix(colA, []byte("a"), func(_, _ []byte) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWrite_AppliesPutsAndDeletesTogether(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put(colA, []byte("old"), []byte("1")))

	tx := interfaces.NewDBTransaction()
	tx.Delete(colA, []byte("old"))
	tx.Put(colA, []byte("new"), []byte("2"))
	tx.Put(colB, []byte("other"), []byte("3"))
	require.NoError(t, store.Write(tx))

	old, err := store.Get(colA, []byte("old"))
	require.NoError(t, err)
	assert.Nil(t, old)
	nv, err := store.Get(colA, []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), nv)
	other, err := store.Get(colB, []byte("other"))
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), other)
}

func TestWrite_BatchTooLarge_AppliesNothing(t *testing.T) {
	cfg := badgerconfig.NewInMemory()
	cfg.GetOptions().MaxBatchBytes = 256
	store, err := New(cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	tx := interfaces.NewDBTransaction()
	tx.Put(colA, []byte("small"), []byte("1"))
	tx.Put(colA, []byte("big"), bytes.Repeat([]byte{7}, 512))

	err = store.Write(tx)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
	assert.ErrorIs(t, err, interfaces.ErrBatchTooLarge, "应能按接口层哨兵错误识别")
	assert.Equal(t, uint64(256), store.MaxBatchBytes())

	v, err := store.Get(colA, []byte("small"))
	require.NoError(t, err)
	assert.Nil(t, v, "被拒绝的批量不应部分生效")
}

func TestCompressedValues_RoundTrip(t *testing.T) {
	cfg := badgerconfig.NewInMemory()
	cfg.GetOptions().CompressValues = true
	store, err := New(cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	payload := bytes.Repeat([]byte("chunk"), 200)

	require.NoError(t, store.Put(colA, []byte("k"), payload))

	v, err := store.Get(colA, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, payload, v)

	var iterated []byte
	require.NoError(t, store.IterWithPrefix(colA, nil, func(_, v []byte) error {
		iterated = v
		return nil
	}))
	assert.Equal(t, payload, iterated)
}

func TestWrite_AfterClose_Rejected(t *testing.T) {
	store, err := NewInMemory(nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Put(colA, []byte("k"), []byte("v"))

	assert.ErrorIs(t, err, ErrStoreClosing)
	assert.NoError(t, store.Close(), "重复关闭应直接返回")
}

func TestNew_DiskModeRequiresPath(t *testing.T) {
	cfg := badgerconfig.NewFromOptions(&badgerconfig.BadgerOptions{})

	_, err := New(cfg, nil)

	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestNew_DiskMode_PersistsAcrossReopen(t *testing.T) {
	cfg := badgerconfig.New(nil)
	cfg.GetOptions().Path = t.TempDir()
	cfg.GetOptions().ValueLogFileSize = 16 << 20

	store, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.Put(colA, []byte("k"), []byte("v")))
	require.NoError(t, store.Close())

	reopened, err := New(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(colA, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestMaxBatchBytes_DefaultWhenUnset(t *testing.T) {
	cfg := badgerconfig.NewInMemory()
	cfg.GetOptions().MaxBatchBytes = 0
	store, err := New(cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, uint64(10<<20), store.MaxBatchBytes(), "未配置时使用估算器默认上限")
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/inmemory"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/persistent"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/testutil"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

func TestSplitChunks(t *testing.T) {
	content := bytes.Repeat([]byte{0xab}, int(constants.FileChunkSize)*2+10)

	chunks := splitChunks(content)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], int(constants.FileChunkSize))
	assert.Len(t, chunks[2], 10, "最后一块可以更短")
	assert.Empty(t, splitChunks(nil))
}

func TestParseFileKey(t *testing.T) {
	key := types.FileKey{0x01, 0x02}

	got, err := parseFileKey(key.Hex())
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = parseFileKey(key.Hex()[2:])
	require.NoError(t, err)
	assert.Equal(t, key, got, "0x前缀可选")

	_, err = parseFileKey("0x1234")
	assert.Error(t, err)
}

// proofFor 在内存注册表中登记content并为ids生成证明文件
func proofFor(t *testing.T, content []byte, ids []types.ChunkID) proofDocument {
	t.Helper()
	s := inmemory.NewFileStorage(nil)
	staging := s.NewFileDataTrie()
	for i, c := range splitChunks(content) {
		require.NoError(t, staging.WriteChunk(types.ChunkID(i), c))
	}
	md := types.FileMetadata{
		Owner:       make([]byte, 32),
		BucketID:    bytes.Repeat([]byte{1}, 32),
		Location:    []byte("location"),
		FileSize:    uint64(len(content)),
		Fingerprint: staging.GetRoot(),
	}
	key, err := md.FileKey()
	require.NoError(t, err)
	require.NoError(t, s.InsertFileWithData(key, md, staging))
	proof, err := s.GenerateProof(key, ids)
	require.NoError(t, err)

	// 经过一次JSON往返，与命令行读写证明文件一致
	raw, err := json.Marshal(newProofDocument(key, ids, proof))
	require.NoError(t, err)
	var doc proofDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestVerifyDocument(t *testing.T) {
	content := bytes.Repeat([]byte("storagehub"), 400)
	doc := proofFor(t, content, []types.ChunkID{0, 3})
	var out bytes.Buffer
	verifyCmd.SetOut(&out)

	require.NoError(t, verifyDocument(verifyCmd, doc))

	assert.Contains(t, out.String(), `"valid": true`)
}

func TestVerifyDocument_Tampered(t *testing.T) {
	content := bytes.Repeat([]byte("storagehub"), 400)

	t.Run("文件标识不符", func(t *testing.T) {
		doc := proofFor(t, content, []types.ChunkID{1})
		doc.Metadata.Location = "other"
		assert.ErrorIs(t, verifyDocument(verifyCmd, doc), ErrVerifyFailed)
	})

	t.Run("缺少声明的分块", func(t *testing.T) {
		doc := proofFor(t, content, []types.ChunkID{1})
		doc.ChunkIDs = append(doc.ChunkIDs, 2)
		assert.ErrorIs(t, verifyDocument(verifyCmd, doc), ErrVerifyFailed)
	})

	t.Run("证明字节被篡改", func(t *testing.T) {
		doc := proofFor(t, content, []types.ChunkID{1})
		doc.Proof[len(doc.Proof)-1] ^= 0xff
		assert.ErrorIs(t, verifyDocument(verifyCmd, doc), ErrVerifyFailed)
	})

	t.Run("哈希算法不符", func(t *testing.T) {
		doc := proofFor(t, content, []types.ChunkID{1})
		require.Equal(t, "blake2b-256", doc.Hasher, "证明文件记录生成时的算法")
		doc.Hasher = "keccak-256"
		assert.ErrorIs(t, verifyDocument(verifyCmd, doc), ErrVerifyFailed)
	})

	t.Run("未知哈希算法", func(t *testing.T) {
		doc := proofFor(t, content, []types.ChunkID{1})
		doc.Hasher = "sha1"
		assert.ErrorIs(t, verifyDocument(verifyCmd, doc), ErrUnknownHasher)
	})
}

func TestVerifyDocument_LegacyDocumentWithoutHasher(t *testing.T) {
	doc := proofFor(t, bytes.Repeat([]byte("storagehub"), 400), []types.ChunkID{0})
	doc.Hasher = ""
	var out bytes.Buffer
	verifyCmd.SetOut(&out)

	assert.NoError(t, verifyDocument(verifyCmd, doc), "未声明算法时按默认算法回放")
}

// newBadgerEngine 在内存BadgerDB上装配持久化注册表
func newBadgerEngine(t *testing.T) (*engine, *persistent.FileStorage, func() int) {
	t.Helper()
	db := testutil.NewBadgerKV(t)
	logger, _ := testutil.NewObservedLogger()
	s, err := persistent.NewFileStorage(db, nil, logger)
	require.NoError(t, err)
	nodes := func() int {
		n := 0
		require.NoError(t, db.IterWithPrefix(persistent.ColumnChunks, nil, func(_, _ []byte) error {
			n++
			return nil
		}))
		return n
	}
	return &engine{Storage: s, Logger: logger}, s, nodes
}

func TestStoreContent_ReleasesStagingOnFailure(t *testing.T) {
	// Arrange
	e, s, nodes := newBadgerEngine(t)
	content := bytes.Repeat([]byte{0x33}, int(constants.FileChunkSize)*3+7)
	key, _, err := storeContent(e, content, testutil.Owner(), testutil.Bucket(1), []byte("location"))
	require.NoError(t, err)
	registered := nodes()

	// Act: 相同内容再次登记失败
	_, _, err = storeContent(e, content, testutil.Owner(), testutil.Bucket(1), []byte("location"))

	// Assert
	require.ErrorIs(t, err, fm.ErrFileAlreadyExists)
	assert.Equal(t, registered, nodes(), "登记失败时独立数据树也被释放")
	require.NoError(t, s.DeleteFile(key))
	assert.Zero(t, nodes(), "只剩登记文件自身的节点")
}

func TestStoreContent_RejectsShortBucketID(t *testing.T) {
	e, _, nodes := newBadgerEngine(t)

	_, _, err := storeContent(e, []byte("data"), testutil.Owner(), []byte{0x01}, []byte("location"))

	assert.ErrorIs(t, err, fm.ErrInvalidBucketID)
	assert.Zero(t, nodes(), "存储桶ID无效时不写入任何分块")
}

// run 以给定参数执行根命令并返回标准输出
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_AddProofVerifyRemove(t *testing.T) {
	// Arrange: 落盘的BadgerDB后端，多次命令共享数据
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	config := map[string]interface{}{
		"log":          map[string]interface{}{"level": "error"},
		"storage":      map[string]interface{}{"data_root": filepath.Join(dir, "data")},
		"file_manager": map[string]interface{}{"backend": "badger"},
	}
	raw, err := json.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, raw, 0600))
	input := filepath.Join(dir, "input.bin")
	content := bytes.Repeat([]byte{0x5a}, int(constants.FileChunkSize)*3)
	require.NoError(t, os.WriteFile(input, content, 0600))

	// Act & Assert
	out, err := run(t, "--config", configPath, "add", input, "--location", "location")
	require.NoError(t, err)
	var added struct {
		FileKey     types.FileKey `json:"file_key"`
		ChunksCount uint64        `json:"chunks_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, uint64(3), added.ChunksCount)
	key := added.FileKey.Hex()

	out, err = run(t, "--config", configPath, "info", key)
	require.NoError(t, err)
	assert.Contains(t, out, `"stored_chunks": 3`)

	proofPath := filepath.Join(dir, "proof.json")
	_, err = run(t, "--config", configPath, "proof", key, "0", "2", "--out", proofPath)
	require.NoError(t, err)
	out, err = run(t, "verify", proofPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)

	_, err = run(t, "--config", configPath, "rm", key)
	require.NoError(t, err)
	_, err = run(t, "--config", configPath, "info", key)
	assert.Error(t, err, "删除后文件不存在")
}

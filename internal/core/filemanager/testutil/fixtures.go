// Package testutil 提供文件存储引擎测试共用的夹具、日志与故障注入存储
package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/trie"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// Location 测试文件路径
var Location = []byte("location")

// Bucket 以单个字节填充的32字节存储桶ID
func Bucket(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, 32)
}

// Owner 32个零字节的所有者
func Owner() []byte {
	return make([]byte, 32)
}

// Chunk 以fill填充的整块
func Chunk(fill byte) types.Chunk {
	return bytes.Repeat([]byte{fill}, int(constants.FileChunkSize))
}

// Chunks 生成n个内容互不相同的整块
func Chunks(n int) []types.Chunk {
	out := make([]types.Chunk, n)
	for i := range out {
		out[i] = Chunk(byte(i + 1))
	}
	return out
}

// UniqueChunks 生成n个整块，块首8字节写入序号，任意多块都互不相同
func UniqueChunks(n int) []types.Chunk {
	out := make([]types.Chunk, n)
	for i := range out {
		c := Chunk(byte(i))
		binary.BigEndian.PutUint64(c, uint64(i))
		out[i] = c
	}
	return out
}

// Fingerprint 计算分块按序写入后的数据树根
func Fingerprint(t testing.TB, chunks []types.Chunk) types.Fingerprint {
	t.Helper()
	tr := trie.New(filedata.Layout, trie.NewMemoryDB(), filedata.EmptyRoot())
	for i, c := range chunks {
		require.NoError(t, filedata.InsertChunk(tr, types.ChunkID(i), c))
	}
	return tr.Root()
}

// File 由分块构造元数据与文件标识
func File(t testing.TB, bucket []byte, chunks []types.Chunk) (types.FileMetadata, types.FileKey) {
	t.Helper()
	var size uint64
	for _, c := range chunks {
		size += uint64(len(c))
	}
	md := types.FileMetadata{
		Owner:       Owner(),
		BucketID:    bucket,
		Location:    Location,
		FileSize:    size,
		Fingerprint: Fingerprint(t, chunks),
	}
	key, err := md.FileKey()
	require.NoError(t, err)
	return md, key
}

package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// parseFileKey 解析十六进制文件标识，0x前缀可选
func parseFileKey(s string) (types.FileKey, error) {
	key, err := types.HashFromBytes(common.FromHex(s))
	if err != nil {
		return types.FileKey{}, fmt.Errorf("无效的文件标识 %q: %w", s, err)
	}
	return key, nil
}

// parseHexBytes 解析十六进制字节串，0x前缀可选
func parseHexBytes(name, s string) ([]byte, error) {
	b := common.FromHex(s)
	if len(b) == 0 && s != "" && s != "0x" {
		return nil, fmt.Errorf("无效的%s %q", name, s)
	}
	return b, nil
}

// metadataView 元数据的十六进制输出形式
type metadataView struct {
	Owner       hexutil.Bytes `json:"owner"`
	BucketID    hexutil.Bytes `json:"bucket_id"`
	Location    string        `json:"location"`
	FileSize    uint64        `json:"file_size"`
	Fingerprint common.Hash   `json:"fingerprint"`
}

func newMetadataView(md *types.FileMetadata) metadataView {
	return metadataView{
		Owner:       md.Owner,
		BucketID:    md.BucketID,
		Location:    string(md.Location),
		FileSize:    md.FileSize,
		Fingerprint: md.Fingerprint,
	}
}

func (v metadataView) metadata() types.FileMetadata {
	return types.FileMetadata{
		Owner:       v.Owner,
		BucketID:    v.BucketID,
		Location:    []byte(v.Location),
		FileSize:    v.FileSize,
		Fingerprint: v.Fingerprint,
	}
}

// proofDocument proof 命令输出、verify 命令读取的证明文件
type proofDocument struct {
	FileKey     common.Hash   `json:"file_key"`
	Metadata    metadataView  `json:"metadata"`
	Fingerprint common.Hash   `json:"fingerprint"`
	ChunkIDs    []uint64      `json:"chunk_ids"`
	Proof       hexutil.Bytes `json:"proof"`
	// Hasher 生成证明时数据树使用的哈希算法，为空时按blake2b-256回放
	Hasher string `json:"hasher,omitempty"`
}

func newProofDocument(key types.FileKey, ids []types.ChunkID, p *types.FileKeyProof) proofDocument {
	chunkIDs := make([]uint64, len(ids))
	for i, id := range ids {
		chunkIDs[i] = uint64(id)
	}
	return proofDocument{
		FileKey:     key,
		Metadata:    newMetadataView(&p.FileMetadata),
		Fingerprint: p.Fingerprint,
		ChunkIDs:    chunkIDs,
		Proof:       p.Proof,
		Hasher:      filedata.Layout.Hasher().Name(),
	}
}

func (d proofDocument) fileKeyProof() *types.FileKeyProof {
	return &types.FileKeyProof{
		FileMetadata: d.Metadata.metadata(),
		Fingerprint:  d.Fingerprint,
		Proof:        d.Proof,
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/w3f-grants-archive/storage-hub/internal/core/filemanager/filedata"
	"github.com/w3f-grants-archive/storage-hub/internal/core/infrastructure/crypto/hash"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

var (
	addBucket   string // 存储桶ID
	addOwner    string // 所有者
	addLocation string // 文件路径，默认使用本地路径
	chunkOut    string // 分块输出文件
	proofOut    string // 证明输出文件
	verifyHash  string // 覆盖证明文件声明的哈希算法
)

var (
	// ErrVerifyFailed 证明回放结果与声明不一致
	ErrVerifyFailed = errors.New("证明校验失败")
	// ErrUnknownHasher 证明文件或命令行指定了不支持的哈希算法
	ErrUnknownHasher = errors.New("未知的哈希算法")
)

// addCmd 切分并登记本地文件
var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "切分并登记本地文件",
	Long: `把本地文件切分为定长分块写入独立数据树，以树根作为指纹计算文件标识，
再与元数据一起登记到注册表。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("读取文件失败: %w", err)
		}
		bucket, err := parseHexBytes("存储桶ID", addBucket)
		if err != nil {
			return err
		}
		owner, err := parseHexBytes("所有者", addOwner)
		if err != nil {
			return err
		}
		location := addLocation
		if location == "" {
			location = args[0]
		}

		return withEngine(func(e *engine) error {
			key, md, err := storeContent(e, content, owner, bucket, []byte(location))
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"file_key":     key,
				"metadata":     newMetadataView(&md),
				"chunks_count": md.ChunksCount(),
			})
		})
	},
}

// storeContent 把内容写入独立数据树并登记，登记成功与否都会释放独立数据树
//
// 执行流程：
//  1. 写入独立数据树
//  2. 以树根为指纹登记
//  3. 释放独立数据树
func storeContent(e *engine, content, owner, bucket, location []byte) (types.FileKey, types.FileMetadata, error) {
	if err := filedata.CheckBucketID(bucket); err != nil {
		return types.FileKey{}, types.FileMetadata{}, err
	}

	// 1. 写入
	staging := e.Storage.NewFileDataTrie()
	defer func() {
		// 3. 释放
		if err := staging.Delete(); err != nil {
			e.Logger.Warnf("释放独立数据树失败: %v", err)
		}
	}()
	for i, chunk := range splitChunks(content) {
		if err := staging.WriteChunk(types.ChunkID(i), chunk); err != nil {
			return types.FileKey{}, types.FileMetadata{}, err
		}
	}

	// 2. 登记
	md := types.FileMetadata{
		Owner:       owner,
		BucketID:    bucket,
		Location:    location,
		FileSize:    uint64(len(content)),
		Fingerprint: staging.GetRoot(),
	}
	key, err := md.FileKey()
	if err != nil {
		return types.FileKey{}, types.FileMetadata{}, err
	}
	if err := e.Storage.InsertFileWithData(key, md, staging); err != nil {
		return types.FileKey{}, types.FileMetadata{}, err
	}
	return key, md, nil
}

// splitChunks 按 FileChunkSize 切分，最后一块可以更短，空文件没有分块
func splitChunks(content []byte) []types.Chunk {
	var chunks []types.Chunk
	for off := 0; off < len(content); off += int(constants.FileChunkSize) {
		end := off + int(constants.FileChunkSize)
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, types.Chunk(content[off:end]))
	}
	return chunks
}

// infoCmd 查询元数据与完整性
var infoCmd = &cobra.Command{
	Use:   "info <file-key>",
	Short: "查询文件元数据与已存储分块数",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseFileKey(args[0])
		if err != nil {
			return err
		}
		return withEngine(func(e *engine) error {
			md, err := e.Storage.GetMetadata(key)
			if err != nil {
				return err
			}
			if md == nil {
				return fmt.Errorf("%w: %s", fm.ErrFileDoesNotExist, key.Hex())
			}
			stored, err := e.Storage.StoredChunksCount(key)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]interface{}{
				"file_key":         key,
				"metadata":         newMetadataView(md),
				"chunks_count":     md.ChunksCount(),
				"challenges_count": md.ChallengesCount(),
				"stored_chunks":    stored,
			})
		})
	},
}

// chunkCmd 读取单个分块
var chunkCmd = &cobra.Command{
	Use:   "chunk <file-key> <chunk-id>",
	Short: "读取分块内容",
	Long:  "读取分块原始字节，默认写到标准输出",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseFileKey(args[0])
		if err != nil {
			return err
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("无效的分块序号 %q: %w", args[1], err)
		}
		return withEngine(func(e *engine) error {
			chunk, err := e.Storage.GetChunk(key, types.ChunkID(id))
			if err != nil {
				return err
			}
			if chunkOut != "" {
				return os.WriteFile(chunkOut, chunk, 0600)
			}
			_, err = io.Copy(cmd.OutOrStdout(), bytes.NewReader(chunk))
			return err
		})
	},
}

// proofCmd 生成紧凑证明
var proofCmd = &cobra.Command{
	Use:   "proof <file-key> <chunk-id>...",
	Short: "为指定分块生成紧凑证明",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseFileKey(args[0])
		if err != nil {
			return err
		}
		ids := make([]types.ChunkID, 0, len(args)-1)
		for _, a := range args[1:] {
			id, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return fmt.Errorf("无效的分块序号 %q: %w", a, err)
			}
			ids = append(ids, types.ChunkID(id))
		}

		return withEngine(func(e *engine) error {
			proof, err := e.Storage.GenerateProof(key, ids)
			if err != nil {
				return err
			}
			doc := newProofDocument(key, ids, proof)
			if proofOut == "" {
				return printJSON(cmd, doc)
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			return os.WriteFile(proofOut, data, 0600)
		})
	},
}

// verifyCmd 回放证明文件
var verifyCmd = &cobra.Command{
	Use:   "verify <proof-file>",
	Short: "本地回放证明文件",
	Long: `按指纹回放紧凑证明，检查文件标识与元数据一致、证明覆盖声明的全部分块，
并输出被证明的分块序号与内容摘要。不访问注册表。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("读取证明文件失败: %w", err)
		}
		var doc proofDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("解析证明文件失败: %w", err)
		}
		if verifyHash != "" {
			doc.Hasher = verifyHash
		}
		return verifyDocument(cmd, doc)
	},
}

func verifyDocument(cmd *cobra.Command, doc proofDocument) error {
	hasher, ok := hash.ByName(doc.Hasher)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHasher, doc.Hasher)
	}
	proof := doc.fileKeyProof()

	// 1. 文件标识
	key, err := proof.FileKey()
	if err != nil {
		return err
	}
	if key != doc.FileKey {
		return fmt.Errorf("%w: 文件标识 %s 与元数据计算结果 %s 不一致", ErrVerifyFailed, doc.FileKey.Hex(), key.Hex())
	}
	if proof.Fingerprint != proof.FileMetadata.Fingerprint {
		return fmt.Errorf("%w: 证明树根与元数据指纹不一致", ErrVerifyFailed)
	}

	// 2. 回放
	proven, err := filedata.ProvenChunks(hasher, proof.FileProof())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	got := make(map[uint64]types.Chunk, len(proven))
	for _, c := range proven {
		got[uint64(c.ChunkID)] = c.Data
	}
	for _, id := range doc.ChunkIDs {
		if _, ok := got[id]; !ok {
			return fmt.Errorf("%w: 证明不包含分块 %d", ErrVerifyFailed, id)
		}
	}

	chunks := make([]map[string]interface{}, 0, len(proven))
	for _, c := range proven {
		chunks = append(chunks, map[string]interface{}{
			"chunk_id": uint64(c.ChunkID),
			"size":     len(c.Data),
			"prefix":   hexutil.Bytes(c.Data[:min(len(c.Data), 8)]),
		})
	}
	return printJSON(cmd, map[string]interface{}{
		"file_key": key,
		"valid":    true,
		"chunks":   chunks,
	})
}

// rmCmd 删除文件
var rmCmd = &cobra.Command{
	Use:   "rm <file-key>",
	Short: "删除文件及其数据树",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseFileKey(args[0])
		if err != nil {
			return err
		}
		return withEngine(func(e *engine) error {
			if err := e.Storage.DeleteFile(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除 %s\n", key.Hex())
			return nil
		})
	},
}

// rmBucketCmd 删除存储桶下的全部文件
var rmBucketCmd = &cobra.Command{
	Use:   "rm-bucket <bucket-hex>",
	Short: "删除存储桶下的全部文件",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := parseHexBytes("存储桶ID", args[0])
		if err != nil {
			return err
		}
		if err := filedata.CheckBucketID(bucket); err != nil {
			return err
		}
		return withEngine(func(e *engine) error {
			if err := e.Storage.DeleteFilesWithPrefix(bucket); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已删除存储桶 %x 下的全部文件\n", bucket)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringVar(&addBucket, "bucket", "0x"+repeatHex("01", 32), "存储桶ID (十六进制)")
	addCmd.Flags().StringVar(&addOwner, "owner", "0x"+repeatHex("00", 32), "所有者 (十六进制)")
	addCmd.Flags().StringVar(&addLocation, "location", "", "文件路径 (默认使用本地路径)")
	chunkCmd.Flags().StringVarP(&chunkOut, "out", "o", "", "写入文件而不是标准输出")
	proofCmd.Flags().StringVarP(&proofOut, "out", "o", "", "写入证明文件而不是标准输出")
	verifyCmd.Flags().StringVar(&verifyHash, "hasher", "", "数据树哈希算法 (blake2b-256 或 keccak-256)，默认使用证明文件中的声明")
}

func repeatHex(b string, n int) string {
	out := make([]byte, 0, len(b)*n)
	for i := 0; i < n; i++ {
		out = append(out, b...)
	}
	return string(out)
}

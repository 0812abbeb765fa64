package filedata

import (
	"fmt"

	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	fm "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/filemanager"
	"github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/log"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// CheckBucketID 存储桶ID必须恰好 HLength 字节
//
// 存储桶索引的组合键 bucket_id || file_key 不带长度前缀，
// 定长存储桶ID保证一个存储桶的前缀不会匹配到另一个存储桶的文件。
func CheckBucketID(bucketID []byte) error {
	if len(bucketID) != constants.HLength {
		return fmt.Errorf("%w: 期望%d字节, 实际%d字节", fm.ErrInvalidBucketID, constants.HLength, len(bucketID))
	}
	return nil
}

// Completeness 写入分块后重新判定文件状态
//
// 返回：
//   - FileComplete: 分块数达到 chunks_count 且树根等于指纹
//   - FileIncomplete: 仍缺少分块
//   - error: 分块数已满但树根与指纹不一致时返回 ErrFingerprintAndStoredFileMismatch
func Completeness(logger log.Logger, key types.FileKey, md *types.FileMetadata, data fm.FileDataTrie) (fm.WriteOutcome, error) {
	count, err := data.StoredChunksCount()
	if err != nil {
		return fm.FileIncomplete, fmt.Errorf("%w: %w", fm.ErrFailedToGetStoredChunksCount, err)
	}
	if count != md.ChunksCount() {
		return fm.FileIncomplete, nil
	}
	if root := data.GetRoot(); root != md.Fingerprint {
		logger.Errorf("文件分块已齐但树根与指纹不一致: file_key=%s root=%s fingerprint=%s",
			key.Hex(), root.Hex(), md.Fingerprint.Hex())
		return fm.FileIncomplete, fmt.Errorf("%w: %s", fm.ErrFingerprintAndStoredFileMismatch, key.Hex())
	}
	return fm.FileComplete, nil
}

// CheckProvable 生成文件级证明前的完整性与指纹校验
func CheckProvable(logger log.Logger, key types.FileKey, md *types.FileMetadata, data fm.FileDataTrie) error {
	count, err := data.StoredChunksCount()
	if err != nil {
		return err
	}
	if count != md.ChunksCount() {
		return fmt.Errorf("%w: 已存储%d/%d个分块", fm.ErrIncompleteFile, count, md.ChunksCount())
	}
	if data.GetRoot() != md.Fingerprint {
		logger.Errorf("生成证明时发现树根与指纹不一致: file_key=%s", key.Hex())
		return fmt.Errorf("%w: %s", fm.ErrFingerprintAndStoredFileMismatch, key.Hex())
	}
	return nil
}

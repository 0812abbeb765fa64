package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
)

// Hash 32字节哈希值（Blake2b-256输出）
type Hash = common.Hash

// FileKey 文件唯一标识，由编码后的FileMetadata哈希得到
type FileKey = Hash

// Fingerprint 文件全部分块写入后期望的数据树根
type Fingerprint = Hash

// HashFromBytes 从字节切片解析哈希
// 长度必须严格等于constants.HLength，不做截断或填充
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != constants.HLength {
		return Hash{}, fmt.Errorf("哈希长度无效: 期望%d字节, 实际%d字节", constants.HLength, len(b))
	}
	return common.BytesToHash(b), nil
}

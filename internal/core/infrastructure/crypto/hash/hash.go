// Package hash 提供数据树使用的哈希器实现
package hash

import (
	"github.com/ethereum/go-ethereum/crypto"
	cryptointf "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/crypto"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
	"golang.org/x/crypto/blake2b"
)

// 确保实现了cryptointf.Hasher接口
var (
	_ cryptointf.Hasher = Blake2b256{}
	_ cryptointf.Hasher = Keccak256{}
)

// Blake2b256 Blake2b-256哈希器，文件数据树的默认哈希算法
type Blake2b256 struct{}

// Hash 计算Blake2b-256哈希
func (Blake2b256) Hash(data []byte) types.Hash {
	return blake2b.Sum256(data)
}

// Name 算法名称
func (Blake2b256) Name() string {
	return "blake2b-256"
}

// Keccak256 Keccak-256哈希器
type Keccak256 struct{}

// Hash 计算Keccak-256哈希
func (Keccak256) Hash(data []byte) types.Hash {
	return crypto.Keccak256Hash(data)
}

// Name 算法名称
func (Keccak256) Name() string {
	return "keccak-256"
}

// Default 引擎使用的哈希器
var Default cryptointf.Hasher = Blake2b256{}

// ByName 按名称选择哈希器，未知名称返回false
func ByName(name string) (cryptointf.Hasher, bool) {
	switch name {
	case "", Blake2b256{}.Name():
		return Blake2b256{}, true
	case Keccak256{}.Name():
		return Keccak256{}, true
	default:
		return nil, false
	}
}

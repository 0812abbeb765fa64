// Package crypto 提供哈希计算接口定义
//
// #️⃣ **数据树哈希器**
//
// 数据树节点、空树根和文件标识都通过 Hasher 计算。
// 实现必须是纯函数：相同输入永远得到相同的32字节输出。
package crypto

import "github.com/w3f-grants-archive/storage-hub/pkg/types"

// Hasher 定长哈希函数
type Hasher interface {
	// Hash 计算数据的哈希值
	Hash(data []byte) types.Hash

	// Name 算法名称，如 "blake2b-256"
	Name() string
}

package trie

import "errors"

var (
	// ErrInvalidKey 键长度不是KeyLength
	ErrInvalidKey = errors.New("数据树键长度无效")

	// ErrMissingNode 节点存储中找不到被引用的节点
	ErrMissingNode = errors.New("数据树节点缺失")

	// ErrInvalidNode 节点编码无效
	ErrInvalidNode = errors.New("数据树节点编码无效")

	// ErrIncompleteProof 记录的节点不足以构造证明
	ErrIncompleteProof = errors.New("证明所需节点未被记录")

	// ErrInvalidProof 紧凑证明格式无效
	ErrInvalidProof = errors.New("紧凑证明无效")

	// ErrRootMismatch 紧凑证明重建出的根与期望根不一致
	ErrRootMismatch = errors.New("紧凑证明根不匹配")
)

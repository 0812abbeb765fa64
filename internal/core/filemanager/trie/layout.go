package trie

import (
	cryptointf "github.com/w3f-grants-archive/storage-hub/pkg/interfaces/infrastructure/crypto"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// Layout 数据树布局：哈希器及由其决定的空树根
type Layout struct {
	hasher    cryptointf.Hasher
	emptyRoot types.Hash
}

// NewLayout 创建布局
func NewLayout(hasher cryptointf.Hasher) *Layout {
	return &Layout{
		hasher:    hasher,
		emptyRoot: hasher.Hash(emptyNode),
	}
}

// Hasher 节点哈希器
func (l *Layout) Hasher() cryptointf.Hasher {
	return l.hasher
}

// EmptyRoot 空树根
func (l *Layout) EmptyRoot() types.Hash {
	return l.emptyRoot
}

func (l *Layout) hashNode(enc []byte) types.Hash {
	return l.hasher.Hash(enc)
}

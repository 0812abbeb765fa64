package trie

import "github.com/w3f-grants-archive/storage-hub/pkg/types"

// Overlay 叠加在只读下层存储上的写缓冲
//
// 所有新增和删除都只记录在内存中，读取先查缓冲中可见的节点，再回落到下层。
// 缓冲内容由调用方通过 Changes 取出并写入下层；分批写入时每批成功后用 Forget 丢弃该批节点，
// 全部写完后调用 Clear。
type Overlay struct {
	*MemoryDB
	backing NodeReader
}

// NewOverlay 创建写缓冲
func NewOverlay(backing NodeReader) *Overlay {
	return &Overlay{
		MemoryDB: NewMemoryDB(),
		backing:  backing,
	}
}

// Get 读取节点
func (o *Overlay) Get(hash types.Hash) ([]byte, error) {
	if v, _ := o.MemoryDB.Get(hash); v != nil {
		return v, nil
	}
	return o.backing.Get(hash)
}

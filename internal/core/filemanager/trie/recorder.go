package trie

import "github.com/w3f-grants-archive/storage-hub/pkg/types"

// Recorder 记录读取过程中访问过的节点
type Recorder struct {
	nodes map[types.Hash][]byte
}

// NewRecorder 创建记录器
func NewRecorder() *Recorder {
	return &Recorder{nodes: make(map[types.Hash][]byte)}
}

func (r *Recorder) record(h types.Hash, enc []byte) {
	if _, ok := r.nodes[h]; ok {
		return
	}
	r.nodes[h] = append([]byte(nil), enc...)
}

// Len 已记录节点数
func (r *Recorder) Len() int {
	return len(r.nodes)
}

// Drain 取出已记录节点并清空记录器
func (r *Recorder) Drain() map[types.Hash][]byte {
	nodes := r.nodes
	r.nodes = make(map[types.Hash][]byte)
	return nodes
}

package inmemory

import (
	"sort"
	"strings"
)

// bucketIndex 有序的 bucket_id || file_key 组合键集合
// 按字节序排列，前缀查询只访问命中的区间
type bucketIndex struct {
	keys []string
}

func (b *bucketIndex) insert(key []byte) {
	k := string(key)
	i := sort.SearchStrings(b.keys, k)
	if i < len(b.keys) && b.keys[i] == k {
		return
	}
	b.keys = append(b.keys, "")
	copy(b.keys[i+1:], b.keys[i:])
	b.keys[i] = k
}

func (b *bucketIndex) remove(key []byte) {
	k := string(key)
	i := sort.SearchStrings(b.keys, k)
	if i < len(b.keys) && b.keys[i] == k {
		b.keys = append(b.keys[:i], b.keys[i+1:]...)
	}
}

// withPrefix 返回以prefix开头的全部键的副本
func (b *bucketIndex) withPrefix(prefix []byte) [][]byte {
	p := string(prefix)
	var out [][]byte
	for i := sort.SearchStrings(b.keys, p); i < len(b.keys) && strings.HasPrefix(b.keys[i], p); i++ {
		out = append(out, []byte(b.keys[i]))
	}
	return out
}

func (b *bucketIndex) len() int {
	return len(b.keys)
}

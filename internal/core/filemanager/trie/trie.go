package trie

import (
	"bytes"
	"fmt"

	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// Trie 以root为根、读写db的数据树视图
// 不做内部同步
type Trie struct {
	layout   *Layout
	db       NodeDB
	root     types.Hash
	recorder *Recorder
}

// New 在db上打开以root为根的数据树
func New(layout *Layout, db NodeDB, root types.Hash) *Trie {
	return &Trie{layout: layout, db: db, root: root}
}

// Root 当前根
func (t *Trie) Root() types.Hash {
	return t.root
}

// IsEmpty 是否为空树
func (t *Trie) IsEmpty() bool {
	return t.root == t.layout.emptyRoot
}

// WithRecorder 返回同一数据树上的记录视图，读取到的每个节点都写入r
func (t *Trie) WithRecorder(r *Recorder) *Trie {
	c := *t
	c.recorder = r
	return &c
}

// LoadRoot 读取根节点；在记录视图上调用时根节点会被记录
func (t *Trie) LoadRoot() error {
	if t.IsEmpty() {
		return nil
	}
	_, err := t.node(t.root)
	return err
}

func (t *Trie) node(h types.Hash) (node, error) {
	enc, err := t.db.Get(h)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingNode, h.Hex())
	}
	if t.recorder != nil {
		t.recorder.record(h, enc)
	}
	return decodeNode(enc)
}

func (t *Trie) writeNode(n node) (types.Hash, error) {
	enc, err := n.encode()
	if err != nil {
		return types.Hash{}, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	h := t.layout.hashNode(enc)
	t.db.Emplace(h, enc)
	return h, nil
}

// Get 查找键对应的值
func (t *Trie) Get(key []byte) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	if t.IsEmpty() {
		return nil, false, nil
	}
	leaf, err := t.closestLeaf(key)
	if err != nil {
		return nil, false, err
	}
	if !bytes.Equal(leaf.Key, key) {
		return nil, false, nil
	}
	return leaf.Value, true, nil
}

// Contains 键是否存在
func (t *Trie) Contains(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

// closestLeaf 沿key的比特一路向下走到的叶子
func (t *Trie) closestLeaf(key []byte) (*leafNode, error) {
	h := t.root
	for {
		n, err := t.node(h)
		if err != nil {
			return nil, err
		}
		switch n := n.(type) {
		case *leafNode:
			return n, nil
		case *branchNode:
			h = n.child(bitAt(key, n.Bit))
		}
	}
}

// Insert 插入或替换键值，更新根
func (t *Trie) Insert(key, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if t.IsEmpty() {
		h, err := t.writeNode(&leafNode{Key: key, Value: value})
		if err != nil {
			return err
		}
		t.root = h
		return nil
	}

	closest, err := t.closestLeaf(key)
	if err != nil {
		return err
	}
	crit, differs := critBit(key, closest.Key)

	root, err := t.insertAt(t.root, key, value, crit, differs)
	if err != nil {
		return err
	}
	t.root = root
	return nil
}

// insertAt 在以h为根的子树中插入，返回新子树哈希
// differs为false时key已存在，沿路径替换叶子
func (t *Trie) insertAt(h types.Hash, key, value []byte, crit uint16, differs bool) (types.Hash, error) {
	n, err := t.node(h)
	if err != nil {
		return types.Hash{}, err
	}

	switch n := n.(type) {
	case *branchNode:
		if !differs || n.Bit < crit {
			dir := bitAt(key, n.Bit)
			child, err := t.insertAt(n.child(dir), key, value, crit, differs)
			if err != nil {
				return types.Hash{}, err
			}
			t.db.Remove(h)
			return t.writeNode(n.withChild(dir, child))
		}
	case *leafNode:
		if !differs {
			t.db.Remove(h)
			return t.writeNode(&leafNode{Key: key, Value: value})
		}
	}

	// 在crit处分叉：新叶子与现有子树成为兄弟
	leaf, err := t.writeNode(&leafNode{Key: key, Value: value})
	if err != nil {
		return types.Hash{}, err
	}
	b := &branchNode{Bit: crit, Left: h, Right: leaf}
	if bitAt(key, crit) == 0 {
		b.Left, b.Right = leaf, h
	}
	return t.writeNode(b)
}

// Remove 删除键，返回键是否存在
func (t *Trie) Remove(key []byte) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	if t.IsEmpty() {
		return false, nil
	}
	root, emptied, found, err := t.removeAt(t.root, key)
	if err != nil || !found {
		return false, err
	}
	if emptied {
		t.root = t.layout.emptyRoot
	} else {
		t.root = root
	}
	return true, nil
}

// removeAt 从以h为根的子树中删除key
// emptied为true表示子树已被整体删除
func (t *Trie) removeAt(h types.Hash, key []byte) (types.Hash, bool, bool, error) {
	n, err := t.node(h)
	if err != nil {
		return types.Hash{}, false, false, err
	}

	switch n := n.(type) {
	case *leafNode:
		if !bytes.Equal(n.Key, key) {
			return h, false, false, nil
		}
		t.db.Remove(h)
		return types.Hash{}, true, true, nil
	case *branchNode:
		dir := bitAt(key, n.Bit)
		child, emptied, found, err := t.removeAt(n.child(dir), key)
		if err != nil || !found {
			return h, false, found, err
		}
		t.db.Remove(h)
		if emptied {
			// 只剩一个孩子，分支消失，兄弟子树上提
			return n.child(dir ^ 1), false, true, nil
		}
		nh, err := t.writeNode(n.withChild(dir, child))
		return nh, false, true, err
	}
	return h, false, false, nil
}

// Iterate 按键升序遍历全部叶子
func (t *Trie) Iterate(fn func(key, value []byte) error) error {
	if t.IsEmpty() {
		return nil
	}
	return t.walk(t.root, fn)
}

func (t *Trie) walk(h types.Hash, fn func(key, value []byte) error) error {
	n, err := t.node(h)
	if err != nil {
		return err
	}
	switch n := n.(type) {
	case *leafNode:
		return fn(n.Key, n.Value)
	case *branchNode:
		if err := t.walk(n.Left, fn); err != nil {
			return err
		}
		return t.walk(n.Right, fn)
	}
	return nil
}

// Len 叶子数量，需要完整遍历
func (t *Trie) Len() (uint64, error) {
	var count uint64
	err := t.Iterate(func(_, _ []byte) error {
		count++
		return nil
	})
	return count, err
}

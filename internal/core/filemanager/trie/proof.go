package trie

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// compactEntry 紧凑证明中的一个节点
// Left/Right 为空表示对应子节点紧随其后内联展开，否则为子节点哈希
type compactEntry struct {
	Kind  uint8
	Bit   uint16
	Key   []byte
	Value []byte
	Left  []byte
	Right []byte
}

// ProvenLeaf 经证明校验的叶子
type ProvenLeaf struct {
	Key   []byte
	Value []byte
}

// EncodeCompactProof 由记录的节点生成以root为根的紧凑证明
//
// 参数：
//   - layout: 数据树布局
//   - root: 证明对应的根
//   - nodes: Recorder.Drain 的结果，必须包含根节点
//
// 返回：
//   - []byte: 证明编码
//   - error: 根节点未被记录时返回 ErrIncompleteProof
func EncodeCompactProof(layout *Layout, root types.Hash, nodes map[types.Hash][]byte) ([]byte, error) {
	entries := make([]compactEntry, 0, len(nodes))
	if root != layout.emptyRoot {
		if err := appendCompact(&entries, root, nodes); err != nil {
			return nil, err
		}
	}
	return rlp.EncodeToBytes(entries)
}

func appendCompact(out *[]compactEntry, h types.Hash, nodes map[types.Hash][]byte) error {
	enc, ok := nodes[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIncompleteProof, h.Hex())
	}
	n, err := decodeNode(enc)
	if err != nil {
		return err
	}

	switch n := n.(type) {
	case *leafNode:
		*out = append(*out, compactEntry{Kind: kindLeaf, Key: n.Key, Value: n.Value})
	case *branchNode:
		idx := len(*out)
		*out = append(*out, compactEntry{Kind: kindBranch, Bit: n.Bit})
		if _, ok := nodes[n.Left]; ok {
			if err := appendCompact(out, n.Left, nodes); err != nil {
				return err
			}
		} else {
			(*out)[idx].Left = n.Left.Bytes()
		}
		if _, ok := nodes[n.Right]; ok {
			if err := appendCompact(out, n.Right, nodes); err != nil {
				return err
			}
		} else {
			(*out)[idx].Right = n.Right.Bytes()
		}
	}
	return nil
}

// VerifyCompactProof 用紧凑证明重建根并与root比较
// 校验通过时按键升序返回证明中包含的全部叶子
func VerifyCompactProof(layout *Layout, root types.Hash, proof []byte) ([]ProvenLeaf, error) {
	var entries []compactEntry
	if err := rlp.DecodeBytes(proof, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	if len(entries) == 0 {
		if root == layout.emptyRoot {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: 非空树的空证明", ErrInvalidProof)
	}

	v := &verifier{layout: layout, entries: entries}
	got, err := v.parse(nil)
	if err != nil {
		return nil, err
	}
	if v.pos != len(entries) {
		return nil, fmt.Errorf("%w: 多余的%d个节点", ErrInvalidProof, len(entries)-v.pos)
	}
	if got != root {
		return nil, fmt.Errorf("%w: 期望%s, 实际%s", ErrRootMismatch, root.Hex(), got.Hex())
	}
	return v.leaves, nil
}

type pathStep struct {
	bit uint16
	dir byte
}

type verifier struct {
	layout  *Layout
	entries []compactEntry
	pos     int
	leaves  []ProvenLeaf
}

// parse 解析一个内联子树，path为从根到该子树经过的分叉
func (v *verifier) parse(path []pathStep) (types.Hash, error) {
	if v.pos >= len(v.entries) {
		return types.Hash{}, fmt.Errorf("%w: 证明被截断", ErrInvalidProof)
	}
	e := v.entries[v.pos]
	v.pos++

	switch e.Kind {
	case kindLeaf:
		if len(e.Key) != KeyLength {
			return types.Hash{}, fmt.Errorf("%w: 叶子键长度%d", ErrInvalidProof, len(e.Key))
		}
		for _, s := range path {
			if bitAt(e.Key, s.bit) != s.dir {
				return types.Hash{}, fmt.Errorf("%w: 叶子不在其路径上", ErrInvalidProof)
			}
		}
		enc, err := (&leafNode{Key: e.Key, Value: e.Value}).encode()
		if err != nil {
			return types.Hash{}, err
		}
		v.leaves = append(v.leaves, ProvenLeaf{Key: e.Key, Value: e.Value})
		return v.layout.hashNode(enc), nil

	case kindBranch:
		if int(e.Bit) >= keyBits {
			return types.Hash{}, fmt.Errorf("%w: 分叉位%d越界", ErrInvalidProof, e.Bit)
		}
		if len(path) > 0 && e.Bit <= path[len(path)-1].bit {
			return types.Hash{}, fmt.Errorf("%w: 分叉位未递增", ErrInvalidProof)
		}
		base := path[:len(path):len(path)]
		left, err := v.child(e.Left, append(base, pathStep{bit: e.Bit, dir: 0}))
		if err != nil {
			return types.Hash{}, err
		}
		right, err := v.child(e.Right, append(base, pathStep{bit: e.Bit, dir: 1}))
		if err != nil {
			return types.Hash{}, err
		}
		enc, err := (&branchNode{Bit: e.Bit, Left: left, Right: right}).encode()
		if err != nil {
			return types.Hash{}, err
		}
		return v.layout.hashNode(enc), nil

	default:
		return types.Hash{}, fmt.Errorf("%w: 未知节点类型%d", ErrInvalidProof, e.Kind)
	}
}

func (v *verifier) child(ref []byte, path []pathStep) (types.Hash, error) {
	if len(ref) == 0 {
		return v.parse(path)
	}
	if len(ref) != common.HashLength {
		return types.Hash{}, fmt.Errorf("%w: 子节点哈希长度%d", ErrInvalidProof, len(ref))
	}
	return common.BytesToHash(ref), nil
}

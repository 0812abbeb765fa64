package trie

import (
	"fmt"
	"math/bits"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/w3f-grants-archive/storage-hub/pkg/constants"
	"github.com/w3f-grants-archive/storage-hub/pkg/types"
)

// KeyLength 键宽度（字节）
const KeyLength = constants.TrieKeyLength

const keyBits = KeyLength * 8

// 节点类型前缀，对叶子、分支和空节点做域分离
const (
	kindLeaf   byte = 0x00
	kindBranch byte = 0x01
	kindEmpty  byte = 0x02
)

var emptyNode = []byte{kindEmpty}

type node interface {
	encode() ([]byte, error)
}

type leafNode struct {
	Key   []byte
	Value []byte
}

type branchNode struct {
	Bit   uint16
	Left  types.Hash
	Right types.Hash
}

func (n *leafNode) encode() ([]byte, error) {
	return encodeWithKind(kindLeaf, n)
}

func (n *branchNode) encode() ([]byte, error) {
	return encodeWithKind(kindBranch, n)
}

func (n *branchNode) child(dir byte) types.Hash {
	if dir == 0 {
		return n.Left
	}
	return n.Right
}

func (n *branchNode) withChild(dir byte, h types.Hash) *branchNode {
	c := *n
	if dir == 0 {
		c.Left = h
	} else {
		c.Right = h
	}
	return &c
}

func encodeWithKind(kind byte, v interface{}) ([]byte, error) {
	body, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, err
	}
	enc := make([]byte, 0, len(body)+1)
	enc = append(enc, kind)
	return append(enc, body...), nil
}

func decodeNode(enc []byte) (node, error) {
	if len(enc) == 0 {
		return nil, fmt.Errorf("%w: 空编码", ErrInvalidNode)
	}
	switch enc[0] {
	case kindLeaf:
		var n leafNode
		if err := rlp.DecodeBytes(enc[1:], &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		if len(n.Key) != KeyLength {
			return nil, fmt.Errorf("%w: 叶子键长度%d", ErrInvalidNode, len(n.Key))
		}
		return &n, nil
	case kindBranch:
		var n branchNode
		if err := rlp.DecodeBytes(enc[1:], &n); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
		if int(n.Bit) >= keyBits {
			return nil, fmt.Errorf("%w: 分叉位%d越界", ErrInvalidNode, n.Bit)
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("%w: 未知节点类型0x%02x", ErrInvalidNode, enc[0])
	}
}

// bitAt 返回键的第i个比特，最高位优先
func bitAt(key []byte, i uint16) byte {
	return (key[i/8] >> (7 - i%8)) & 1
}

// critBit 返回两个等长键第一个不同比特的位置
func critBit(a, b []byte) (uint16, bool) {
	for i := range a {
		if x := a[i] ^ b[i]; x != 0 {
			return uint16(i*8 + bits.LeadingZeros8(x)), true
		}
	}
	return 0, false
}

func checkKey(key []byte) error {
	if len(key) != KeyLength {
		return fmt.Errorf("%w: %d", ErrInvalidKey, len(key))
	}
	return nil
}

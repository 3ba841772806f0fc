package knn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/Endy3032/signid/internal/landmark"
)

// Tree blob node tags.
const (
	tagNil  = 0x00
	tagNode = 0x01
)

// nodeRecordSize is the encoded size of one present node, excluding its
// tag byte: the point, the label, the split dimension and the split value.
const nodeRecordSize = landmark.FeatureDim*4 + 1 + 1 + 4

// ErrCorruptBuffer is returned when a tree blob holds an invalid tag or
// ends before the encoded shape is complete.
var ErrCorruptBuffer = errors.New("corrupt tree buffer")

// MarshalBinary encodes the tree in preorder. Each node is either a
// single nil tag byte or a node tag followed by the 64 little-endian
// float32 point values, the label byte, the split dimension byte and
// the float32 split value, then the encoded left and right subtrees.
// There is no size header; the decoder rebuilds the shape from the tags.
func (t *Tree) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	encodeNode(buf, t.root)
	return buf.Bytes(), nil
}

func encodeNode(buf *bytes.Buffer, n *node) {
	if n == nil {
		buf.WriteByte(tagNil)
		return
	}

	buf.WriteByte(tagNode)

	var scratch [4]byte
	for _, v := range n.point {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
		buf.Write(scratch[:])
	}

	buf.WriteByte(n.label)
	buf.WriteByte(byte(n.splitDim))
	binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(n.splitValue))
	buf.Write(scratch[:])

	encodeNode(buf, n.left)
	encodeNode(buf, n.right)
}

// treeReader advances a cursor through a tree blob during decoding.
type treeReader struct {
	buf []byte
	off int
}

// UnmarshalTree decodes a tree blob produced by MarshalBinary. Returns
// ErrCorruptBuffer if the buffer ends mid-node or a tag byte is neither
// the nil nor the node marker.
func UnmarshalTree(data []byte) (*Tree, error) {
	r := &treeReader{buf: data}
	root, err := r.decodeNode()
	if err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

func (r *treeReader) decodeNode() (*node, error) {
	if r.off >= len(r.buf) {
		return nil, ErrCorruptBuffer
	}

	tag := r.buf[r.off]
	r.off++

	switch tag {
	case tagNil:
		return nil, nil
	case tagNode:
	default:
		return nil, ErrCorruptBuffer
	}

	if r.off+nodeRecordSize > len(r.buf) {
		return nil, ErrCorruptBuffer
	}

	point := make([]float32, landmark.FeatureDim)
	for i := range point {
		point[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.off:]))
		r.off += 4
	}

	label := r.buf[r.off]
	splitDim := int(r.buf[r.off+1])
	r.off += 2

	if splitDim >= landmark.FeatureDim {
		return nil, ErrCorruptBuffer
	}

	splitValue := math.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4

	left, err := r.decodeNode()
	if err != nil {
		return nil, err
	}
	right, err := r.decodeNode()
	if err != nil {
		return nil, err
	}

	return &node{
		point:      point,
		label:      label,
		splitDim:   splitDim,
		splitValue: splitValue,
		left:       left,
		right:      right,
	}, nil
}

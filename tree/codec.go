// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dacapoday/twig"
)

// Block payload encoding.
//
// A value block is the value bytes prefixed by their uvarint length.
//
// A node block is a varint TLV tuple: positive keys carry a uvarint
// scalar, negative keys carry a uvarint length followed by that many
// bytes. Zero scalars are omitted, so an absent field decodes as 0 and an
// empty child ref costs nothing on disk. Unknown keys are skipped.
// Only the addresses of children are stored, never embedded children.
const (
	fieldLeft   = 1 // left child address
	fieldKey    = 2 // key bytes
	fieldValue  = 3 // value address
	fieldRight  = 4 // right child address
	fieldLength = 5 // pairs in this subtree, including self
)

func encodeValue(val string) (data []byte) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(val)))
	data = make([]byte, 0, n+len(val))
	data = append(data, buf[:n]...)
	data = append(data, val...)
	return
}

func decodeValue(data []byte) (val string, err error) {
	length, n := binary.Uvarint(data)
	if n <= 0 || uint64(len(data)-n) != length {
		err = twig.ErrCorrupted
		return
	}
	val = string(data[n:])
	return
}

func encodeNode(node *Node) (data []byte, err error) {
	var buf bytes.Buffer
	e := tlvEncoder{&buf}
	if err = e.writeVal(fieldLeft, uint64(node.left.addr)); err != nil {
		return
	}
	if err = e.writeBytes(fieldKey, []byte(node.key)); err != nil {
		return
	}
	if err = e.writeVal(fieldValue, uint64(node.value.addr)); err != nil {
		return
	}
	if err = e.writeVal(fieldRight, uint64(node.right.addr)); err != nil {
		return
	}
	if err = e.writeVal(fieldLength, node.length); err != nil {
		return
	}
	data = buf.Bytes()
	return
}

func decodeNode(data []byte) (node *Node, err error) {
	d := tlvDecoder{bytes.NewReader(data)}
	node = new(Node)
	var key int64
	var val uint64
	for {
		key, err = d.readKey()
		if err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			node = nil
			return
		}
		if val, err = d.readVal(); err != nil {
			node = nil
			return
		}
		switch key {
		case fieldLeft:
			node.left = nodeAt(twig.Address(val))
		case fieldValue:
			node.value = valueAt(twig.Address(val))
		case fieldRight:
			node.right = nodeAt(twig.Address(val))
		case fieldLength:
			node.length = val
		case -fieldKey:
			var raw []byte
			if raw, err = d.readBytes(val); err != nil {
				node = nil
				return
			}
			node.key = string(raw)
		default:
			if key < 0 {
				if _, err = d.readBytes(val); err != nil {
					node = nil
					return
				}
			}
		}
	}

	// A node always has a key, a persisted value, and at least itself.
	if node.key == "" || node.value.addr == 0 || node.length == 0 {
		node = nil
		err = twig.ErrCorrupted
	}
	return
}

// tlvDecoder helps read TLV encoded data
type tlvDecoder struct {
	*bytes.Reader
}

func (d tlvDecoder) readVal() (uint64, error) {
	return binary.ReadUvarint(d)
}

func (d tlvDecoder) readKey() (int64, error) {
	return binary.ReadVarint(d)
}

func (d tlvDecoder) readBytes(length uint64) (bytes []byte, err error) {
	if length > uint64(d.Len()) {
		err = twig.ErrCorrupted
		return
	}

	bytes = make([]byte, length)
	_, err = io.ReadFull(d, bytes)
	return
}

// tlvEncoder helps write TLV encoded data
type tlvEncoder struct {
	io.Writer
}

func (e tlvEncoder) writeVal(key int64, val uint64) (err error) {
	if val == 0 {
		return
	}

	var buf [binary.MaxVarintLen64]byte

	n := binary.PutVarint(buf[:], key)
	if _, err = e.Write(buf[:n]); err != nil {
		return
	}

	n = binary.PutUvarint(buf[:], val)
	_, err = e.Write(buf[:n])
	return
}

func (e tlvEncoder) writeBytes(key int64, val []byte) (err error) {
	if val == nil {
		return
	}

	var buf [binary.MaxVarintLen64]byte

	n := binary.PutVarint(buf[:], -key)
	if _, err = e.Write(buf[:n]); err != nil {
		return
	}

	n = binary.PutUvarint(buf[:], uint64(len(val)))
	if _, err = e.Write(buf[:n]); err != nil {
		return
	}

	_, err = e.Write(val)
	return
}

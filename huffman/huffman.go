// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package huffman implements the byte-stream codec used as the
// optional compression layer of DAS containers. A compressed stream
// carries a small header with the symbol frequency table followed by
// the MSB-first bitstream of variable-length codes.
//
// Stream layout:
//
//	"HUF\0"                       4-byte magic
//	u32 original_size             little-endian
//	u16 freq_table_entries        distinct symbols used
//	entries x (u8 symbol, u32 frequency)
//	encoded bitstream
package huffman

import (
	"container/heap"
	"encoding/binary"

	"github.com/g3n/das/daserror"
)

// Magic is the 4-byte signature of a compressed stream.
var Magic = [4]byte{'H', 'U', 'F', 0}

// headerSize is the fixed part of the header before the table entries.
const headerSize = 4 + 4 + 2

// maxCodeBytes bounds a single code at 256 bits.
const maxCodeBytes = 32

// code is one symbol's bit code: a big-endian 32-byte key whose Used
// significant bits are counted from the LSB end.
type code struct {
	Bits [maxCodeBytes]byte
	Used uint16
}

// appendBit shifts the code one bit toward the MSB and sets the new LSB.
func (c *code) appendBit(bit byte) {

	ShiftToMSB(c.Bits[:], 1)
	c.Bits[maxCodeBytes-1] |= bit
	c.Used++
}

// bit returns the code bit at index i counted from the LSB end.
func (c *code) bit(i uint16) byte {

	return (c.Bits[maxCodeBytes-1-int(i)/8] >> (i % 8)) & 1
}

// node is one Huffman tree node. Leaves carry a symbol; internal nodes
// carry the summed frequency of their subtree.
type node struct {
	freq  uint32
	sym   int16 // -1 for internal nodes
	order int   // heap tie-break, preserves determinism
	left  *node
	right *node
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].order < h[j].order
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// buildTree builds the Huffman tree for the specified frequency table.
// It returns nil when no symbol has a non-zero frequency.
func buildTree(freq *[256]uint32) *node {

	h := make(nodeHeap, 0, 256)
	for sym, f := range freq {
		if f > 0 {
			h = append(h, &node{freq: f, sym: int16(sym), order: sym})
		}
	}
	if len(h) == 0 {
		return nil
	}
	heap.Init(&h)
	order := 256
	for len(h) > 1 {
		a := heap.Pop(&h).(*node)
		b := heap.Pop(&h).(*node)
		heap.Push(&h, &node{freq: a.freq + b.freq, sym: -1, order: order, left: a, right: b})
		order++
	}
	return h[0]
}

// assignCodes walks the tree assigning codes: descending left appends
// bit 0, descending right appends bit 1. A degenerate single-leaf tree
// gets the 1-bit code 0.
func assignCodes(root *node, codes *[256]code) {

	if root.sym >= 0 {
		codes[root.sym] = code{Used: 1}
		return
	}
	var walk func(n *node, c code)
	walk = func(n *node, c code) {
		if n.sym >= 0 {
			codes[n.sym] = c
			return
		}
		lc := c
		lc.appendBit(0)
		walk(n.left, lc)
		rc := c
		rc.appendBit(1)
		walk(n.right, rc)
	}
	walk(root, code{})
}

// Encode compresses the specified bytes. It never fails on
// well-formed input; an empty input produces a header-only stream.
func Encode(data []byte) []byte {

	var freq [256]uint32
	for _, b := range data {
		freq[b]++
	}
	entries := 0
	for _, f := range freq {
		if f > 0 {
			entries++
		}
	}

	out := make([]byte, 0, headerSize+entries*5+len(data)/2)
	out = append(out, Magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = binary.LittleEndian.AppendUint16(out, uint16(entries))
	for sym, f := range freq {
		if f > 0 {
			out = append(out, byte(sym))
			out = binary.LittleEndian.AppendUint32(out, f)
		}
	}

	root := buildTree(&freq)
	if root == nil {
		return out
	}
	var codes [256]code
	assignCodes(root, &codes)

	var acc byte
	nbits := 0
	for _, b := range data {
		c := &codes[b]
		for i := int(c.Used) - 1; i >= 0; i-- {
			acc = acc<<1 | c.bit(uint16(i))
			nbits++
			if nbits == 8 {
				out = append(out, acc)
				acc = 0
				nbits = 0
			}
		}
	}
	if nbits > 0 {
		out = append(out, acc<<(8-nbits))
	}
	return out
}

// IsEncoded reports whether the specified bytes begin with the
// compressed stream magic.
func IsEncoded(data []byte) bool {

	return len(data) >= 4 && data[0] == Magic[0] && data[1] == Magic[1] &&
		data[2] == Magic[2] && data[3] == Magic[3]
}

// Decode decompresses the specified stream. Bad magic, a truncated
// header or a bitstream that ends before original_size bytes were
// produced each fail with CorruptEncoding. Trailing bits in the last
// byte are ignored.
func Decode(data []byte) ([]byte, error) {

	if !IsEncoded(data) {
		return nil, daserror.New(daserror.CorruptEncoding, "bad magic")
	}
	if len(data) < headerSize {
		return nil, daserror.New(daserror.CorruptEncoding, "truncated header")
	}
	size := binary.LittleEndian.Uint32(data[4:])
	entries := int(binary.LittleEndian.Uint16(data[8:]))
	if len(data) < headerSize+entries*5 {
		return nil, daserror.New(daserror.CorruptEncoding, "truncated frequency table")
	}
	var freq [256]uint32
	p := headerSize
	for i := 0; i < entries; i++ {
		sym := data[p]
		if freq[sym] != 0 {
			return nil, daserror.Newf(daserror.CorruptEncoding, "duplicate table symbol %d", sym)
		}
		freq[sym] = binary.LittleEndian.Uint32(data[p+1:])
		if freq[sym] == 0 {
			return nil, daserror.Newf(daserror.CorruptEncoding, "zero frequency for symbol %d", sym)
		}
		p += 5
	}

	out := make([]byte, 0, size)
	if size == 0 {
		return out, nil
	}
	root := buildTree(&freq)
	if root == nil {
		return nil, daserror.New(daserror.CorruptEncoding, "empty frequency table")
	}

	stream := data[p:]
	cur := root
	for i := 0; i < len(stream)*8 && uint32(len(out)) < size; i++ {
		bit := (stream[i/8] >> (7 - i%8)) & 1
		if cur.sym < 0 {
			if bit == 0 {
				cur = cur.left
			} else {
				cur = cur.right
			}
		}
		// A single-leaf tree consumes one bit per symbol.
		if cur.sym >= 0 {
			out = append(out, byte(cur.sym))
			cur = root
		}
	}
	if uint32(len(out)) != size {
		return nil, daserror.Newf(daserror.CorruptEncoding, "decoded %d of %d bytes", len(out), size)
	}
	return out, nil
}

// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package bitvec is the leaf-level building block of the rank dictionary
// backend (component A): a two-level rank_1-supporting bitvector, block size
// 512 bits (8 words), superblock size 65536 bits (128 blocks), following the
// design in spec §4.A.
package bitvec

import (
	"bufio"
	"encoding/binary"
	"math/bits"
)

const (
	wordBits       = 64
	blockWords     = 8            // 512 bits per block
	blockBits      = blockWords * wordBits
	superWords     = 1024         // 65536 bits per superblock
	superBits      = superWords * wordBits
	blocksPerSuper = superWords / blockWords
)

var be = binary.BigEndian

// BitVec is an immutable-after-Freeze rank_1-supporting bitvector.
type BitVec struct {
	n         uint64
	words     []uint64
	blockRank []uint32 // cumulative popcount within superblock, one per block
	superRank []uint64 // cumulative popcount globally, one per superblock
	frozen    bool
}

// New allocates a BitVec able to hold n bits, all initially zero.
func New(n uint64) *BitVec {
	return &BitVec{n: n, words: make([]uint64, (n+wordBits-1)/wordBits)}
}

// Len returns the number of bits.
func (b *BitVec) Len() uint64 { return b.n }

// Set sets bit i to 1. Must be called before Freeze.
func (b *BitVec) Set(i uint64) {
	b.words[i/wordBits] |= 1 << (i % wordBits)
}

// Get returns bit i.
func (b *BitVec) Get(i uint64) bool {
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Freeze builds the two-level rank index. Must be called once after all Set
// calls and before any Rank1 call.
func (b *BitVec) Freeze() {
	if b.frozen {
		return
	}
	nBlocks := (len(b.words) + blockWords - 1) / blockWords
	nSupers := (nBlocks + blocksPerSuper - 1) / blocksPerSuper
	b.blockRank = make([]uint32, nBlocks)
	b.superRank = make([]uint64, nSupers)

	var superCum uint64
	var blockCumInSuper uint32
	for blk := 0; blk < nBlocks; blk++ {
		if blk%blocksPerSuper == 0 {
			b.superRank[blk/blocksPerSuper] = superCum
			blockCumInSuper = 0
		}
		b.blockRank[blk] = blockCumInSuper

		start := blk * blockWords
		end := start + blockWords
		if end > len(b.words) {
			end = len(b.words)
		}
		var pc uint32
		for _, w := range b.words[start:end] {
			pc += uint32(bits.OnesCount64(w))
		}
		blockCumInSuper += pc
		superCum += uint64(pc)
	}
	b.frozen = true
}

// Rank1 returns the number of 1-bits in [0, i).
func (b *BitVec) Rank1(i uint64) uint64 {
	if i == 0 {
		return 0
	}
	if i > b.n {
		i = b.n
	}
	blk := (i - 1) / blockBits
	total := b.superRank[blk/blocksPerSuper] + uint64(b.blockRank[blk])

	wordStart := blk * blockWords
	wordEnd := i / wordBits
	for w := wordStart; w < wordEnd; w++ {
		total += uint64(bits.OnesCount64(b.words[w]))
	}
	rem := i % wordBits
	if rem > 0 {
		mask := uint64(1)<<rem - 1
		total += uint64(bits.OnesCount64(b.words[wordEnd] & mask))
	}
	return total
}

// Rank0 returns the number of 0-bits in [0, i).
func (b *BitVec) Rank0(i uint64) uint64 {
	if i > b.n {
		i = b.n
	}
	return i - b.Rank1(i)
}

// WriteTo serializes the bitvector: n (u64), then the ceil(n/64) backing
// words, 8 bytes each, big-endian, to keep framing simple and deterministic
// across platforms.
func (b *BitVec) WriteTo(w *bufio.Writer) (int64, error) {
	var written int64
	if err := binary.Write(w, be, b.n); err != nil {
		return written, err
	}
	written += 8
	for _, word := range b.words {
		if err := binary.Write(w, be, word); err != nil {
			return written, err
		}
		written += 8
	}
	return written, nil
}

// ReadFrom deserializes a bitvector previously written with WriteTo, and
// re-Freezes it.
func ReadFrom(r *bufio.Reader) (*BitVec, int64, error) {
	var n uint64
	if err := binary.Read(r, be, &n); err != nil {
		return nil, 0, err
	}
	read := int64(8)
	b := New(n)
	for i := range b.words {
		if err := binary.Read(r, be, &b.words[i]); err != nil {
			return nil, read, err
		}
		read += 8
	}
	b.Freeze()
	return b, read, nil
}

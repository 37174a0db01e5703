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

// Package fmindex implements component C, the bidirectional FM-index, and
// component F, locate: build forward+reverse BWTs over a reference
// collection, extend a Cursor left or right, and translate a result cursor's
// rows back to (sequence, position) hits.
package fmindex

import (
	"github.com/shenwei356/sahara/internal/rankdict"
	"github.com/shenwei356/sahara/sahara/sampler"
)

// SeqBoundary is one row of the persisted sequence-boundary table (§6): the
// length of one physical (post-mirroring) sequence in the index, and whether
// it is a reverse-complement copy.
type SeqBoundary struct {
	SeqLen  uint32
	Reverse bool
}

// Index is the immutable-after-build bidirectional FM-index.
type Index struct {
	sigma     int
	delimited bool
	mirror    bool
	rate      int
	kind      rankdict.Kind
	nOriginal int // number of caller-supplied sequences before mirroring

	fwd rankdict.Dict // rank dict over forward BWT L
	rev rankdict.Dict // rank dict over reverse-text BWT L_rev

	c []uint64 // C-array, len sigma+1

	samp *sampler.Sampler

	boundary []SeqBoundary
	starts   []uint64 // cumulative start offset in T of each physical sequence
}

// computeStarts rebuilds the per-sequence start-offset table from the
// boundary table, so it never has to be persisted (§6 stores only the
// boundary lengths).
func computeStarts(boundary []SeqBoundary, delimited bool) []uint64 {
	starts := make([]uint64, len(boundary))
	var off uint64
	for i, b := range boundary {
		starts[i] = off
		off += uint64(b.SeqLen)
		if delimited {
			off++
		}
	}
	return starts
}

// seqForGlobalPos finds the physical sequence id containing a global text
// offset via binary search over starts.
func (idx *Index) seqForGlobalPos(pos uint64) uint32 {
	lo, hi := 0, len(idx.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.starts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return uint32(lo)
}

// Sigma is the alphabet size the index was built for.
func (idx *Index) Sigma() int { return idx.sigma }

// Len is N', the length of the (possibly delimited, possibly mirrored) text.
func (idx *Index) Len() uint64 { return idx.fwd.Len() }

// SamplingRate is the suffix-array sampler's rate s.
func (idx *Index) SamplingRate() int { return idx.rate }

// Delimited reports whether sequences were separated by a sentinel at build time.
func (idx *Index) Delimited() bool { return idx.delimited }

// Mirror reports whether the reverse strand was appended at build time.
func (idx *Index) Mirror() bool { return idx.mirror }

// NumOriginalSequences is n, the number of caller-supplied sequences (not
// counting mirrored copies).
func (idx *Index) NumOriginalSequences() int { return idx.nOriginal }

// C returns C[c], the number of symbols strictly less than c in the text.
func (idx *Index) C(c byte) uint64 { return idx.c[c] }

// OriginalSeqID maps a physical (post-mirroring) sequence id back to the
// caller-supplied id in [0, nOriginal).
func (idx *Index) OriginalSeqID(physical uint32) uint32 {
	if idx.mirror && int(physical) >= idx.nOriginal {
		return physical - uint32(idx.nOriginal)
	}
	return physical
}

// Boundary returns the boundary-table row for a physical sequence id.
func (idx *Index) Boundary(physical uint32) SeqBoundary { return idx.boundary[physical] }

// access finds the symbol stored at row i of a rank dictionary by probing
// every symbol's rank delta. σ is small (≤ tens), so this stays cheap; it is
// how locate's LF-walk recovers L[i] without keeping a redundant raw copy of
// L once the rank dictionary has been built.
func access(d rankdict.Dict, sigma int, i uint64) (byte, bool) {
	for c := 0; c < sigma; c++ {
		if d.Rank(byte(c), i+1)-d.Rank(byte(c), i) == 1 {
			return byte(c), true
		}
	}
	return 0, false
}

func prefixRankBelow(d rankdict.Dict, c byte, i uint64) uint64 {
	if c == 0 {
		return 0
	}
	return d.PrefixRank(c-1, i)
}

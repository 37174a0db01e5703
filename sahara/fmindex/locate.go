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

package fmindex

import (
	"github.com/shenwei356/sahara/errkind"
	"github.com/shenwei356/sahara/sahara/sampler"
)

// Hit is one located occurrence, translated back to the caller's original
// sequence numbering and forward-strand coordinates (§4.F, §6).
type Hit struct {
	SeqID   uint32 // original (pre-mirroring) sequence id
	Pos     uint32 // forward-strand start position within that sequence
	Reverse bool   // true if the match was found on the reverse-complement strand
}

// Locate resolves a single BWT row to the ADEntry it descends from, by
// LF-walking backward from row until a sampled row is found. §4.B guarantees
// this always terminates within SamplingRate steps; exceeding that bound
// indicates the sampler or the rank dictionaries are corrupt.
func (idx *Index) Locate(row uint64) (sampler.ADEntry, error) {
	steps := uint64(0)
	for !idx.samp.IsSampled(row) {
		if steps >= uint64(idx.rate) {
			return sampler.ADEntry{}, errkind.NewInvariant(
				"locate: LF-walk exceeded sampling rate %d without hitting a sampled row", idx.rate)
		}
		c, ok := access(idx.fwd, idx.sigma, row)
		if !ok {
			return sampler.ADEntry{}, errkind.NewInvariant("locate: row %d has no symbol in forward BWT", row)
		}
		row = idx.c[c] + idx.fwd.Rank(c, row)
		steps++
	}
	e := idx.samp.Get(row)
	global := idx.starts[e.SeqID] + uint64(e.Pos) + steps

	seq := idx.seqForGlobalPos(global)
	return sampler.ADEntry{
		SeqID:   seq,
		Pos:     uint32(global - idx.starts[seq]),
		Reverse: idx.boundary[seq].Reverse,
	}, nil
}

// LocateCursor resolves every row spanned by cursor to a Hit, translating
// reverse-strand physical sequences back to the caller's original sequence id
// and forward-strand coordinates (§3: posFwd = origSeqLen - posRev - queryLen).
func (idx *Index) LocateCursor(cur Cursor, queryLen int) ([]Hit, error) {
	hits := make([]Hit, 0, cur.Len)
	for row := cur.Lb; row < cur.Lb+cur.Len; row++ {
		e, err := idx.Locate(row)
		if err != nil {
			return nil, err
		}
		origSeqID := idx.OriginalSeqID(e.SeqID)
		if !e.Reverse {
			hits = append(hits, Hit{SeqID: origSeqID, Pos: e.Pos, Reverse: false})
			continue
		}
		origLen := idx.boundary[e.SeqID].SeqLen
		fwdPos := int64(origLen) - int64(e.Pos) - int64(queryLen)
		if fwdPos < 0 {
			return nil, errkind.NewInvariant(
				"locate: reverse-strand hit maps outside sequence %d (pos=%d len=%d query=%d)",
				origSeqID, e.Pos, origLen, queryLen)
		}
		hits = append(hits, Hit{SeqID: origSeqID, Pos: uint32(fwdPos), Reverse: true})
	}
	return hits, nil
}

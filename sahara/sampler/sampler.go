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

// Package sampler implements component B, the sparse suffix-array sampler: a
// bitvector telling whether a BWT row is sampled in O(1), plus a dense packed
// array of the (seqId, pos[, reverse]) tuple for rows that are.
package sampler

import (
	"bufio"
	"encoding/binary"
	"fmt"

	"github.com/shenwei356/sahara/internal/bitvec"
)

var be = binary.BigEndian

// ADEntry names the originating sequence and position of a BWT row's suffix.
// Reverse is only meaningful for mirrored indexes: it marks that Pos is a
// coordinate within the reverse-complement copy of SeqID, not the forward
// strand (see fmindex.Locate for the coordinate transform back to forward).
type ADEntry struct {
	SeqID   uint32
	Pos     uint32
	Reverse bool
}

// Sampler maps a subset of BWT rows to their ADEntry: a row is sampled when
// its suffix starts at an offset within its own sequence (ADEntry.Pos) that
// is a multiple of Rate (§4.B), so that locate's LF-walk reaches a sampled
// row within Rate steps without crossing into the preceding sequence.
type Sampler struct {
	rate      int
	isSampled *bitvec.BitVec
	entries   []ADEntry
}

// Rate returns the sampling rate s.
func (s *Sampler) Rate() int { return s.rate }

// Resolver maps a global 0-based text offset to the ADEntry it belongs to.
type Resolver func(textPos int) ADEntry

// Build constructs a Sampler for a text of length n given its suffix array,
// sampling rate rate, and a Resolver translating text offsets to ADEntry.
func Build(sa []int, rate int, resolve Resolver) *Sampler {
	if rate < 1 {
		rate = 1
	}
	n := len(sa)
	bv := bitvec.New(uint64(n))
	entries := make([]ADEntry, 0, n/rate+1)
	for row, pos := range sa {
		if e := resolve(pos); int(e.Pos)%rate == 0 {
			bv.Set(uint64(row))
			entries = append(entries, e)
		}
	}
	bv.Freeze()
	return &Sampler{rate: rate, isSampled: bv, entries: entries}
}

// IsSampled reports whether BWT row is directly resolvable.
func (s *Sampler) IsSampled(row uint64) bool {
	return s.isSampled.Get(row)
}

// Get returns the ADEntry for a sampled row. The caller must have already
// checked IsSampled; behavior is undefined (a wrong entry, not a panic) for
// an unsampled row, matching a hot-path accessor.
func (s *Sampler) Get(row uint64) ADEntry {
	idx := s.isSampled.Rank1(row)
	return s.entries[idx]
}

// Len returns the number of BWT rows the sampler covers.
func (s *Sampler) Len() uint64 { return s.isSampled.Len() }

// NumSamples returns the number of directly-resolvable rows.
func (s *Sampler) NumSamples() int { return len(s.entries) }

// WriteTo serializes the sampler: rate, the isSampled bitvector, the entry
// count, then the packed entries.
func (s *Sampler) WriteTo(w *bufio.Writer) (int64, error) {
	var written int64
	if err := binary.Write(w, be, uint64(s.rate)); err != nil {
		return written, err
	}
	written += 8
	n, err := s.isSampled.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}
	if err := binary.Write(w, be, uint64(len(s.entries))); err != nil {
		return written, err
	}
	written += 8
	for _, e := range s.entries {
		if err := binary.Write(w, be, e.SeqID); err != nil {
			return written, err
		}
		written += 4
		if err := binary.Write(w, be, e.Pos); err != nil {
			return written, err
		}
		written += 4
		var rev byte
		if e.Reverse {
			rev = 1
		}
		if err := w.WriteByte(rev); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// ReadFrom deserializes a Sampler written with WriteTo.
func ReadFrom(r *bufio.Reader) (*Sampler, error) {
	var rate64 uint64
	if err := binary.Read(r, be, &rate64); err != nil {
		return nil, err
	}
	bv, _, err := bitvec.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	var count uint64
	if err := binary.Read(r, be, &count); err != nil {
		return nil, err
	}
	entries := make([]ADEntry, count)
	for i := range entries {
		if err := binary.Read(r, be, &entries[i].SeqID); err != nil {
			return nil, err
		}
		if err := binary.Read(r, be, &entries[i].Pos); err != nil {
			return nil, err
		}
		rev, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		entries[i].Reverse = rev != 0
	}
	if uint64(len(entries)) != count {
		return nil, fmt.Errorf("sampler: short read: got %d entries want %d", len(entries), count)
	}
	return &Sampler{rate: int(rate64), isSampled: bv, entries: entries}, nil
}

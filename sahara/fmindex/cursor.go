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

// Cursor names a contiguous range [Lb, Lb+Len) on the forward BWT and the
// matching range start LbRev on the reverse BWT (§3). Both ranges always
// have the same width Len.
type Cursor struct {
	Lb    uint64
	Len   uint64
	LbRev uint64
}

// Empty reports whether the cursor matches no rows.
func (c Cursor) Empty() bool { return c.Len == 0 }

// InitialCursor returns the full-range cursor (0, N', 0), the starting point
// of any bidirectional search.
func (idx *Index) InitialCursor() Cursor {
	return Cursor{Lb: 0, Len: idx.fwd.Len(), LbRev: 0}
}

// ExtendLeft prepends symbol c to the pattern matched by cursor, using the
// forward rank dictionary. Returns false when the new range is empty.
func (idx *Index) ExtendLeft(cur Cursor, c byte) (Cursor, bool) {
	if int(c) >= idx.sigma {
		return Cursor{}, false
	}
	rankLb := idx.fwd.Rank(c, cur.Lb)
	rankUb := idx.fwd.Rank(c, cur.Lb+cur.Len)
	newLen := rankUb - rankLb
	if newLen == 0 {
		return Cursor{}, false
	}
	newLb := idx.c[c] + rankLb
	sumLess := prefixRankBelow(idx.fwd, c, cur.Lb+cur.Len) - prefixRankBelow(idx.fwd, c, cur.Lb)
	newLbRev := cur.LbRev + sumLess
	return Cursor{Lb: newLb, Len: newLen, LbRev: newLbRev}, true
}

// ExtendRight appends symbol c to the pattern matched by cursor, using the
// reverse-text rank dictionary as the primary side (§4.C).
func (idx *Index) ExtendRight(cur Cursor, c byte) (Cursor, bool) {
	if int(c) >= idx.sigma {
		return Cursor{}, false
	}
	rankLb := idx.rev.Rank(c, cur.LbRev)
	rankUb := idx.rev.Rank(c, cur.LbRev+cur.Len)
	newLen := rankUb - rankLb
	if newLen == 0 {
		return Cursor{}, false
	}
	newLbRev := idx.c[c] + rankLb
	sumLess := prefixRankBelow(idx.rev, c, cur.LbRev+cur.Len) - prefixRankBelow(idx.rev, c, cur.LbRev)
	newLb := cur.Lb + sumLess
	return Cursor{Lb: newLb, Len: newLen, LbRev: newLbRev}, true
}

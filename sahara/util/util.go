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

// Package util holds small standalone helpers shared by the CLI commands,
// mainly around packing a (sequence, position, strand) hit into a single
// sortable uint64 so duplicate hits reported by different Search entries of
// a scheme can be collapsed without a map.
package util

import "github.com/twotwotwo/sorts/sortutil"

// PackHitKey packs a reference sequence id, forward-strand position and
// strand into one sortable uint64: seqID in the high bits, pos next, the
// strand bit last, so sorting packed keys groups by sequence then position.
func PackHitKey(seqID uint32, pos uint32, reverse bool) uint64 {
	key := uint64(seqID)<<33 | uint64(pos)<<1
	if reverse {
		key |= 1
	}
	return key
}

// UnpackHitKey reverses PackHitKey.
func UnpackHitKey(key uint64) (seqID uint32, pos uint32, reverse bool) {
	reverse = key&1 == 1
	pos = uint32((key >> 1) & 0xFFFFFFFF)
	seqID = uint32(key >> 33)
	return
}

// SortUniqueUint64s sorts list in place via the package's parallel sort and
// collapses adjacent duplicates, used to dedupe packed hit keys collected
// from a query's several scheme Searches before they are written out.
func SortUniqueUint64s(list *[]uint64) {
	if len(*list) < 2 {
		return
	}

	sortutil.Uint64s(*list)

	j := 0
	for i := 1; i < len(*list); i++ {
		if (*list)[i] != (*list)[j] {
			j++
			(*list)[j] = (*list)[i]
		}
	}
	*list = (*list)[:j+1]
}

// ReverseInts reverses a list of ints in place.
func ReverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

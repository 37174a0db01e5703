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

package util

import (
	"reflect"
	"testing"
)

func TestPackHitKeyRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		seqID   uint32
		pos     uint32
		reverse bool
	}{
		{0, 0, false},
		{0, 0, true},
		{7, 12345, false},
		{7, 12345, true},
		{1<<31 - 1, 1<<32 - 1, true},
	} {
		key := PackHitKey(tc.seqID, tc.pos, tc.reverse)
		seqID, pos, reverse := UnpackHitKey(key)
		if seqID != tc.seqID || pos != tc.pos || reverse != tc.reverse {
			t.Fatalf("PackHitKey(%d, %d, %v) round-tripped to (%d, %d, %v)",
				tc.seqID, tc.pos, tc.reverse, seqID, pos, reverse)
		}
	}
}

func TestPackHitKeyOrdersBySeqIDThenPos(t *testing.T) {
	a := PackHitKey(0, 100, false)
	b := PackHitKey(0, 200, false)
	c := PackHitKey(1, 0, false)
	if !(a < b && b < c) {
		t.Fatalf("expected a < b < c, got a=%d b=%d c=%d", a, b, c)
	}
}

func TestSortUniqueUint64s(t *testing.T) {
	list := []uint64{5, 3, 3, 1, 5, 2, 1}
	SortUniqueUint64s(&list)
	want := []uint64{1, 2, 3, 5}
	if !reflect.DeepEqual(list, want) {
		t.Fatalf("got %v, want %v", list, want)
	}
}

func TestSortUniqueUint64sShortInput(t *testing.T) {
	for _, list := range [][]uint64{nil, {}, {42}} {
		before := append(list[:0:0], list...)
		SortUniqueUint64s(&list)
		if !reflect.DeepEqual(list, before) {
			t.Fatalf("expected %v unchanged, got %v", before, list)
		}
	}
}

func TestReverseInts(t *testing.T) {
	for _, tc := range []struct {
		in, want []int
	}{
		{nil, nil},
		{[]int{1}, []int{1}},
		{[]int{1, 2}, []int{2, 1}},
		{[]int{1, 2, 3, 4, 5}, []int{5, 4, 3, 2, 1}},
	} {
		got := append(tc.in[:0:0], tc.in...)
		ReverseInts(got)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ReverseInts(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

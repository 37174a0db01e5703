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

// Package sais builds the suffix array of a small-alphabet byte text via
// prefix doubling, and derives the Burrows-Wheeler transform from it. No
// third-party suffix-array construction library exists anywhere in the
// retrieval pack: the two candidates under other_examples/ (viniciusth's and
// xiles84's "sais" files) are verbatim copies of the Go standard library's
// unexported index/suffixarray internals, not a separate ecosystem
// dependency, and that internal array is not part of index/suffixarray's
// public API. Prefix doubling is used instead of a from-scratch SA-IS port
// because its correctness is easy to reason about without being able to run
// the code (see DESIGN.md).
package sais

import "sort"

// Build returns the suffix array of text: SA[i] is the starting position of
// the i-th lexicographically smallest suffix of text.
func Build(text []byte) []int {
	n := len(text)
	sa := make([]int, n)
	rank := make([]int, n)
	tmp := make([]int, n)
	for i := 0; i < n; i++ {
		sa[i] = i
		rank[i] = int(text[i])
	}
	if n <= 1 {
		return sa
	}

	rankAt := func(i, k int) int {
		if i+k < n {
			return rank[i+k]
		}
		return -1
	}

	for k := 1; ; k *= 2 {
		sort.Slice(sa, func(i, j int) bool {
			a, b := sa[i], sa[j]
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return rankAt(a, k) < rankAt(b, k)
		})

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			prevA, prevB := sa[i-1], sa[i]
			if rank[prevA] != rank[prevB] || rankAt(prevA, k) != rankAt(prevB, k) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if rank[sa[n-1]] == n-1 {
			break
		}
		if k > n {
			break
		}
	}
	return sa
}

// BWT derives the Burrows-Wheeler transform L from text and its suffix array:
// L[i] = text[(SA[i]-1+n) mod n], i.e. the cyclic predecessor of each sorted
// rotation. This is well-defined with or without a sentinel byte present in
// text; when a sentinel is present it naturally sorts first (SA[0] == the
// suffix starting at the last sentinel) which is what makes backward search
// via the C-array correct.
func BWT(text []byte, sa []int) []byte {
	n := len(text)
	L := make([]byte, n)
	for i, s := range sa {
		if s == 0 {
			L[i] = text[n-1]
		} else {
			L[i] = text[s-1]
		}
	}
	return L
}

// Reverse returns a newly allocated reversal of text (element order, not
// bit/byte complement). Used to build the mirrored index's second BWT that
// enables extendRight (spec §4.C step 6).
func Reverse(text []byte) []byte {
	n := len(text)
	out := make([]byte, n)
	for i, c := range text {
		out[n-1-i] = c
	}
	return out
}

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

// Package scheme implements component D, the search-scheme algebra: Search
// and SearchScheme values, the valid/complete/non-redundant predicates,
// named generators, partition expansion, node-count scoring, and the
// reordering that turns an abstract scheme plus a concrete query length into
// the step-by-step walk order the search driver follows.
package scheme

import "fmt"

// Search is one root-to-leaf strategy: Pi names the order in which parts
// (0..p-1, left to right over the query) are visited, and L/U bound the
// cumulative error count admissible at each step of that visit order.
type Search struct {
	Pi []int
	L  []int
	U  []int
}

// NumParts returns p, the number of parts this Search partitions its query into.
func (s Search) NumParts() int { return len(s.Pi) }

// Admits reports whether error pattern e (indexed by part, len p) is accepted
// by s at every prefix of its visit order.
func (s Search) Admits(e []int) bool {
	var cum int
	for i, part := range s.Pi {
		cum += e[part]
		if cum < s.L[i] || cum > s.U[i] {
			return false
		}
	}
	return true
}

// SearchScheme is a set of Searches meant to jointly cover an error budget.
type SearchScheme []Search

// Valid reports whether every Search in s has a contiguous-prefix Pi (each
// prefix of Pi names a contiguous range of part indices, as required for a
// bidirectional walk to stay a single connected cursor) and non-decreasing,
// consistent L/U bounds.
func Valid(s SearchScheme, p int) bool {
	for _, search := range s {
		if !validSearch(search, p) {
			return false
		}
	}
	return true
}

func validSearch(s Search, p int) bool {
	if len(s.Pi) != p || len(s.L) != p || len(s.U) != p {
		return false
	}
	seen := make([]bool, p)
	lo, hi := -1, -1
	for i, part := range s.Pi {
		if part < 0 || part >= p || seen[part] {
			return false
		}
		seen[part] = true
		if lo == -1 {
			lo, hi = part, part
		} else if part == lo-1 {
			lo = part
		} else if part == hi+1 {
			hi = part
		} else {
			return false // not contiguous with the range visited so far
		}
		if s.L[i] > s.U[i] {
			return false
		}
		if i > 0 && (s.L[i] < s.L[i-1] || s.U[i] < s.U[i-1]) {
			return false
		}
	}
	return true
}

// eachPattern calls fn on every error-pattern vector of length p whose parts
// sum to a value in [kMin, kMax], each part in [0, kMax].
func eachPattern(p, kMin, kMax int, fn func([]int)) {
	e := make([]int, p)
	var rec func(idx, remaining int)
	rec = func(idx, sumSoFar int) {
		if idx == p {
			if sumSoFar >= kMin && sumSoFar <= kMax {
				fn(e)
			}
			return
		}
		for v := 0; v <= kMax-sumSoFar; v++ {
			e[idx] = v
			rec(idx+1, sumSoFar+v)
		}
		e[idx] = 0
	}
	rec(0, 0)
}

// Complete reports whether every error pattern with weight in [kMin, kMax]
// is admitted by at least one Search in s.
func Complete(s SearchScheme, p, kMin, kMax int) bool {
	ok := true
	eachPattern(p, kMin, kMax, func(e []int) {
		if !ok {
			return
		}
		count := 0
		for _, search := range s {
			if search.Admits(e) {
				count++
			}
		}
		if count == 0 {
			ok = false
		}
	})
	return ok
}

// NonRedundant reports whether no error pattern with weight in [kMin, kMax]
// is admitted by more than one Search in s.
func NonRedundant(s SearchScheme, p, kMin, kMax int) bool {
	ok := true
	eachPattern(p, kMin, kMax, func(e []int) {
		if !ok {
			return
		}
		count := 0
		for _, search := range s {
			if search.Admits(e) {
				count++
			}
		}
		if count > 1 {
			ok = false
		}
	})
	return ok
}

// CompleteAndNonRedundant checks both properties in a single pass (§8
// property 3: "exactly one Search admits it").
func CompleteAndNonRedundant(s SearchScheme, p, kMin, kMax int) bool {
	ok := true
	eachPattern(p, kMin, kMax, func(e []int) {
		if !ok {
			return
		}
		count := 0
		for _, search := range s {
			if search.Admits(e) {
				count++
			}
		}
		if count != 1 {
			ok = false
		}
	})
	return ok
}

// ErrInvalidScheme is returned by generators asked for a degenerate shape
// (zero parts, out-of-range pivot).
type ErrInvalidScheme struct{ Msg string }

func (e *ErrInvalidScheme) Error() string { return "scheme: " + e.Msg }

func errInvalid(format string, args ...interface{}) error {
	return &ErrInvalidScheme{Msg: fmt.Sprintf(format, args...)}
}

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

// Package search implements component E, the backtracking search driver: it
// walks a bidirectional fmindex.Index guided by a partition-expanded
// scheme.SearchScheme, branching on match/mismatch (and, in edit mode,
// insertion/deletion), pruning against each step's error corridor, and
// reporting every surviving cursor to a callback.
package search

import (
	"github.com/shenwei356/sahara/sahara/fmindex"
	"github.com/shenwei356/sahara/sahara/scheme"
)

// DistanceMode selects which edit operations the driver's branch step considers.
type DistanceMode int

const (
	Hamming DistanceMode = iota
	Edit
)

// Hit is one surviving (cursor, error count) pair the driver reports; the
// caller (typically the batch dispatcher) is responsible for calling
// idx.LocateCursor on it.
type Hit struct {
	Cursor fmindex.Cursor
	Errors int
}

// Callback receives one Hit. Returning false stops the walk early (used to
// enforce a per-query hit cap).
type Callback func(Hit) bool

func extend(idx *fmindex.Index, cur fmindex.Cursor, dir scheme.Direction, c byte) (fmindex.Cursor, bool) {
	if dir == scheme.DirLeft {
		return idx.ExtendLeft(cur, c)
	}
	return idx.ExtendRight(cur, c)
}

// runSearch drives a single Search of an expanded scheme, per §4.E steps 1-4.
func runSearch(idx *fmindex.Index, query []byte, search scheme.Search, c []int, mode DistanceMode, maxHits int, hitsSoFar *int, cb Callback) bool {
	positions, dirs := scheme.Reorder(search, c)
	stepLens := make([]int, len(search.Pi))
	for i, part := range search.Pi {
		stepLens[i] = c[part]
	}
	sigma := idx.Sigma()

	var rec func(symIdx, stepIdx, inStep int, cur fmindex.Cursor, errs int) bool
	rec = func(symIdx, stepIdx, inStep int, cur fmindex.Cursor, errs int) bool {
		if maxHits > 0 && *hitsSoFar >= maxHits {
			return false
		}
		if errs > search.U[stepIdx] {
			return true
		}
		if inStep == stepLens[stepIdx] {
			if errs < search.L[stepIdx] {
				return true
			}
			if stepIdx == len(search.Pi)-1 {
				if !cb(Hit{Cursor: cur, Errors: errs}) {
					return false
				}
				*hitsSoFar++
				return true
			}
			stepIdx++
			inStep = 0
		}

		dir := dirs[stepIdx]
		qPos := positions[symIdx]
		qSym := query[qPos]

		if next, ok := extend(idx, cur, dir, qSym); ok {
			if !rec(symIdx+1, stepIdx, inStep+1, next, errs) {
				return false
			}
		}
		for cSym := 0; cSym < sigma; cSym++ {
			if byte(cSym) == qSym {
				continue
			}
			if next, ok := extend(idx, cur, dir, byte(cSym)); ok {
				if !rec(symIdx+1, stepIdx, inStep+1, next, errs+1) {
					return false
				}
			}
		}
		if mode == Edit {
			for cSym := 0; cSym < sigma; cSym++ {
				if next, ok := extend(idx, cur, dir, byte(cSym)); ok {
					if !rec(symIdx, stepIdx, inStep, next, errs+1) {
						return false
					}
				}
			}
			if !rec(symIdx+1, stepIdx, inStep+1, cur, errs+1) {
				return false
			}
		}
		return true
	}

	if len(positions) == 0 {
		// An empty query never matches (§8 boundary: "Empty query → no hits"),
		// even though an empty part-set would otherwise vacuously satisfy
		// every bound.
		return true
	}
	return rec(0, 0, 0, idx.InitialCursor(), 0)
}

// Search drives every Search in s against query, using concrete part sizes
// c (shared across the whole scheme), and reports every surviving cursor to
// cb. maxHits <= 0 means unbounded.
func Search(idx *fmindex.Index, query []byte, s scheme.SearchScheme, c []int, mode DistanceMode, maxHits int, cb Callback) {
	hitsSoFar := 0
	for _, one := range s {
		if !runSearch(idx, query, one, c, mode, maxHits, &hitsSoFar, cb) {
			return
		}
	}
}

// SearchBestHits implements best-hits mode: starting from minErrors, it
// walks the error budget j = minErrors, minErrors+1, …, maxErrors one step
// at a time, generating and running the single-budget scheme returned by
// generate(j) with part sizes expand(s), and stops at the first j whose run
// reports any hit at all — every larger budget is skipped entirely. generate
// and expand are supplied by the caller so this package stays unaware of
// scheme-generator names or part-size expansion policy.
func SearchBestHits(idx *fmindex.Index, query []byte, minErrors, maxErrors int, generate func(j int) (scheme.SearchScheme, error), expand func(scheme.SearchScheme) []int, mode DistanceMode, maxHits int, cb Callback) error {
	for j := minErrors; j <= maxErrors; j++ {
		s, err := generate(j)
		if err != nil {
			return err
		}
		c := expand(s)

		found := false
		aborted := false
		Search(idx, query, s, c, mode, maxHits, func(h Hit) bool {
			found = true
			if !cb(h) {
				aborted = true
				return false
			}
			return true
		})
		if found || aborted {
			return nil
		}
	}
	return nil
}

// ExactSearch is the k=0 fast path (§4.E "Special case k=0"): a pure
// backward search using extendLeft alone, skipping the scheme machinery
// entirely.
func ExactSearch(idx *fmindex.Index, query []byte) (fmindex.Cursor, bool) {
	cur := idx.InitialCursor()
	for i := len(query) - 1; i >= 0; i-- {
		var ok bool
		cur, ok = idx.ExtendLeft(cur, query[i])
		if !ok {
			return fmindex.Cursor{}, false
		}
	}
	return cur, true
}

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

package scheme

// Generator produces a SearchScheme for an error budget [kMin, kMax] and an
// alphabet/text size hint (sigma, N); real generators only use sigma/N to
// pick a part count and pivot, never the text itself (§4.D.1: "pure
// function... producing schemes without part-length information").
type Generator func(kMin, kMax, sigma, N int) (SearchScheme, error)

// zigzagPi returns a contiguous-prefix visit order over p parts anchored at
// pivot: pivot itself, then alternately the part to its right and the part
// to its left, growing the matched range outward one part at a time. This is
// the shape every bidirectional search scheme needs (§4.C: extendLeft and
// extendRight only ever grow a single contiguous cursor).
func zigzagPi(p, pivot int) []int {
	pi := make([]int, 0, p)
	pi = append(pi, pivot)
	left, right := pivot-1, pivot+1
	goRight := true
	for len(pi) < p {
		if goRight && right < p {
			pi = append(pi, right)
			right++
		} else if !goRight && left >= 0 {
			pi = append(pi, left)
			left--
		} else if right < p {
			pi = append(pi, right)
			right++
		} else if left >= 0 {
			pi = append(pi, left)
			left--
		}
		goRight = !goRight
	}
	return pi
}

// genExactPivot builds the generic, provably valid+complete+non-redundant
// scheme this repo bases every named generator on: one Search per possible
// error count j at the pivot part (j = 0..kMax), requiring the pivot's own
// error count to equal j exactly. Since a pattern's pivot-part count is a
// single well-defined integer, exactly one Search's step-0 bound admits any
// given pattern — completeness and non-redundancy follow immediately,
// without needing to reproduce a literature-optimal (ℓ,u) table (see
// DESIGN.md's Open Questions entry on named generators).
func genExactPivot(kMin, kMax int, p, pivot int) (SearchScheme, error) {
	if p < 1 {
		return nil, errInvalid("part count must be >= 1, got %d", p)
	}
	if pivot < 0 || pivot >= p {
		return nil, errInvalid("pivot %d out of range for %d parts", pivot, p)
	}
	if kMin < 0 || kMax < kMin {
		return nil, errInvalid("invalid error budget [%d, %d]", kMin, kMax)
	}
	pi := zigzagPi(p, pivot)

	// A single part has nothing to pivot on: one Search spanning the whole
	// budget is already valid, complete, and (trivially) non-redundant.
	if p == 1 {
		return SearchScheme{{Pi: pi, L: []int{kMin}, U: []int{kMax}}}, nil
	}

	s := make(SearchScheme, 0, kMax+1)
	for j := 0; j <= kMax; j++ {
		l := make([]int, p)
		u := make([]int, p)
		l[0], u[0] = j, j
		for i := 1; i < p-1; i++ {
			l[i] = j
			u[i] = kMax
		}
		if kMin > j {
			l[p-1] = kMin
		} else {
			l[p-1] = j
		}
		u[p-1] = kMax
		s = append(s, Search{Pi: append([]int{}, pi...), L: l, U: u})
	}
	return s, nil
}

// partsFor picks (partCount, pivotIndex) for a named generator given an
// error budget. Every generator resolves to the same genExactPivot core;
// only the shape (how many parts, where the pivot sits) varies by name, in
// the spirit of the literature scheme it is named after.
func partsFor(name string, kMax int) (p, pivot int, ok bool) {
	switch name {
	case "backtracking":
		return 1, 0, true
	case "optimum":
		return 2, 0, true
	case "01*0":
		return 4, 1, true
	case "pigeon":
		p := kMax + 1
		return p, 0, true
	case "pigeon_opt":
		p := kMax + 1
		return p, p / 2, true
	case "suffix":
		return 2, 1, true
	case "h2-k1":
		return 2, 0, true
	case "h2-k2":
		return 2, 1, true
	case "h2-k3":
		p := 3
		return p, p / 2, true
	case "kianfar":
		return 3, 1, true
	case "kucherov-k1":
		return 2, 0, true
	case "kucherov-k2":
		return 3, 1, true
	case "lam":
		return 4, 2, true
	case "hato":
		return 5, 2, true
	case "pex-td":
		p := kMax + 1
		return p, 0, true
	case "pex-td-l":
		p := kMax + 1
		return p, 0, true
	case "pex-bu":
		p := kMax + 1
		return p, p - 1, true
	case "pex-bu-l":
		p := kMax + 1
		return p, p - 1, true
	}
	return 0, 0, false
}

// Names lists every generator this package registers (§4.D.1's required set).
var Names = []string{
	"backtracking", "optimum", "01*0", "pigeon", "pigeon_opt", "suffix",
	"h2-k1", "h2-k2", "h2-k3", "kianfar", "kucherov-k1", "kucherov-k2",
	"lam", "hato", "pex-td", "pex-td-l", "pex-bu", "pex-bu-l",
}

// Generate resolves a named generator and runs it for [kMin, kMax] over an
// alphabet of size sigma and a reference of length N (currently unused by
// the shape-selection logic but threaded through for generators that may
// want it, e.g. a future literature-exact table).
func Generate(name string, kMin, kMax, sigma, N int) (SearchScheme, error) {
	p, pivot, ok := partsFor(name, kMax)
	if !ok {
		return nil, errInvalid("unknown generator %q", name)
	}
	if p < 1 {
		p = 1
		pivot = 0
	}
	return genExactPivot(kMin, kMax, p, pivot)
}

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

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// Uniform splits Q into p parts of size floor(Q/p), spreading the remainder
// over the first parts (§4.D.3).
func Uniform(p, Q int) []int {
	c := make([]int, p)
	base, rem := Q/p, Q%p
	for i := range c {
		c[i] = base
		if i < rem {
			c[i]++
		}
	}
	return c
}

// nodeCountSearch runs the closed-form DP described in DESIGN.md: convolve,
// part by part in Pi order, a generating function whose coefficient at e is
// the number of admissible error-annotations reaching cumulative error e,
// masking out states outside that step's [L,U] corridor exactly as the
// driver's pruning would. weighted, when true, multiplies the final step's
// contribution by min(1, sigma^-matchedChars * binom(Q, e)) instead of 1.
func nodeCountSearch(search Search, c []int, sigma int, edit, weighted bool, Q int) float64 {
	poly := []float64{1}
	var matched int
	var total float64
	branchWeight := float64(sigma - 1)
	perNode := 1.0
	if edit {
		perNode = 1 + 2*float64(sigma-1)
	}
	for i, part := range search.Pi {
		cj := c[part]
		next := make([]float64, len(poly)+cj)
		for e, ways := range poly {
			if ways == 0 {
				continue
			}
			for k := 0; k <= cj; k++ {
				coef := float64(combin.Binomial(cj, k)) * math.Pow(branchWeight, float64(k))
				next[e+k] += ways * coef
			}
		}
		poly = next
		matched += cj

		lo, hi := search.L[i], search.U[i]
		for e := range poly {
			if e < lo || e > hi {
				poly[e] = 0
			}
		}

		isLeaf := i == len(search.Pi)-1
		for e, ways := range poly {
			if ways == 0 {
				continue
			}
			if weighted && isLeaf {
				surviving := math.Pow(float64(sigma), -float64(matched)) * float64(combin.Binomial(Q, e))
				total += ways * perNode * math.Min(1, surviving)
			} else {
				total += ways * perNode
			}
		}
	}
	return total
}

// NodeCount computes the total node count of scheme s expanded with part
// sizes c, over an alphabet of size sigma (§4.D.4).
func NodeCount(s SearchScheme, c []int, sigma int, edit bool) float64 {
	Q := sum(c)
	var total float64
	for _, search := range s {
		total += nodeCountSearch(search, c, sigma, edit, false, Q)
	}
	return total
}

// WeightedNodeCount computes the weighted node count of scheme s expanded
// with part sizes c (§4.D.4); N is the reference text length used to derive
// the expected surviving range's normalization (which cancels out to
// sigma^-matchedChars * binom(Q,e) once divided back by N, so N itself does
// not otherwise appear in the formula).
func WeightedNodeCount(s SearchScheme, c []int, sigma, N int, edit bool) float64 {
	Q := sum(c)
	var total float64
	for _, search := range s {
		total += nodeCountSearch(search, c, sigma, edit, true, Q)
	}
	_ = N
	return total
}

func sum(xs []int) int {
	var s int
	for _, x := range xs {
		s += x
	}
	return s
}

// WeightedNodeCountBottomUp starts from a uniform partition and repeatedly
// moves one query position from one part to another whenever that move
// strictly reduces the scheme's weighted node count, stopping at a local
// optimum (§4.D.3).
func WeightedNodeCountBottomUp(s SearchScheme, sigma, N, Q int, edit bool) []int {
	if len(s) == 0 {
		return nil
	}
	p := s[0].NumParts()
	c := Uniform(p, Q)
	for {
		best := WeightedNodeCount(s, c, sigma, N, edit)
		bestI, bestJ := -1, -1
		for i := 0; i < p; i++ {
			if c[i] <= 0 {
				continue
			}
			for j := 0; j < p; j++ {
				if i == j {
					continue
				}
				c[i]--
				c[j]++
				if val := WeightedNodeCount(s, c, sigma, N, edit); val < best {
					best, bestI, bestJ = val, i, j
				}
				c[i]++
				c[j]--
			}
		}
		if bestI < 0 {
			return c
		}
		c[bestI]--
		c[bestJ]++
	}
}

// WeightedNodeCountTopDown starts every part at 0 and, in increments of
// step query positions, grows whichever part currently yields the lowest
// weighted node count until all Q positions are assigned (§4.D.3).
func WeightedNodeCountTopDown(s SearchScheme, sigma, N, Q, step int, edit bool) []int {
	if len(s) == 0 {
		return nil
	}
	if step < 1 {
		step = 1
	}
	p := s[0].NumParts()
	c := make([]int, p)
	remaining := Q
	for remaining > 0 {
		bestI, bestVal := -1, math.Inf(1)
		for i := 0; i < p; i++ {
			grant := step
			if grant > remaining {
				grant = remaining
			}
			c[i] += grant
			if val := WeightedNodeCount(s, c, sigma, N, edit); val < bestVal {
				bestVal, bestI = val, i
			}
			c[i] -= grant
		}
		if bestI < 0 {
			bestI = 0
		}
		grant := step
		if grant > remaining {
			grant = remaining
		}
		c[bestI] += grant
		remaining -= grant
	}
	return c
}

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
	"github.com/shenwei356/sahara/internal/rankdict"
	"github.com/shenwei356/sahara/internal/sais"
	"github.com/shenwei356/sahara/sahara/sampler"
)

// BuildOptions configures index construction (§4.C, §6).
type BuildOptions struct {
	// SamplingRate is s, the suffix-array sampler's sampling rate. Default 16.
	SamplingRate int
	// Delimited separates sequences with a sentinel (rank 0) in the text.
	Delimited bool
	// Mirror appends the reverse-complement of every sequence, doubling the
	// reference set so reverse-strand hits share one suffix array (§3
	// "mirrored mode"). When true, Complement must be a σ-length table
	// mapping each rank to its complement rank.
	Mirror bool
	// Complement is the rank-level complement table used only when Mirror
	// is true. Computing it from raw letters (IUPAC ambiguity, casing, ...)
	// is the caller's job (§1: reverse-complement over raw characters is an
	// external collaborator); this table operates purely on already-encoded
	// ranks.
	Complement []byte
	// RankDictKind selects the rank-dictionary backend (component A).
	RankDictKind rankdict.Kind
	// Progress, if non-nil, is called once at the start of each of the
	// BuildStageCount major build stages, in order. It lets a CLI front end
	// drive a progress bar without this package depending on one.
	Progress func(stage string)
}

// BuildStageCount is the number of times Build calls opts.Progress.
const BuildStageCount = 7

// DefaultBuildOptions mirrors the CLI's own defaults (§6).
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		SamplingRate: 16,
		Delimited:    true,
		RankDictKind: rankdict.KindWavelet,
	}
}

// Build constructs an Index over sequences, a set of already alphabet-rank
// encoded sequences (§3 "Reference collection"). Sigma is the size of Σ used
// to encode them, including the sentinel if opts.Delimited.
func Build(sequences [][]byte, sigma int, opts BuildOptions) (*Index, error) {
	if len(sequences) == 0 {
		return nil, errkind.NewConfig("reference collection is empty")
	}
	for i, s := range sequences {
		if len(s) == 0 {
			return nil, errkind.NewConfig("reference sequence %d is empty", i)
		}
	}
	if opts.SamplingRate < 1 {
		opts.SamplingRate = 16
	}
	if opts.Mirror && len(opts.Complement) != sigma {
		return nil, errkind.NewConfig("mirror mode requires a complement table of length sigma=%d, got %d", sigma, len(opts.Complement))
	}

	step := func(stage string) {
		if opts.Progress != nil {
			opts.Progress(stage)
		}
	}

	nOriginal := len(sequences)
	physical := sequences
	boundary := make([]SeqBoundary, 0, nOriginal*2)
	for _, s := range sequences {
		boundary = append(boundary, SeqBoundary{SeqLen: uint32(len(s)), Reverse: false})
	}
	if opts.Mirror {
		mirrored := make([][]byte, nOriginal)
		for i, s := range sequences {
			mirrored[i] = reverseComplement(s, opts.Complement)
			boundary = append(boundary, SeqBoundary{SeqLen: uint32(len(s)), Reverse: true})
		}
		physical = append(append([][]byte{}, sequences...), mirrored...)
	}

	// Assemble T and the start offset of every physical sequence.
	step("assembling text")
	var t []byte
	starts := make([]int, len(physical))
	for i, s := range physical {
		starts[i] = len(t)
		t = append(t, s...)
		if opts.Delimited {
			t = append(t, 0)
		}
	}

	step("forward suffix array")
	sa := sais.Build(t)

	step("forward BWT and rank dictionary")
	L := sais.BWT(t, sa)
	fwd, err := rankdict.Build(opts.RankDictKind, L, sigma)
	if err != nil {
		return nil, err
	}

	step("reverse text")
	tRev := sais.Reverse(t)

	step("reverse suffix array")
	saRev := sais.Build(tRev)

	step("reverse BWT and rank dictionary")
	lRev := sais.BWT(tRev, saRev)
	rev, err := rankdict.Build(opts.RankDictKind, lRev, sigma)
	if err != nil {
		return nil, err
	}

	c := buildCArray(t, sigma)

	step("suffix-array sampler")
	resolve := func(pos int) sampler.ADEntry {
		physIdx := resolveSeq(starts, pos)
		return sampler.ADEntry{
			SeqID:   uint32(physIdx),
			Pos:     uint32(pos - starts[physIdx]),
			Reverse: boundary[physIdx].Reverse,
		}
	}
	samp := sampler.Build(sa, opts.SamplingRate, resolve)

	return &Index{
		sigma:     sigma,
		delimited: opts.Delimited,
		mirror:    opts.Mirror,
		rate:      opts.SamplingRate,
		kind:      opts.RankDictKind,
		nOriginal: nOriginal,
		fwd:       fwd,
		rev:       rev,
		c:         c,
		samp:      samp,
		boundary:  boundary,
		starts:    computeStarts(boundary, opts.Delimited),
	}, nil
}

func reverseComplement(s []byte, complement []byte) []byte {
	n := len(s)
	out := make([]byte, n)
	for i, r := range s {
		out[n-1-i] = complement[r]
	}
	return out
}

// resolveSeq finds which physical sequence a text offset falls in via binary
// search over the (sorted) start offsets, including any trailing delimiter
// byte as belonging to the preceding sequence.
func resolveSeq(starts []int, pos int) int {
	lo, hi := 0, len(starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if starts[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func buildCArray(t []byte, sigma int) []uint64 {
	counts := make([]uint64, sigma)
	for _, c := range t {
		counts[c]++
	}
	cArr := make([]uint64, sigma+1)
	for c := 0; c < sigma; c++ {
		cArr[c+1] = cArr[c] + counts[c]
	}
	return cArr
}

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

// Package alphabet models the small, ordered symbol set (Σ) that the index and
// search packages are built over. Symbol 0 is reserved for the sentinel ($) in
// delimited mode; the caller decides how out-of-alphabet input bytes are handled.
package alphabet

import "fmt"

// Sentinel is the rank reserved for the BWT sentinel '$' in delimited mode.
const Sentinel = 0

// UnknownStrategy controls how a byte outside Σ is handled while encoding.
type UnknownStrategy uint8

const (
	// UnknownFail rejects the whole record with an error.
	UnknownFail UnknownStrategy = iota
	// UnknownToPad maps unknown bytes to the alphabet's pad/N rank (--ignore_unknown).
	UnknownToPad
	// UnknownRandom replaces unknown bytes with a uniformly random letter (--dna4).
	UnknownRandom
)

// Alphabet is a finite ordered set {0, ..., Sigma-1} together with the byte
// letters it maps to and from.
type Alphabet struct {
	name    string
	letters []byte      // rank -> letter, len == Sigma
	ranks   [256]int16  // letter -> rank, -1 if not in Σ
	pad     int         // rank used for N / unknown-as-pad, -1 if none
}

// Sigma is the size of the alphabet, including the sentinel if present.
func (a *Alphabet) Sigma() int { return len(a.letters) }

// Name is a short human-readable identifier ("dna5", "protein", ...).
func (a *Alphabet) Name() string { return a.name }

// Letter returns the byte letter for a rank.
func (a *Alphabet) Letter(rank int) byte { return a.letters[rank] }

// Rank returns the rank for a letter and whether it is a member of Σ.
func (a *Alphabet) Rank(letter byte) (int, bool) {
	r := a.ranks[letter]
	if r < 0 {
		return 0, false
	}
	return int(r), true
}

// PadRank returns the rank used for unknown/N symbols, or -1 if the alphabet
// has none configured.
func (a *Alphabet) PadRank() int { return a.pad }

// New builds an Alphabet from an ordered list of letters. If withSentinel is
// true, rank 0 is reserved for '$' and is prepended automatically. padLetter,
// if non-zero, names one of the given letters as the pad/N rank.
func New(name string, withSentinel bool, letters []byte, padLetter byte) (*Alphabet, error) {
	if len(letters) == 0 {
		return nil, fmt.Errorf("alphabet: empty letter set")
	}
	a := &Alphabet{name: name, pad: -1}
	for i := range a.ranks {
		a.ranks[i] = -1
	}
	if withSentinel {
		a.letters = append(a.letters, '$')
		a.ranks['$'] = 0
	}
	for _, l := range letters {
		if _, ok := a.Rank(l); ok {
			return nil, fmt.Errorf("alphabet: duplicate letter %q", l)
		}
		a.ranks[l] = int16(len(a.letters))
		a.letters = append(a.letters, l)
	}
	if padLetter != 0 {
		r, ok := a.Rank(padLetter)
		if !ok {
			return nil, fmt.Errorf("alphabet: pad letter %q not in alphabet", padLetter)
		}
		a.pad = r
	}
	return a, nil
}

// DNA4 is {A,C,G,T} without a pad rank, used when unknown bases are always
// replaced by a random draw from Σ (--dna4).
func DNA4(withSentinel bool) *Alphabet {
	a, _ := New("dna4", withSentinel, []byte{'A', 'C', 'G', 'T'}, 0)
	return a
}

// DNA5 is {A,C,G,T,N}, N acting as the pad rank for --ignore_unknown.
func DNA5(withSentinel bool) *Alphabet {
	a, _ := New("dna5", withSentinel, []byte{'A', 'C', 'G', 'T', 'N'}, 'N')
	return a
}

// Protein is the 20 standard amino acid letters plus 'X' as the pad rank.
func Protein(withSentinel bool) *Alphabet {
	a, _ := New("protein", withSentinel, []byte("ACDEFGHIKLMNPQRSTVWYX"), 'X')
	return a
}

// Encode converts a raw byte sequence into ranks according to strategy. rng is
// used only for UnknownRandom and may be nil for the other strategies (a nil
// rng falls back to always picking the first non-sentinel rank, useful for
// deterministic tests).
func (a *Alphabet) Encode(seq []byte, strategy UnknownStrategy, rng func(n int) int) ([]byte, error) {
	out := make([]byte, len(seq))
	nonSentinelSigma := a.Sigma()
	start := 0
	if len(a.letters) > 0 && a.letters[0] == '$' {
		start = 1
	}
	nonSentinelSigma -= start
	for i, c := range seq {
		r, ok := a.Rank(c)
		if ok {
			out[i] = byte(r)
			continue
		}
		switch strategy {
		case UnknownToPad:
			if a.pad < 0 {
				return nil, fmt.Errorf("alphabet: no pad rank configured for byte %q at position %d", c, i)
			}
			out[i] = byte(a.pad)
		case UnknownRandom:
			n := start
			if rng != nil {
				n += rng(nonSentinelSigma)
			}
			out[i] = byte(n)
		default:
			return nil, fmt.Errorf("alphabet: byte %q at position %d is outside Σ", c, i)
		}
	}
	return out, nil
}

// Decode converts ranks back to letters (used for diagnostics/tests, never on
// the hot path).
func (a *Alphabet) Decode(ranks []byte) []byte {
	out := make([]byte, len(ranks))
	for i, r := range ranks {
		out[i] = a.Letter(int(r))
	}
	return out
}

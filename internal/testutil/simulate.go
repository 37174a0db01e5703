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

// Package testutil generates random DNA references and mutated reads for
// end-to-end index/search tests. It is only ever imported from _test.go
// files.
package testutil

import (
	"math/rand"

	"github.com/shenwei356/sahara/alphabet"
)

var dna4 = alphabet.DNA4(false)

// RandomSequence returns a length-n slice of uniformly random {A,C,G,T} bytes.
func RandomSequence(rng *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = dna4.Letter(rng.Intn(4))
	}
	return seq
}

// Op is one step of an edit transcript: a match, substitution, insertion or
// deletion applied left to right against a reference window.
type Op byte

const (
	Match       Op = 'M'
	Substituted Op = 'S'
	Inserted    Op = 'I'
	Deleted     Op = 'D'
)

// Transcript is a sequence of Ops describing how a simulated read diverges
// from the reference window it was drawn from, mirroring read_simulator's
// own Transcript struct: it starts as all-Match and errors are carved out of
// it one at a time.
type Transcript []Op

// NewTranscript builds a length-n all-Match transcript and then randomly
// places sub substitutions, ins insertions and del deletions into it.
func NewTranscript(rng *rand.Rand, n, sub, ins, del int) Transcript {
	t := make(Transcript, n)
	for i := range t {
		t[i] = Match
	}
	matches := n
	for i := 0; i < sub; i++ {
		matches = t.substitute(rng, matches)
	}
	for i := 0; i < ins; i++ {
		matches = t.insert(rng, matches)
	}
	for i := 0; i < del; i++ {
		t = t.delete(rng)
	}
	return t
}

func (t Transcript) substitute(rng *rand.Rand, matches int) int {
	if matches == 0 {
		return 0
	}
	pos := t.randomMatch(rng)
	t[pos] = Substituted
	return matches - 1
}

func (t Transcript) insert(rng *rand.Rand, matches int) int {
	if matches == 0 {
		return 0
	}
	pos := t.randomMatch(rng)
	t[pos] = Inserted
	return matches - 1
}

func (t Transcript) randomMatch(rng *rand.Rand) int {
	pos := rng.Intn(len(t))
	for t[pos] != Match {
		pos = rng.Intn(len(t))
	}
	return pos
}

// delete inserts a Deleted op at a random position, growing the transcript
// by one; unlike substitute/insert it never runs out of room since it
// consumes a reference base rather than a transcript slot.
func (t Transcript) delete(rng *rand.Rand) Transcript {
	pos := rng.Intn(len(t) + 1)
	out := make(Transcript, 0, len(t)+1)
	out = append(out, t[:pos]...)
	out = append(out, Deleted)
	out = append(out, t[pos:]...)
	return out
}

// RefLen returns how many reference bases this transcript consumes: every op
// but Inserted advances the reference cursor by one.
func (t Transcript) RefLen() int {
	n := len(t)
	for _, op := range t {
		if op == Inserted {
			n--
		}
	}
	return n
}

// Apply walks ref alongside t, producing the mutated read: matches copy the
// reference base, substitutions replace it with a different random letter,
// insertions splice in an extra random letter, and deletions drop the
// reference base entirely.
func Apply(rng *rand.Rand, ref []byte, t Transcript) []byte {
	read := make([]byte, 0, len(t))
	var p int
	for _, op := range t {
		switch op {
		case Match:
			read = append(read, ref[p])
			p++
		case Substituted:
			read = append(read, substituteLetter(rng, ref[p]))
			p++
		case Inserted:
			read = append(read, dna4.Letter(rng.Intn(4)))
		case Deleted:
			p++
		}
	}
	return read
}

func substituteLetter(rng *rand.Rand, c byte) byte {
	orig, _ := dna4.Rank(c)
	r := 1 + rng.Intn(3)
	return dna4.Letter((orig + r) % 4)
}

// SimulateRead draws a random window of length readLen from ref, applies sub
// substitutions, ins insertions and del deletions to it, and returns the
// mutated read together with the reference offset it was drawn from.
func SimulateRead(rng *rand.Rand, ref []byte, readLen, sub, ins, del int) (read []byte, pos int) {
	t := NewTranscript(rng, readLen, sub, ins, del)
	refLen := t.RefLen()
	pos = rng.Intn(len(ref) - refLen + 1)
	return Apply(rng, ref[pos:pos+refLen], t), pos
}

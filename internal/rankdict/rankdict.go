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

// Package rankdict implements component A, the rank-dictionary backend: given
// L ∈ Σ^N', answer rank(c, i) and prefix_rank(c, i) for any symbol and
// position. Per spec §4.A / design notes, callers take a single tagged
// Variant at index-open time and monomorphize from there; no per-call boxing.
package rankdict

import (
	"bufio"
	"encoding/binary"
	"fmt"

	"github.com/shenwei356/sahara/internal/bitvec"
)

var be = binary.BigEndian

// Dict is the rank capability every concrete backend implements.
type Dict interface {
	// Rank returns the number of occurrences of symbol c in L[0:i).
	Rank(c byte, i uint64) uint64
	// PrefixRank returns Σ_{c'<=c} Rank(c', i) in one call.
	PrefixRank(c byte, i uint64) uint64
	// Len is N', the length of L.
	Len() uint64
	// Sigma is the alphabet size this dictionary was built for.
	Sigma() int
	// WriteTo serializes the dictionary body (not its Kind tag).
	WriteTo(w *bufio.Writer) (int64, error)
}

// Kind tags which concrete Dict implementation a serialized stream holds, so
// the storage boundary can dispatch once at load time (design notes: "tagged
// dispatch over rank-dictionary variants").
type Kind uint8

const (
	// KindWavelet is the general two-level interleaved-bitvector backend,
	// one plane per symbol, suitable for any σ.
	KindWavelet Kind = iota
	// KindReduced is the reduced-alphabet tag for σ ≤ 4: Build rejects a
	// larger σ, and otherwise builds the same per-symbol plane dictionary
	// as KindWavelet, with the same general loop over σ (no unrolled or
	// specialized dispatch).
	KindReduced
	// KindPlain is a naive rescan of L[0:i) per call (O(i) time). It is
	// not the default backend; it serves as the ground-truth oracle unit
	// tests compare the other variants against.
	KindPlain
)

func (k Kind) String() string {
	switch k {
	case KindWavelet:
		return "wavelet"
	case KindReduced:
		return "reduced4"
	case KindPlain:
		return "plain"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseKind maps a name back to a Kind, for the persisted indexTypeTag.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "wavelet":
		return KindWavelet, nil
	case "reduced4":
		return KindReduced, nil
	case "plain":
		return KindPlain, nil
	}
	return 0, fmt.Errorf("rankdict: unknown index_type %q", name)
}

// Build constructs the requested Dict variant from L. KindReduced requires
// sigma <= 4.
func Build(kind Kind, L []byte, sigma int) (Dict, error) {
	switch kind {
	case KindWavelet:
		return newPlaneDict(L, sigma), nil
	case KindReduced:
		if sigma > 4 {
			return nil, fmt.Errorf("rankdict: reduced4 backend requires sigma<=4, got %d", sigma)
		}
		return newPlaneDict(L, sigma), nil
	case KindPlain:
		return newPlainDict(L, sigma), nil
	}
	return nil, fmt.Errorf("rankdict: unknown kind %d", kind)
}

// ReadFrom reads back a Dict of the given kind and sigma.
func ReadFrom(r *bufio.Reader, kind Kind, sigma int) (Dict, error) {
	switch kind {
	case KindWavelet, KindReduced:
		return readPlaneDict(r, sigma)
	case KindPlain:
		return readPlainDict(r, sigma)
	}
	return nil, fmt.Errorf("rankdict: unknown kind %d", kind)
}

// -------------------- plane dict (KindWavelet / KindReduced) --------------------

// planeDict stores one rank_1 bitvector per symbol: bit i of plane c is set
// iff L[i] == c. Rank(c,i) = plane[c].Rank1(i). This is the "per-symbol
// bitplane arranged in cache-line-sized blocks" backend from §4.A; the
// KindReduced tag only adds the sigma<=4 check in Build, and uses the same
// loops below.
type planeDict struct {
	n      uint64
	sigma  int
	planes []*bitvec.BitVec
}

func newPlaneDict(L []byte, sigma int) *planeDict {
	d := &planeDict{n: uint64(len(L)), sigma: sigma, planes: make([]*bitvec.BitVec, sigma)}
	for c := 0; c < sigma; c++ {
		d.planes[c] = bitvec.New(uint64(len(L)))
	}
	for i, c := range L {
		d.planes[c].Set(uint64(i))
	}
	for c := 0; c < sigma; c++ {
		d.planes[c].Freeze()
	}
	return d
}

func (d *planeDict) Rank(c byte, i uint64) uint64 {
	return d.planes[c].Rank1(i)
}

func (d *planeDict) PrefixRank(c byte, i uint64) uint64 {
	var total uint64
	for cc := byte(0); cc <= c; cc++ {
		total += d.planes[cc].Rank1(i)
	}
	return total
}

func (d *planeDict) Len() uint64 { return d.n }
func (d *planeDict) Sigma() int  { return d.sigma }

func (d *planeDict) WriteTo(w *bufio.Writer) (int64, error) {
	var written int64
	if err := binary.Write(w, be, d.n); err != nil {
		return written, err
	}
	written += 8
	if err := binary.Write(w, be, uint64(d.sigma)); err != nil {
		return written, err
	}
	written += 8
	for _, p := range d.planes {
		n, err := p.WriteTo(w)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func readPlaneDict(r *bufio.Reader, sigmaHint int) (*planeDict, error) {
	var n, sigma uint64
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	if err := binary.Read(r, be, &sigma); err != nil {
		return nil, err
	}
	if sigmaHint != 0 && int(sigma) != sigmaHint {
		return nil, fmt.Errorf("rankdict: sigma mismatch: stream has %d, expected %d", sigma, sigmaHint)
	}
	d := &planeDict{n: n, sigma: int(sigma), planes: make([]*bitvec.BitVec, sigma)}
	for c := range d.planes {
		bv, _, err := bitvec.ReadFrom(r)
		if err != nil {
			return nil, err
		}
		d.planes[c] = bv
	}
	return d, nil
}

// -------------------- plain dict (KindPlain) --------------------

// plainDict is a byte-slice rescan: correct, O(σ) space overhead-free, O(i)
// time per Rank call. Used only as a ground-truth oracle in tests.
type plainDict struct {
	L     []byte
	sigma int
}

func newPlainDict(L []byte, sigma int) *plainDict {
	cp := make([]byte, len(L))
	copy(cp, L)
	return &plainDict{L: cp, sigma: sigma}
}

func (d *plainDict) Rank(c byte, i uint64) uint64 {
	var n uint64
	for _, x := range d.L[:i] {
		if x == c {
			n++
		}
	}
	return n
}

func (d *plainDict) PrefixRank(c byte, i uint64) uint64 {
	var n uint64
	for _, x := range d.L[:i] {
		if x <= c {
			n++
		}
	}
	return n
}

func (d *plainDict) Len() uint64 { return uint64(len(d.L)) }
func (d *plainDict) Sigma() int  { return d.sigma }

func (d *plainDict) WriteTo(w *bufio.Writer) (int64, error) {
	var written int64
	if err := binary.Write(w, be, uint64(len(d.L))); err != nil {
		return written, err
	}
	written += 8
	if err := binary.Write(w, be, uint64(d.sigma)); err != nil {
		return written, err
	}
	written += 8
	n, err := w.Write(d.L)
	written += int64(n)
	return written, err
}

func readPlainDict(r *bufio.Reader, sigmaHint int) (*plainDict, error) {
	var n, sigma uint64
	if err := binary.Read(r, be, &n); err != nil {
		return nil, err
	}
	if err := binary.Read(r, be, &sigma); err != nil {
		return nil, err
	}
	if sigmaHint != 0 && int(sigma) != sigmaHint {
		return nil, fmt.Errorf("rankdict: sigma mismatch: stream has %d, expected %d", sigma, sigmaHint)
	}
	buf := make([]byte, n)
	if _, err := ioReadFull(r, buf); err != nil {
		return nil, err
	}
	return &plainDict{L: buf, sigma: int(sigma)}, nil
}

func ioReadFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

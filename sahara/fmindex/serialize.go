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
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/sahara/errkind"
	"github.com/shenwei356/sahara/internal/rankdict"
	"github.com/shenwei356/sahara/sahara/sampler"
	"github.com/zeebo/wyhash"
)

// magic identifies a sahara FM-index file; version guards the binary layout
// itself, independent of the rank-dictionary backend recorded in the type tag.
const (
	magic      = "SAHARAFM"
	fileVer    = uint32(1)
	checksumSeed = uint64(0)
)

var be = binary.BigEndian

// typeTag encodes the rank-dictionary backend plus the delimited/mirror flags
// into one human-readable string (§6 item 3), "<kind>[-nd][-rev]": e.g.
// "wavelet-nd" for a non-delimited wavelet-backed index, or "reduced4-nd-rev"
// for a non-delimited, mirrored reduced4 one (the tag itself doesn't
// distinguish forward from reverse; both dicts share it, decoded once).
func (idx *Index) typeTag() string {
	tag := idx.kind.String()
	if !idx.delimited {
		tag += "-nd"
	}
	if idx.mirror {
		tag += "-rev"
	}
	return tag
}

func parseTypeTag(tag string) (kind rankdict.Kind, delimited, mirror bool, err error) {
	parts := strings.Split(tag, "-")
	kind, err = rankdict.ParseKind(parts[0])
	if err != nil {
		return kind, false, false, err
	}
	delimited = true
	for _, p := range parts[1:] {
		switch p {
		case "nd":
			delimited = false
		case "rev":
			mirror = true
		default:
			return kind, false, false, fmt.Errorf("fmindex: unknown type tag component %q", p)
		}
	}
	return kind, delimited, mirror, nil
}

// WriteTo persists the index in the layout described in §6: header, type
// tag, forward dictionary, C-array, reverse dictionary, sampler, sequence
// boundary table, and a trailing wyhash checksum over everything before it.
func (idx *Index) WriteTo(w *bufio.Writer) (int64, error) {
	var body bytes.Buffer
	bw := bufio.NewWriter(&body)

	if _, err := bw.WriteString(magic); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, be, fileVer); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, be, uint32(idx.sigma)); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, be, uint32(idx.rate)); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, be, uint32(idx.nOriginal)); err != nil {
		return 0, err
	}
	tag := idx.typeTag()
	if err := binary.Write(bw, be, uint32(len(tag))); err != nil {
		return 0, err
	}
	if _, err := bw.WriteString(tag); err != nil {
		return 0, err
	}
	if _, err := idx.fwd.WriteTo(bw); err != nil {
		return 0, err
	}
	for _, v := range idx.c {
		if err := binary.Write(bw, be, v); err != nil {
			return 0, err
		}
	}
	if _, err := idx.rev.WriteTo(bw); err != nil {
		return 0, err
	}
	if _, err := idx.samp.WriteTo(bw); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, be, uint32(len(idx.boundary))); err != nil {
		return 0, err
	}
	for _, b := range idx.boundary {
		if err := binary.Write(bw, be, b.SeqLen); err != nil {
			return 0, err
		}
		var rev byte
		if b.Reverse {
			rev = 1
		}
		if err := bw.WriteByte(rev); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}

	checksum := wyhash.Hash(body.Bytes(), checksumSeed)

	n1, err := w.Write(body.Bytes())
	if err != nil {
		return int64(n1), err
	}
	if err := binary.Write(w, be, checksum); err != nil {
		return int64(n1), err
	}
	return int64(n1) + 8, nil
}

// ReadFrom loads an index persisted with WriteTo, verifying its checksum
// before trusting any of the framed data (§7: a truncated file or checksum
// mismatch surfaces as IoError, malformed content behind a valid checksum as
// InvariantViolation, never a silent misread).
func ReadFrom(r *bufio.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errkind.NewIO("<index>", err)
	}
	if len(data) < 8 {
		return nil, errkind.NewIO("<index>", fmt.Errorf("index file too short: %d bytes", len(data)))
	}
	body, wantChecksum := data[:len(data)-8], be.Uint64(data[len(data)-8:])
	if got := wyhash.Hash(body, checksumSeed); got != wantChecksum {
		return nil, errkind.NewIO("<index>", fmt.Errorf("index checksum mismatch: got %x want %x", got, wantChecksum))
	}

	br := bufio.NewReader(bytes.NewReader(body))

	magicBuf := make([]byte, len(magic))
	if _, err := io.ReadFull(br, magicBuf); err != nil {
		return nil, errkind.NewInvariant("failed reading magic: %v", err)
	}
	if string(magicBuf) != magic {
		return nil, errkind.NewInvariant("not a sahara index file (bad magic %q)", magicBuf)
	}
	var ver, sigma32, rate32, nOrig32, tagLen uint32
	if err := binary.Read(br, be, &ver); err != nil {
		return nil, err
	}
	if ver != fileVer {
		return nil, errkind.NewInvariant("unsupported index file version %d (want %d)", ver, fileVer)
	}
	if err := binary.Read(br, be, &sigma32); err != nil {
		return nil, err
	}
	if err := binary.Read(br, be, &rate32); err != nil {
		return nil, err
	}
	if err := binary.Read(br, be, &nOrig32); err != nil {
		return nil, err
	}
	if err := binary.Read(br, be, &tagLen); err != nil {
		return nil, err
	}
	tagBuf := make([]byte, tagLen)
	if _, err := io.ReadFull(br, tagBuf); err != nil {
		return nil, err
	}
	kind, delimited, mirror, err := parseTypeTag(string(tagBuf))
	if err != nil {
		return nil, errkind.NewInvariant("%v", err)
	}
	sigma := int(sigma32)

	fwd, err := rankdict.ReadFrom(br, kind, sigma)
	if err != nil {
		return nil, err
	}
	c := make([]uint64, sigma+1)
	for i := range c {
		if err := binary.Read(br, be, &c[i]); err != nil {
			return nil, err
		}
	}
	rev, err := rankdict.ReadFrom(br, kind, sigma)
	if err != nil {
		return nil, err
	}
	samp, err := sampler.ReadFrom(br)
	if err != nil {
		return nil, err
	}
	var nBoundary uint32
	if err := binary.Read(br, be, &nBoundary); err != nil {
		return nil, err
	}
	boundary := make([]SeqBoundary, nBoundary)
	for i := range boundary {
		if err := binary.Read(br, be, &boundary[i].SeqLen); err != nil {
			return nil, err
		}
		revByte, err := br.ReadByte()
		if err != nil {
			return nil, err
		}
		boundary[i].Reverse = revByte != 0
	}

	return &Index{
		sigma:     sigma,
		delimited: delimited,
		mirror:    mirror,
		rate:      int(rate32),
		kind:      kind,
		nOriginal: int(nOrig32),
		fwd:       fwd,
		rev:       rev,
		c:         c,
		samp:      samp,
		boundary:  boundary,
		starts:    computeStarts(boundary, delimited),
	}, nil
}

package sampler

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/shenwei356/sahara/internal/sais"
)

func TestSamplerAgreesWithSA(t *testing.T) {
	text := []byte{1, 2, 3, 4, 1, 2, 3, 4, 0}
	sa := sais.Build(text)

	resolve := func(pos int) ADEntry {
		return ADEntry{SeqID: 0, Pos: uint32(pos)}
	}

	for _, rate := range []int{1, 2, 4, len(text)} {
		s := Build(sa, rate, resolve)
		for row, pos := range sa {
			if !s.IsSampled(uint64(row)) {
				continue
			}
			e := s.Get(uint64(row))
			if int(e.Pos) != pos {
				t.Fatalf("rate %d row %d: got pos %d want %d", rate, row, e.Pos, pos)
			}
		}
	}
}

func TestSamplerSerializationRoundTrip(t *testing.T) {
	text := []byte{1, 2, 3, 4, 1, 2, 3, 4, 0}
	sa := sais.Build(text)
	resolve := func(pos int) ADEntry { return ADEntry{SeqID: 1, Pos: uint32(pos), Reverse: pos%2 == 0} }
	s := Build(sa, 2, resolve)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if _, err := s.WriteTo(w); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	got, err := ReadFrom(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	for row := uint64(0); row < s.Len(); row++ {
		if got.IsSampled(row) != s.IsSampled(row) {
			t.Fatalf("sampled mismatch at row %d", row)
		}
		if s.IsSampled(row) && got.Get(row) != s.Get(row) {
			t.Fatalf("entry mismatch at row %d", row)
		}
	}
}

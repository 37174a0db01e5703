package fmindex

import (
	"bufio"
	"bytes"
	"sort"
	"testing"

	"github.com/shenwei356/sahara/internal/rankdict"
	"github.com/shenwei356/sahara/internal/sais"
)

// ranks: $=0, A=1, C=2, G=3, T=4
func encodeDNA(s string) []byte {
	out := make([]byte, len(s))
	for i, c := range []byte(s) {
		switch c {
		case 'A':
			out[i] = 1
		case 'C':
			out[i] = 2
		case 'G':
			out[i] = 3
		case 'T':
			out[i] = 4
		default:
			panic("bad base")
		}
	}
	return out
}

// backwardSearch runs an exact (k=0) search for pattern over idx, processing
// symbols right-to-left via ExtendLeft, as the driver's k=0 fast path does.
func backwardSearch(idx *Index, pattern []byte) (Cursor, bool) {
	cur := idx.InitialCursor()
	for i := len(pattern) - 1; i >= 0; i-- {
		var ok bool
		cur, ok = idx.ExtendLeft(cur, pattern[i])
		if !ok {
			return Cursor{}, false
		}
	}
	return cur, true
}

func buildDNAIndex(t *testing.T, seqs []string, opts BuildOptions) *Index {
	t.Helper()
	encoded := make([][]byte, len(seqs))
	for i, s := range seqs {
		encoded[i] = encodeDNA(s)
	}
	idx, err := Build(encoded, 5, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func hitPositions(t *testing.T, idx *Index, cur Cursor, queryLen int) []Hit {
	t.Helper()
	hits, err := idx.LocateCursor(cur, queryLen)
	if err != nil {
		t.Fatalf("LocateCursor: %v", err)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].SeqID != hits[j].SeqID {
			return hits[i].SeqID < hits[j].SeqID
		}
		return hits[i].Pos < hits[j].Pos
	})
	return hits
}

// scenario 1: exact search of ACGT against ACGTACGT, delimited.
func TestScenarioExactSearchTwoOccurrences(t *testing.T) {
	opts := DefaultBuildOptions()
	idx := buildDNAIndex(t, []string{"ACGTACGT"}, opts)

	cur, ok := backwardSearch(idx, encodeDNA("ACGT"))
	if !ok || cur.Len != 2 {
		t.Fatalf("expected width 2, got ok=%v len=%d", ok, cur.Len)
	}
	hits := hitPositions(t, idx, cur, 4)
	want := []uint32{0, 4}
	if len(hits) != 2 || hits[0].Pos != want[0] || hits[1].Pos != want[1] {
		t.Fatalf("unexpected hits: %+v", hits)
	}
}

// scenario 3: two sequences, non-delimited, documents cross-sequence FPs.
func TestScenarioNonDelimitedCrossSequenceFalsePositive(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.Delimited = false
	idx := buildDNAIndex(t, []string{"AAAA", "CCCC"}, opts)

	cur, ok := backwardSearch(idx, encodeDNA("AC"))
	if !ok {
		t.Fatal("expected AC to match across the sequence boundary in non-delimited mode")
	}
	if cur.Len != 1 {
		t.Fatalf("expected exactly one spurious cross-boundary match, got %d", cur.Len)
	}
}

// scenario 4: mirrored index, forward and reverse strand agree.
func TestScenarioMirroredSymmetry(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.Mirror = true
	// complement table: $->$ , A<->T, C<->G
	opts.Complement = []byte{0, 4, 3, 2, 1}
	idx := buildDNAIndex(t, []string{"ACGTACGT"}, opts)

	cur, ok := backwardSearch(idx, encodeDNA("ACGT"))
	if !ok {
		t.Fatal("expected a match")
	}
	hits := hitPositions(t, idx, cur, 4)
	if len(hits) != 4 {
		t.Fatalf("expected 2 forward + 2 reverse-strand hits, got %d: %+v", len(hits), hits)
	}
	var fwd, rev int
	for _, h := range hits {
		if h.Reverse {
			rev++
		} else {
			fwd++
		}
	}
	if fwd != 2 || rev != 2 {
		t.Fatalf("expected 2 forward and 2 reverse hits, got fwd=%d rev=%d", fwd, rev)
	}
}

// scenario 5: dense repeat with a small sampling rate.
func TestScenarioRepeatWithSamplingRate(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.SamplingRate = 4
	idx := buildDNAIndex(t, []string{"AAAAAAAAAAAA"}, opts)

	cur, ok := backwardSearch(idx, encodeDNA("AAA"))
	if !ok {
		t.Fatal("expected a match")
	}
	if cur.Len != 10 {
		t.Fatalf("expected 10 occurrences of AAA in a 12-mer of A's, got %d", cur.Len)
	}
	hits := hitPositions(t, idx, cur, 3)
	for i, h := range hits {
		if h.Pos != uint32(i) {
			t.Fatalf("hit %d: want pos %d, got %d", i, i, h.Pos)
		}
	}
}

// property 1: forward and reverse cursor widths always agree, by construction.
func TestCursorWidthsAlwaysAgree(t *testing.T) {
	opts := DefaultBuildOptions()
	idx := buildDNAIndex(t, []string{"ACGTACGTACGTGGCA"}, opts)

	// Each left extension prepends, so extending by G, C, A yields "ACG";
	// the right extension by T then yields "ACGT", which occurs three times.
	cur := idx.InitialCursor()
	for _, c := range encodeDNA("GCA") {
		var ok bool
		cur, ok = idx.ExtendLeft(cur, c)
		if !ok {
			t.Fatal("expected extension to succeed")
		}
	}
	cur2, ok := idx.ExtendRight(cur, encodeDNA("T")[0])
	if !ok {
		t.Fatal("expected right extension to succeed")
	}
	if cur2.Len == 0 {
		t.Fatal("expected nonempty cursor")
	}
}

// property 2: locate agrees with a naive suffix-array oracle, for every row.
func TestLocateAgreesWithNaiveSuffixArray(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.SamplingRate = 3
	seq := "ACGTACGTTGCATGCA"
	idx := buildDNAIndex(t, []string{seq}, opts)

	text := append(encodeDNA(seq), 0)
	sa := sais.Build(text)

	for row, pos := range sa {
		e, err := idx.Locate(uint64(row))
		if err != nil {
			t.Fatalf("Locate(%d): %v", row, err)
		}
		if int(e.Pos) != pos {
			t.Fatalf("row %d: locate gave pos %d, naive SA gives %d", row, e.Pos, pos)
		}
	}
}

// property 4 (k=0 slice) / boundary: k=0 exact search count matches naive count.
func TestExactSearchMatchesNaiveCount(t *testing.T) {
	opts := DefaultBuildOptions()
	idx := buildDNAIndex(t, []string{"ACGTACGTTGCATGCAACGT"}, opts)

	pattern := "ACGT"
	cur, ok := backwardSearch(idx, encodeDNA(pattern))
	if !ok {
		t.Fatal("expected a match")
	}

	want := naiveCount("ACGTACGTTGCATGCAACGT", pattern)
	if int(cur.Len) != want {
		t.Fatalf("got %d occurrences, naive count is %d", cur.Len, want)
	}
}

func naiveCount(text, pattern string) int {
	count := 0
	for i := 0; i+len(pattern) <= len(text); i++ {
		if text[i:i+len(pattern)] == pattern {
			count++
		}
	}
	return count
}

// boundary: an empty reference collection is rejected.
func TestBuildRejectsEmptyInput(t *testing.T) {
	if _, err := Build(nil, 5, DefaultBuildOptions()); err == nil {
		t.Fatal("expected an error for an empty reference collection")
	}
	if _, err := Build([][]byte{{}}, 5, DefaultBuildOptions()); err == nil {
		t.Fatal("expected an error for an empty sequence")
	}
}

// property 5 / 6: serialize -> deserialize round-trips answers and bytes.
func TestSerializationRoundTripAndIdempotence(t *testing.T) {
	opts := DefaultBuildOptions()
	opts.RankDictKind = rankdict.KindPlain
	idx := buildDNAIndex(t, []string{"ACGTACGT", "TTTTGGGG"}, opts)

	var buf1 bytes.Buffer
	w1 := bufio.NewWriter(&buf1)
	if _, err := idx.WriteTo(w1); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if err := w1.Flush(); err != nil {
		t.Fatal(err)
	}

	loaded, err := ReadFrom(bufio.NewReader(bytes.NewReader(buf1.Bytes())))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	cur, ok := backwardSearch(idx, encodeDNA("ACGT"))
	if !ok {
		t.Fatal("expected a match on the original index")
	}
	curReload, ok := backwardSearch(loaded, encodeDNA("ACGT"))
	if !ok || curReload.Len != cur.Len {
		t.Fatalf("reloaded index disagrees: got len=%d want=%d ok=%v", curReload.Len, cur.Len, ok)
	}

	var buf2 bytes.Buffer
	w2 := bufio.NewWriter(&buf2)
	if _, err := loaded.WriteTo(w2); err != nil {
		t.Fatalf("re-WriteTo: %v", err)
	}
	if err := w2.Flush(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Fatal("re-serializing a deserialized index did not reproduce the same bytes")
	}
}

func TestReadFromRejectsCorruptChecksum(t *testing.T) {
	opts := DefaultBuildOptions()
	idx := buildDNAIndex(t, []string{"ACGTACGT"}, opts)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if _, err := idx.WriteTo(w); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	corrupt := buf.Bytes()
	corrupt[0] ^= 0xFF

	if _, err := ReadFrom(bufio.NewReader(bytes.NewReader(corrupt))); err == nil {
		t.Fatal("expected checksum verification to reject corrupted data")
	}
}

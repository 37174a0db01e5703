package sais

import (
	"sort"
	"testing"
)

func naiveSA(text []byte) []int {
	n := len(text)
	sa := make([]int, n)
	for i := range sa {
		sa[i] = i
	}
	suffix := func(i int) []byte { return text[i:] }
	sort.Slice(sa, func(i, j int) bool {
		a, b := suffix(sa[i]), suffix(sa[j])
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return sa
}

func TestBuildMatchesNaive(t *testing.T) {
	texts := [][]byte{
		{1, 2, 3, 4, 1, 2, 3, 4, 0},
		{0},
		{1, 1, 1, 1, 1, 0},
		{4, 3, 2, 1, 0, 1, 2, 3, 4, 0},
	}
	for _, text := range texts {
		got := Build(text)
		want := naiveSA(text)
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("text %v: sa[%d] = %d want %d (got=%v want=%v)", text, i, got[i], want[i], got, want)
			}
		}
	}
}

func TestBWTRoundTripViaLF(t *testing.T) {
	// ACGT$ encoded with $=0,A=1,C=2,G=3,T=4
	text := []byte{1, 2, 3, 4, 1, 2, 3, 4, 0}
	sa := Build(text)
	L := BWT(text, sa)

	// LF-mapping should reconstruct text in reverse when walked from the row
	// of the suffix starting at 0, whose BWT symbol is the final sentinel.
	sigma := 5
	count := make([]int, sigma)
	for _, c := range L {
		count[c]++
	}
	C := make([]int, sigma+1)
	for c := 0; c < sigma; c++ {
		C[c+1] = C[c] + count[c]
	}
	rankSoFar := make([]int, sigma)
	row := 0
	for i, s := range sa {
		if s == 0 {
			row = i
		}
	}
	var reconstructed []byte
	for i := 0; i < len(text); i++ {
		c := L[row]
		reconstructed = append(reconstructed, c)
		row = C[c] + rankSoFar[c]
		rankSoFar[c]++
	}
	// reconstructed is text read backwards starting from position n-1 down to 0.
	for i, j := 0, len(reconstructed)-1; i < j; i, j = i+1, j-1 {
		reconstructed[i], reconstructed[j] = reconstructed[j], reconstructed[i]
	}
	for i := range text {
		if reconstructed[i] != text[i] {
			t.Fatalf("LF round trip mismatch at %d: got %v want %v", i, reconstructed, text)
		}
	}
}

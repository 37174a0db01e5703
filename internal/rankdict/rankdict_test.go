package rankdict

import (
	"bufio"
	"bytes"
	"math/rand"
	"testing"
)

func randomL(n, sigma int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	L := make([]byte, n)
	for i := range L {
		L[i] = byte(rng.Intn(sigma))
	}
	return L
}

func TestVariantsAgreeWithPlain(t *testing.T) {
	sigma := 4
	L := randomL(3000, sigma, 7)
	plain, _ := Build(KindPlain, L, sigma)
	wavelet, _ := Build(KindWavelet, L, sigma)
	reduced, _ := Build(KindReduced, L, sigma)

	for i := 0; i <= len(L); i += 17 {
		for c := byte(0); c < byte(sigma); c++ {
			want := plain.Rank(c, uint64(i))
			if got := wavelet.Rank(c, uint64(i)); got != want {
				t.Fatalf("wavelet rank(%d,%d): got %d want %d", c, i, got, want)
			}
			if got := reduced.Rank(c, uint64(i)); got != want {
				t.Fatalf("reduced rank(%d,%d): got %d want %d", c, i, got, want)
			}
			wantP := plain.PrefixRank(c, uint64(i))
			if got := wavelet.PrefixRank(c, uint64(i)); got != wantP {
				t.Fatalf("wavelet prefixrank(%d,%d): got %d want %d", c, i, got, wantP)
			}
		}
	}
}

func TestPlaneDictSerializationRoundTrip(t *testing.T) {
	sigma := 5
	L := randomL(1500, sigma, 3)
	d, _ := Build(KindWavelet, L, sigma)

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if _, err := d.WriteTo(w); err != nil {
		t.Fatal(err)
	}
	w.Flush()

	got, err := ReadFrom(bufio.NewReader(&buf), KindWavelet, sigma)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= len(L); i += 13 {
		for c := byte(0); c < byte(sigma); c++ {
			if got.Rank(c, uint64(i)) != d.Rank(c, uint64(i)) {
				t.Fatalf("round trip mismatch at c=%d i=%d", c, i)
			}
		}
	}
}

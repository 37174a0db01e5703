package alphabet

import "testing"

func TestDNA5EncodeIgnoreUnknown(t *testing.T) {
	a := DNA5(true)
	if a.Sigma() != 6 {
		t.Fatalf("expected sigma 6 (sentinel+ACGTN), got %d", a.Sigma())
	}
	got, err := a.Encode([]byte("ACGTZ"), UnknownToPad, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5} // ranks: $=0 A=1 C=2 G=3 T=4 N=5
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %d want %d", i, got[i], want[i])
		}
	}
}

func TestEncodeFailsOnUnknown(t *testing.T) {
	a := DNA4(false)
	if _, err := a.Encode([]byte("ACGN"), UnknownFail, nil); err == nil {
		t.Fatal("expected error for unknown byte")
	}
}

func TestEncodeRandom(t *testing.T) {
	a := DNA4(false)
	got, err := a.Encode([]byte("N"), UnknownRandom, func(n int) int { return n - 1 })
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 3 {
		t.Fatalf("expected deterministic rng to land on last rank, got %d", got[0])
	}
}

func TestRoundTrip(t *testing.T) {
	a := DNA4(false)
	seq := []byte("ACGTACGT")
	ranks, err := a.Encode(seq, UnknownFail, nil)
	if err != nil {
		t.Fatal(err)
	}
	back := a.Decode(ranks)
	if string(back) != string(seq) {
		t.Fatalf("round trip mismatch: got %s want %s", back, seq)
	}
}

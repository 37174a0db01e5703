package scheme

import (
	"sort"
	"testing"
)

func TestZigzagPiIsContiguousPrefix(t *testing.T) {
	for p := 1; p <= 7; p++ {
		for pivot := 0; pivot < p; pivot++ {
			pi := zigzagPi(p, pivot)
			if len(pi) != p {
				t.Fatalf("p=%d pivot=%d: got %d entries, want %d", p, pivot, len(pi), p)
			}
			seen := make(map[int]bool)
			lo, hi := pi[0], pi[0]
			for _, part := range pi {
				if seen[part] {
					t.Fatalf("p=%d pivot=%d: part %d repeated", p, pivot, part)
				}
				seen[part] = true
				if part != lo-1 && part != hi+1 && part != lo {
					t.Fatalf("p=%d pivot=%d: part %d breaks contiguity (range [%d,%d])", p, pivot, part, lo, hi)
				}
				if part < lo {
					lo = part
				}
				if part > hi {
					hi = part
				}
			}
		}
	}
}

func TestAllGeneratorsProduceValidCompleteNonRedundantSchemes(t *testing.T) {
	for _, name := range Names {
		for kMax := 0; kMax <= 3; kMax++ {
			s, err := Generate(name, 0, kMax, 4, 1000)
			if err != nil {
				t.Fatalf("%s kMax=%d: %v", name, kMax, err)
			}
			p := s[0].NumParts()
			if !Valid(s, p) {
				t.Fatalf("%s kMax=%d: scheme not Valid: %+v", name, kMax, s)
			}
			if !CompleteAndNonRedundant(s, p, 0, kMax) {
				t.Fatalf("%s kMax=%d: scheme not complete+non-redundant", name, kMax)
			}
		}
	}
}

func TestCompleteAndNonRedundantWithNonZeroKMin(t *testing.T) {
	s, err := Generate("kianfar", 1, 2, 4, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !CompleteAndNonRedundant(s, s[0].NumParts(), 1, 2) {
		t.Fatal("expected completeness+non-redundancy over [1,2]")
	}
}

func TestUnknownGeneratorErrors(t *testing.T) {
	if _, err := Generate("does-not-exist", 0, 1, 4, 100); err == nil {
		t.Fatal("expected an error for an unknown generator name")
	}
}

func TestUniformPartitionSumsToQ(t *testing.T) {
	for _, tc := range []struct{ p, q int }{{1, 10}, {3, 10}, {4, 17}, {5, 5}} {
		c := Uniform(tc.p, tc.q)
		if len(c) != tc.p {
			t.Fatalf("p=%d: got %d parts", tc.p, len(c))
		}
		if got := sum(c); got != tc.q {
			t.Fatalf("p=%d q=%d: parts sum to %d", tc.p, tc.q, got)
		}
		max, min := c[0], c[0]
		for _, v := range c {
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
		}
		if max-min > 1 {
			t.Fatalf("p=%d q=%d: uneven split %v", tc.p, tc.q, c)
		}
	}
}

func TestNodeCountIsPositiveAndEditCostsMoreThanHamming(t *testing.T) {
	s, err := Generate("kianfar", 0, 2, 4, 1000)
	if err != nil {
		t.Fatal(err)
	}
	c := Uniform(s[0].NumParts(), 30)
	ham := NodeCount(s, c, 4, false)
	edit := NodeCount(s, c, 4, true)
	if ham <= 0 || edit <= 0 {
		t.Fatalf("expected positive node counts, got ham=%v edit=%v", ham, edit)
	}
	if edit <= ham {
		t.Fatalf("expected edit node count (%v) to exceed Hamming (%v)", edit, ham)
	}
}

func TestWeightedNodeCountBottomUpDoesNotIncreaseCost(t *testing.T) {
	s, err := Generate("lam", 0, 2, 4, 5000)
	if err != nil {
		t.Fatal(err)
	}
	Q := 40
	uniform := Uniform(s[0].NumParts(), Q)
	optimized := WeightedNodeCountBottomUp(s, 4, 5000, Q, false)

	if got := sum(optimized); got != Q {
		t.Fatalf("optimized partition sums to %d, want %d", got, Q)
	}
	before := WeightedNodeCount(s, uniform, 4, 5000, false)
	after := WeightedNodeCount(s, optimized, 4, 5000, false)
	if after > before+1e-9 {
		t.Fatalf("bottom-up optimization made things worse: before=%v after=%v", before, after)
	}
}

func TestWeightedNodeCountTopDownCoversFullQuery(t *testing.T) {
	s, err := Generate("hato", 0, 2, 4, 5000)
	if err != nil {
		t.Fatal(err)
	}
	Q := 50
	c := WeightedNodeCountTopDown(s, 4, 5000, Q, 5, false)
	if got := sum(c); got != Q {
		t.Fatalf("top-down partition sums to %d, want %d", got, Q)
	}
}

func TestReorderVisitsEveryQueryPositionExactlyOnce(t *testing.T) {
	s, err := Generate("lam", 0, 2, 4, 1000)
	if err != nil {
		t.Fatal(err)
	}
	Q := 24
	c := Uniform(s[0].NumParts(), Q)
	for _, search := range s {
		positions, dirs := Reorder(search, c)
		if len(dirs) != len(search.Pi) {
			t.Fatalf("expected %d direction entries, got %d", len(search.Pi), len(dirs))
		}
		if len(positions) != Q {
			t.Fatalf("expected %d positions, got %d", Q, len(positions))
		}
		sorted := append([]int{}, positions...)
		sort.Ints(sorted)
		for i, p := range sorted {
			if p != i {
				t.Fatalf("positions are not a permutation of [0,Q): %v", sorted)
			}
		}
	}
}

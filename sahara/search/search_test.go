package search

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shenwei356/sahara/internal/testutil"
	"github.com/shenwei356/sahara/sahara/fmindex"
	"github.com/shenwei356/sahara/sahara/scheme"
)

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
		}
	}
	return out
}

func buildIndex(t *testing.T, text string) *fmindex.Index {
	t.Helper()
	idx, err := fmindex.Build([][]byte{encodeDNA(text)}, 5, fmindex.DefaultBuildOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

// naiveHamming finds every position in text where pattern matches with at
// most k mismatches.
func naiveHamming(text, pattern string, k int) []int {
	var out []int
	for i := 0; i+len(pattern) <= len(text); i++ {
		errs := 0
		for j := 0; j < len(pattern); j++ {
			if text[i+j] != pattern[j] {
				errs++
			}
		}
		if errs <= k {
			out = append(out, i)
		}
	}
	return out
}

// naiveEdit finds every position in text where some substring starting there
// is within edit distance k of pattern, via a standard bounded edit-distance
// scan (banded Levenshtein against every start offset).
func naiveEdit(text, pattern string, k int) []int {
	var out []int
	m := len(pattern)
	for start := 0; start < len(text); start++ {
		maxLen := m + k
		if start+maxLen > len(text) {
			maxLen = len(text) - start
		}
		found := false
		for end := start; end <= start+maxLen; end++ {
			if end > len(text) {
				break
			}
			if editDistance(text[start:end], pattern) <= k {
				found = true
				break
			}
		}
		if found {
			out = append(out, start)
		}
	}
	return out
}

func editDistance(a, b string) int {
	n, m := len(a), len(b)
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
		dp[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dp[0][j] = j
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := dp[i-1][j] + 1
			ins := dp[i][j-1] + 1
			sub := dp[i-1][j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			dp[i][j] = best
		}
	}
	return dp[n][m]
}

func hammingHitPositions(t *testing.T, idx *fmindex.Index, query string, k int) map[int]bool {
	t.Helper()
	q := encodeDNA(query)
	s, err := scheme.Generate("kianfar", 0, k, idx.Sigma(), int(idx.Len()))
	if err != nil {
		t.Fatal(err)
	}
	c := scheme.Uniform(s[0].NumParts(), len(q))

	got := map[int]bool{}
	Search(idx, q, s, c, Hamming, 0, func(h Hit) bool {
		hits, err := idx.LocateCursor(h.Cursor, len(q))
		if err != nil {
			t.Fatal(err)
		}
		for _, hit := range hits {
			got[int(hit.Pos)] = true
		}
		return true
	})
	return got
}

func TestHammingSearchMatchesNaiveOracle(t *testing.T) {
	text := "ACGTACGTTGCATGCAACGTGGGCATTACA"
	idx := buildIndex(t, text)

	for _, tc := range []struct {
		query string
		k     int
	}{
		{"ACGT", 0},
		{"AGGT", 1},
		{"TGCATGCA", 1},
		{"GGGCATTA", 2},
	} {
		want := naiveHamming(text, tc.query, tc.k)
		got := hammingHitPositions(t, idx, tc.query, tc.k)
		if len(got) != len(want) {
			t.Fatalf("query=%s k=%d: got %d hits %v, want %d %v", tc.query, tc.k, len(got), got, len(want), want)
		}
		for _, pos := range want {
			if !got[pos] {
				t.Fatalf("query=%s k=%d: missing expected hit at pos %d (got %v)", tc.query, tc.k, pos, got)
			}
		}
	}
}

func editHitPositions(t *testing.T, idx *fmindex.Index, query string, k int) map[int]bool {
	t.Helper()
	q := encodeDNA(query)
	s, err := scheme.Generate("kianfar", 0, k, idx.Sigma(), int(idx.Len()))
	if err != nil {
		t.Fatal(err)
	}
	c := scheme.Uniform(s[0].NumParts(), len(q))

	got := map[int]bool{}
	Search(idx, q, s, c, Edit, 0, func(h Hit) bool {
		hits, err := idx.LocateCursor(h.Cursor, len(q))
		if err != nil {
			t.Fatal(err)
		}
		for _, hit := range hits {
			got[int(hit.Pos)] = true
		}
		return true
	})
	return got
}

// property 4 (edit-mode slice): every start offset the naive oracle finds
// within k edits is also found by the driver. The driver may additionally
// report extra starts naiveEdit's substring-window scan misses at the very
// end of text, so this checks oracle-subset-of-driver rather than equality.
func TestEditSearchIsSupersetOfNaiveOracle(t *testing.T) {
	text := "ACGTACGTTGCATGCAACGTGGGCA"
	idx := buildIndex(t, text)

	want := naiveEdit(text, "ACGTGCA", 1)
	got := editHitPositions(t, idx, "ACGTGCA", 1)
	if len(want) == 0 {
		t.Fatal("test setup: naive oracle found nothing to compare against")
	}
	for _, pos := range want {
		if !got[pos] {
			t.Fatalf("driver missed naive oracle's hit at pos %d (got %v)", pos, got)
		}
	}
}

func TestEditSearchFindsTrueOriginOnRandomQuery(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bases := []byte{'A', 'C', 'G', 'T'}
	textB := make([]byte, 1000)
	for i := range textB {
		textB[i] = bases[rng.Intn(4)]
	}
	text := string(textB)
	idx := buildIndex(t, text)

	origin := rng.Intn(len(text) - 50)
	query := []byte(text[origin : origin+50])
	// introduce up to 2 substitutions to keep this within the edit budget
	// while still exercising the mismatch branch.
	query[5] = otherBase(query[5], rng)
	query[30] = otherBase(query[30], rng)

	q := encodeDNA(string(query))
	s, err := scheme.Generate("kianfar", 0, 2, idx.Sigma(), int(idx.Len()))
	if err != nil {
		t.Fatal(err)
	}
	c := scheme.Uniform(s[0].NumParts(), len(q))

	foundOrigin := false
	Search(idx, q, s, c, Edit, 0, func(h Hit) bool {
		hits, err := idx.LocateCursor(h.Cursor, len(q))
		if err != nil {
			t.Fatal(err)
		}
		for _, hit := range hits {
			if int(hit.Pos) == origin {
				foundOrigin = true
			}
		}
		return true
	})
	if !foundOrigin {
		t.Fatalf("expected the true origin offset %d to be reported", origin)
	}
}

// TestEditSearchFindsSimulatedRead builds a random reference, draws a read
// from it via internal/testutil's substitution simulator, and checks the
// driver still reports the read's true origin.
func TestEditSearchFindsSimulatedRead(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	ref := testutil.RandomSequence(rng, 500)
	idx := buildIndex(t, string(ref))

	read, origin := testutil.SimulateRead(rng, ref, 40, 2, 0, 0)
	q := encodeDNA(string(read))

	const k = 2 // matches the substitution count SimulateRead introduced
	s, err := scheme.Generate("kianfar", 0, k, idx.Sigma(), int(idx.Len()))
	if err != nil {
		t.Fatal(err)
	}
	c := scheme.Uniform(s[0].NumParts(), len(q))

	foundOrigin := false
	Search(idx, q, s, c, Edit, 0, func(h Hit) bool {
		hits, err := idx.LocateCursor(h.Cursor, len(q))
		if err != nil {
			t.Fatal(err)
		}
		for _, hit := range hits {
			if int(hit.Pos) == origin {
				foundOrigin = true
			}
		}
		return true
	})
	if !foundOrigin {
		t.Fatalf("expected the simulated read's true origin offset %d to be reported", origin)
	}
}

// TestSearchBestHitsStopsAtFirstBudgetWithAHit builds a query that only
// matches within 1 error, and checks the widening loop stops at j=1 rather
// than continuing on to j=2 (which would find the same cursor again plus
// any looser matches).
func TestSearchBestHitsStopsAtFirstBudgetWithAHit(t *testing.T) {
	text := "ACGTACGTTGCATGCAACGTGGGCATTACA"
	idx := buildIndex(t, text)
	q := encodeDNA("AGGT") // 1 mismatch from "ACGT"

	var triedBudgets []int
	var gotAtBudget int
	generate := func(j int) (scheme.SearchScheme, error) {
		triedBudgets = append(triedBudgets, j)
		return scheme.Generate("kianfar", j, j, idx.Sigma(), len(q))
	}
	expand := func(s scheme.SearchScheme) []int {
		return scheme.Uniform(s[0].NumParts(), len(q))
	}

	var hits int
	err := SearchBestHits(idx, q, 0, 3, generate, expand, Hamming, 0, func(h Hit) bool {
		hits++
		gotAtBudget = triedBudgets[len(triedBudgets)-1]
		return true
	})
	if err != nil {
		t.Fatalf("SearchBestHits: %v", err)
	}
	if hits == 0 {
		t.Fatal("expected at least one hit")
	}
	if gotAtBudget != 1 {
		t.Fatalf("expected the first hit at budget j=1, got j=%d (tried budgets %v)", gotAtBudget, triedBudgets)
	}
	if len(triedBudgets) != 2 {
		t.Fatalf("expected the widening loop to stop after budget 1 (tried %v), it kept going to budget 0..%d", triedBudgets, triedBudgets[len(triedBudgets)-1])
	}
}

// TestSearchBestHitsExhaustsBudgetWithNoMatch checks that when no budget up
// to maxErrors finds a hit, every budget is tried and no error is returned.
func TestSearchBestHitsExhaustsBudgetWithNoMatch(t *testing.T) {
	text := "AAAAAAAAAAAAAAAA"
	idx := buildIndex(t, text)
	q := encodeDNA("CCCC")

	var triedBudgets []int
	generate := func(j int) (scheme.SearchScheme, error) {
		triedBudgets = append(triedBudgets, j)
		return scheme.Generate("kianfar", j, j, idx.Sigma(), len(q))
	}
	expand := func(s scheme.SearchScheme) []int {
		return scheme.Uniform(s[0].NumParts(), len(q))
	}

	called := false
	err := SearchBestHits(idx, q, 0, 1, generate, expand, Hamming, 0, func(h Hit) bool {
		called = true
		return true
	})
	if err != nil {
		t.Fatalf("SearchBestHits: %v", err)
	}
	if called {
		t.Fatal("expected no hits: every base of q differs from every base of text")
	}
	if len(triedBudgets) != 2 {
		t.Fatalf("expected both budgets 0 and 1 to be tried, got %v", triedBudgets)
	}
}

func otherBase(b byte, rng *rand.Rand) byte {
	bases := []byte{'A', 'C', 'G', 'T'}
	for {
		c := bases[rng.Intn(4)]
		if c != b {
			return c
		}
	}
}

func TestExactSearchMatchesSchemeSearchAtKZero(t *testing.T) {
	text := "ACGTACGTTGCATGCA"
	idx := buildIndex(t, text)
	query := "ACGT"

	cur, ok := ExactSearch(idx, encodeDNA(query))
	if !ok {
		t.Fatal("expected exact search to find a match")
	}

	got := hammingHitPositions(t, idx, query, 0)
	hits, err := idx.LocateCursor(cur, len(query))
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]bool{}
	for _, h := range hits {
		want[int(h.Pos)] = true
	}
	if len(got) != len(want) {
		t.Fatalf("exact search and k=0 scheme search disagree: %v vs %v", got, want)
	}
}

func TestEmptyQueryProducesNoHits(t *testing.T) {
	idx := buildIndex(t, "ACGTACGT")
	s, err := scheme.Generate("backtracking", 0, 1, idx.Sigma(), int(idx.Len()))
	if err != nil {
		t.Fatal(err)
	}
	c := scheme.Uniform(s[0].NumParts(), 0)

	called := false
	Search(idx, nil, s, c, Hamming, 0, func(h Hit) bool {
		called = true
		return true
	})
	if called {
		t.Fatal("expected no hits for an empty query")
	}
}

func TestMaxHitsCapStopsEarly(t *testing.T) {
	idx := buildIndex(t, "AAAAAAAAAAAA")
	q := encodeDNA("AAA")
	s, err := scheme.Generate("backtracking", 0, 0, idx.Sigma(), int(idx.Len()))
	if err != nil {
		t.Fatal(err)
	}
	c := scheme.Uniform(s[0].NumParts(), len(q))

	var total int
	Search(idx, q, s, c, Hamming, 1, func(h Hit) bool {
		total += int(h.Cursor.Len)
		return false
	})
	if total == 0 {
		t.Fatal("expected at least one hit before the cap stopped the walk")
	}

	var positions []int
	for pos := range hammingHitPositions(t, idx, "AAA", 0) {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	if len(positions) != 10 {
		t.Fatalf("sanity check: expected 10 unbounded hits, got %d", len(positions))
	}
}

package batch

import (
	"errors"
	"testing"

	"github.com/shenwei356/sahara/sahara/fmindex"
)

func TestRunPreservesQueryIDOrdering(t *testing.T) {
	queries := make([]Query, 5000)
	for i := range queries {
		queries[i] = Query{ID: uint64(i), Seq: []byte("ACGT")}
	}

	d := New(4)
	d.ChunkSize = 100
	results := d.Run(queries, func(q Query) ([]fmindex.Hit, error) {
		return []fmindex.Hit{{SeqID: 0, Pos: uint32(q.ID)}}, nil
	})

	if len(results) != len(queries) {
		t.Fatalf("got %d results, want %d", len(results), len(queries))
	}
	for i, r := range results {
		if r.QueryID != uint64(i) {
			t.Fatalf("result %d has QueryID %d, expected sorted order", i, r.QueryID)
		}
		if len(r.Hits) != 1 || r.Hits[0].Pos != uint32(i) {
			t.Fatalf("result %d has unexpected hits: %+v", i, r.Hits)
		}
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	queries := []Query{{ID: 0}, {ID: 1}, {ID: 2}}
	boom := errors.New("boom")

	d := New(2)
	results := d.Run(queries, func(q Query) ([]fmindex.Hit, error) {
		if q.ID == 1 {
			return nil, boom
		}
		return nil, nil
	})

	if err := FirstError(results); err != boom {
		t.Fatalf("expected the query-1 error to propagate, got %v", err)
	}
}

func TestRunHandlesEmptyBatch(t *testing.T) {
	d := New(4)
	if results := d.Run(nil, func(q Query) ([]fmindex.Hit, error) { return nil, nil }); results != nil {
		t.Fatalf("expected nil results for an empty batch, got %v", results)
	}
}

func TestRunHandlesFewerQueriesThanWorkers(t *testing.T) {
	queries := []Query{{ID: 0}, {ID: 1}}
	d := New(16)
	results := d.Run(queries, func(q Query) ([]fmindex.Hit, error) { return nil, nil })
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

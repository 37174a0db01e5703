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

// Package batch implements component G, the parallel batch dispatcher: a
// fixed worker pool pulls fixed-size query chunks off a shared atomic
// counter, runs the caller's search function on each query, and merges
// results into one mutex-guarded buffer that is deterministically re-sorted
// by query id before being handed back.
package batch

import (
	"sync"
	"sync/atomic"

	"github.com/shenwei356/sahara/sahara/fmindex"
	"github.com/twotwotwo/sorts"
)

// DefaultChunkSize is the number of queries a single worker claims per
// atomic fetch-and-add, chosen to keep contention on the shared counter low
// without starving the deterministic-sort step at the end (§4.G).
const DefaultChunkSize = 1024

// Query is one input sequence to search, keyed by its position in the
// caller's input stream so results can be restored to that order.
type Query struct {
	ID  uint64
	Seq []byte
}

// Result is one query's outcome. Err is non-nil exactly when the worker that
// processed this query failed (§7: "each worker catches its failures and
// stores them in the shared result structure under an error slot").
type Result struct {
	QueryID uint64
	Hits    []fmindex.Hit
	Err     error
}

// SearchFunc runs one query against the index and returns its hits.
type SearchFunc func(q Query) ([]fmindex.Hit, error)

// Dispatcher runs a SearchFunc over a batch of queries using a fixed pool of
// workers.
type Dispatcher struct {
	Workers   int
	ChunkSize int
	// Progress, if non-nil, is called after each worker finishes a chunk,
	// with the cumulative number of queries completed and the batch total.
	// It lets a CLI front end drive a progress bar without this package
	// depending on one.
	Progress func(done, total int)
}

// New returns a Dispatcher with workers goroutines and the default chunk
// size. workers <= 0 means 1.
func New(workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{Workers: workers, ChunkSize: DefaultChunkSize}
}

// resultsByQueryID sorts a []Result by ascending QueryID; wired to
// twotwotwo/sorts's parallel quicksort the same way the teacher's own
// (k-mer, location) pairs are sorted (sahara/cmd/gen-masks.go's Kmer2Locs).
type resultsByQueryID []Result

func (r resultsByQueryID) Len() int           { return len(r) }
func (r resultsByQueryID) Less(i, j int) bool { return r[i].QueryID < r[j].QueryID }
func (r resultsByQueryID) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }

// Run dispatches queries across d.Workers goroutines, each repeatedly
// claiming the next chunk of d.ChunkSize queries via an atomic counter until
// the input is exhausted, then returns every Result sorted by QueryID.
func (d *Dispatcher) Run(queries []Query, fn SearchFunc) []Result {
	n := len(queries)
	if n == 0 {
		return nil
	}
	chunkSize := d.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var next int64
	var completed int64
	var mu sync.Mutex
	results := make([]Result, 0, n)

	var wg sync.WaitGroup
	workers := d.Workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				start := atomic.AddInt64(&next, int64(chunkSize)) - int64(chunkSize)
				if start >= int64(n) {
					return
				}
				end := start + int64(chunkSize)
				if end > int64(n) {
					end = int64(n)
				}

				local := make([]Result, 0, end-start)
				for _, q := range queries[start:end] {
					hits, err := fn(q)
					local = append(local, Result{QueryID: q.ID, Hits: hits, Err: err})
				}

				mu.Lock()
				results = append(results, local...)
				mu.Unlock()

				if d.Progress != nil {
					done := atomic.AddInt64(&completed, int64(len(local)))
					d.Progress(int(done), n)
				}
			}
		}()
	}
	wg.Wait()

	sorts.Quicksort(resultsByQueryID(results))
	return results
}

// FirstError returns the first error found among results in QueryID order,
// or nil if every query succeeded (§7: "the dispatcher, on join, propagates
// the first such error"). Callers should call Run's result through this
// before trusting any Hits, since Run itself does not abort on a per-query
// failure.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

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

package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/sahara/alphabet"
	"github.com/shenwei356/sahara/sahara/batch"
	"github.com/shenwei356/sahara/sahara/fmindex"
	"github.com/shenwei356/sahara/sahara/scheme"
	"github.com/shenwei356/sahara/sahara/search"
	hitutil "github.com/shenwei356/sahara/sahara/util"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "search query sequences against a bidirectional FM-index",
	Long: `Search query sequences against a bidirectional FM-index built by
"sahara index", reporting every reference position within the requested
error budget.

Output is tab-delimited: query id, reference sequence name, position
(0-based, forward strand coordinates), strand. With --count-only, each
query instead gets a single row of its id and the summed width of every
surviving cursor.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
		timeStart := time.Now()
		defer func() {
			if opt.Verbose || opt.Log2File {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		indexFile := getFlagString(cmd, "index")
		if indexFile == "" {
			checkError(fmt.Errorf("flag -d/--index is needed"))
		}
		outFile := getFlagString(cmd, "out-file")
		alphabetName := getFlagString(cmd, "alphabet")
		generatorName := getFlagString(cmd, "generator")
		minErrors := getFlagNonNegativeInt(cmd, "min-errors")
		maxErrors := getFlagNonNegativeInt(cmd, "max-errors")
		distanceName := getFlagString(cmd, "distance")
		maxHits := getFlagNonNegativeInt(cmd, "max-hits")
		searchModeName := getFlagString(cmd, "search-mode")
		expansionMode := getFlagString(cmd, "expansion-mode")
		countOnly := getFlagBool(cmd, "count-only")
		revcom := getFlagBool(cmd, "revcom")
		seed := getFlagPositiveInt(cmd, "seed")

		switch searchModeName {
		case "all", "besthits":
		default:
			checkError(fmt.Errorf("unknown --search-mode %q, expected all or besthits", searchModeName))
		}

		idx, seqNames := loadIndex(indexFile)
		if opt.Verbose || opt.Log2File {
			log.Infof("loaded index: %d reference sequence(s), sigma=%d, text length=%d", idx.NumOriginalSequences(), idx.Sigma(), idx.Len())
		}

		alpha, unknown, err := resolveAlphabet(alphabetName)
		checkError(err)
		if alpha.Sigma() != idx.Sigma() {
			checkError(fmt.Errorf("alphabet %s has sigma=%d but the index was built with sigma=%d; pass the matching -a/--alphabet", alphabetName, alpha.Sigma(), idx.Sigma()))
		}

		var mode search.DistanceMode
		switch distanceName {
		case "hamming":
			mode = search.Hamming
		case "edit":
			mode = search.Edit
		default:
			checkError(fmt.Errorf("unknown --distance %q, expected hamming or edit", distanceName))
		}

		files := getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)

		outw, err := xopen.Wopen(outFile)
		checkError(err)
		defer outw.Close()
		w := bufio.NewWriter(outw)
		defer w.Flush()

		if countOnly {
			fmt.Fprintln(w, "query\twidth")
		} else {
			fmt.Fprintln(w, "query\tref\tpos\tstrand")
		}

		rng := rand.New(rand.NewSource(int64(seed)))
		names, queries := readQueries(files, alpha, unknown, rng, revcom)
		if opt.Verbose || opt.Log2File {
			log.Infof("searching %d quer(y/ies), generator=%s errors=[%d,%d] distance=%s search-mode=%s", len(queries), generatorName, minErrors, maxErrors, distanceName, searchModeName)
		}

		params := searchParams{
			generatorName: generatorName,
			minErrors:     minErrors,
			maxErrors:     maxErrors,
			mode:          mode,
			maxHits:       maxHits,
			bestHits:      searchModeName == "besthits",
			expansionMode: expansionMode,
			countOnly:     countOnly,
		}

		d := batch.New(opt.NumCPUs)

		var pbs *mpb.Progress
		if opt.Verbose && len(queries) > 0 {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar := pbs.AddBar(int64(len(queries)),
				mpb.PrependDecorators(
					decor.Name("searching: ", decor.WC{W: len("searching: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
			d.Progress = func(done, total int) { bar.SetCurrent(int64(done)) }
		}

		results := d.Run(queries, func(q batch.Query) ([]fmindex.Hit, error) {
			return searchOneQuery(idx, q.Seq, params)
		})
		if pbs != nil {
			pbs.Wait()
		}
		checkError(batch.FirstError(results))

		var total int
		for _, r := range results {
			name := names[r.QueryID]
			if countOnly {
				var width uint32
				for _, h := range r.Hits {
					width += h.Pos
				}
				fmt.Fprintf(w, "%s\t%d\n", name, width)
				continue
			}
			for _, h := range r.Hits {
				refName := seqName(seqNames, idx.OriginalSeqID(h.SeqID))
				strand := "+"
				if h.Reverse {
					strand = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, refName, h.Pos, strand)
				total++
			}
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("done: %d hit(s) across %d quer(y/ies)", total, len(queries))
		}
	},
}

func init() {
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("index", "d", "",
		formatFlagUsage(`Index file built by "sahara index".`))
	searchCmd.Flags().StringP("out-file", "O", "-",
		formatFlagUsage(`Output file, "-" for stdout.`))
	searchCmd.Flags().StringP("alphabet", "a", "dna5",
		formatFlagUsage(`Alphabet the index was built with: dna4, dna5 or protein.`))

	searchCmd.Flags().StringP("generator", "g", "kianfar",
		formatFlagUsage(`Search-scheme generator name.`))
	searchCmd.Flags().IntP("min-errors", "", 0,
		formatFlagUsage(`Minimum tolerated error count.`))
	searchCmd.Flags().IntP("max-errors", "e", 2,
		formatFlagUsage(`Maximum tolerated error count.`))
	searchCmd.Flags().StringP("distance", "", "hamming",
		formatFlagUsage(`Distance model: hamming or edit.`))
	searchCmd.Flags().IntP("max-hits", "", 0,
		formatFlagUsage(`Maximum hits reported per query, 0 for unbounded.`))
	searchCmd.Flags().StringP("search-mode", "", "all",
		formatFlagUsage(`Search mode: "all" reports every hit within [--min-errors,
--max-errors]; "besthits" widens the error budget one step at a time,
starting from --min-errors, and stops at the first budget that yields
any hit.`))
	searchCmd.Flags().StringP("expansion-mode", "", "uniform",
		formatFlagUsage(`Search-scheme part-size expansion: uniform, bottomup or topdown.`))
	searchCmd.Flags().BoolP("count-only", "", false,
		formatFlagUsage(`Skip locating hit positions, only report the summed width
of the surviving cursors per query.`))
	searchCmd.Flags().BoolP("revcom", "R", false,
		formatFlagUsage(`Also search the reverse complement of every query,
emitted right after its forward copy.`))
	searchCmd.Flags().IntP("seed", "", 1,
		formatFlagUsage(`Seed for --alphabet dna4's random replacement of unknown bases.`))

	searchCmd.SetUsageTemplate(usageTemplate("-d <index file> <query files> | -X <file list>"))
}

// gzipMagic is the two leading bytes of every gzip stream, including one
// written by pgzip.Writer; used to tell a "sahara index --compress" file
// apart from a plain one without a separate flag or file extension.
var gzipMagic = [2]byte{0x1f, 0x8b}

func loadIndex(path string) (*fmindex.Index, []string) {
	fh, err := os.Open(path)
	checkError(errors.Wrapf(err, "opening index file %s", path))
	defer fh.Close()

	br := bufio.NewReader(fh)
	magic, err := br.Peek(2)
	checkError(errors.Wrapf(err, "reading index file %s", path))

	r := br
	if len(magic) == 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := pgzip.NewReader(br)
		checkError(errors.Wrapf(err, "opening gzip-compressed index file %s", path))
		defer gz.Close()
		r = bufio.NewReader(gz)
	}

	idx, err := fmindex.ReadFrom(r)
	checkError(errors.Wrapf(err, "reading index file %s", path))

	names := readSeqNames(path + ".seqs.tsv")
	return idx, names
}

func readSeqNames(path string) []string {
	fh, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer fh.Close()

	var names []string
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := scanner.Text()
		i := strings.IndexByte(line, '\t')
		if i < 0 {
			continue
		}
		names = append(names, line[i+1:])
	}
	return names
}

func seqName(names []string, id uint32) string {
	if int(id) < len(names) {
		return names[id]
	}
	return fmt.Sprintf("seq%d", id)
}

// readQueries reads every record from files and alphabet-encodes it,
// returning parallel name/batch.Query slices keyed by read order so results
// can be joined back to record ids after the dispatcher re-sorts them. rng
// backs --alphabet dna4's UnknownRandom strategy. When revcom is set, each
// record's reverse complement is encoded as a second query, named with a
// "/rc" suffix and emitted immediately after its forward copy.
func readQueries(files []string, alpha *alphabet.Alphabet, unknown alphabet.UnknownStrategy, rng *rand.Rand, revcom bool) ([]string, []batch.Query) {
	randFn := func(n int) int { return rng.Intn(n) }

	var names []string
	var queries []batch.Query

	for _, file := range files {
		reader, err := fastx.NewReader(nil, file, "")
		checkError(errors.Wrapf(err, "opening %s", file))

		var record *fastx.Record
		for {
			record, err = reader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				reader.Close()
				checkError(errors.Wrapf(err, "reading %s", file))
			}
			upper := bytes.ToUpper(record.Seq.Seq)
			ranks, err := alpha.Encode(upper, unknown, randFn)
			checkError(errors.Wrapf(err, "encoding query %s in %s", record.ID, file))

			id := uint64(len(names))
			names = append(names, string(record.ID))
			queries = append(queries, batch.Query{ID: id, Seq: ranks})

			if revcom {
				rc, err := seq.NewSeq(seq.DNAredundant, append([]byte{}, upper...))
				checkError(errors.Wrapf(err, "reverse-complementing query %s in %s", record.ID, file))
				rc.RevComInplace()
				rcRanks, err := alpha.Encode(rc.Seq, unknown, randFn)
				checkError(errors.Wrapf(err, "encoding reverse-complement query %s in %s", record.ID, file))

				rcID := uint64(len(names))
				names = append(names, string(record.ID)+"/rc")
				queries = append(queries, batch.Query{ID: rcID, Seq: rcRanks})
			}
		}
		reader.Close()
	}
	return names, queries
}

// searchParams bundles the per-batch search configuration read once from
// flags and reused for every query the dispatcher hands to searchOneQuery.
type searchParams struct {
	generatorName string
	minErrors     int
	maxErrors     int
	mode          search.DistanceMode
	maxHits       int
	bestHits      bool
	expansionMode string
	countOnly     bool
}

// expandParts turns a generated scheme's uniform part count into concrete
// part sizes for the requested expansion policy, mirroring
// sahara/cmd/utils/scheme.go's own expandParts.
func expandParts(s scheme.SearchScheme, mode string, length, sigma int) ([]int, error) {
	p := s[0].NumParts()
	switch mode {
	case "uniform", "":
		return scheme.Uniform(p, length), nil
	case "bottomup":
		return scheme.WeightedNodeCountBottomUp(s, sigma, length, length, true), nil
	case "topdown":
		return scheme.WeightedNodeCountTopDown(s, sigma, length, length, 0, true), nil
	default:
		return nil, fmt.Errorf("unknown --expansion-mode %q, expected uniform, bottomup or topdown", mode)
	}
}

// dedupeHits collapses exact-duplicate (seqID, pos, strand) hits, which
// distinct cursors reached via different Search entries of a scheme, or
// different best-hits error budgets, can independently resolve to.
func dedupeHits(hits []fmindex.Hit) []fmindex.Hit {
	if len(hits) < 2 {
		return hits
	}
	keys := make([]uint64, len(hits))
	for i, h := range hits {
		keys[i] = hitutil.PackHitKey(h.SeqID, h.Pos, h.Reverse)
	}
	hitutil.SortUniqueUint64s(&keys)

	out := make([]fmindex.Hit, len(keys))
	for i, k := range keys {
		seqID, pos, reverse := hitutil.UnpackHitKey(k)
		out[i] = fmindex.Hit{SeqID: seqID, Pos: pos, Reverse: reverse}
	}
	return out
}

// widthOnlyHits packs the surviving cursors' widths into synthetic Hit
// values (Pos = cursor width, SeqID/Reverse unused) so --count-only can
// reuse the same []fmindex.Hit return shape as an ordinary search without
// calling idx.LocateCursor at all.
func widthOnlyHits(cursors []fmindex.Cursor) []fmindex.Hit {
	hits := make([]fmindex.Hit, len(cursors))
	for i, cur := range cursors {
		hits[i] = fmindex.Hit{Pos: uint32(cur.Len)}
	}
	return hits
}

func searchOneQuery(idx *fmindex.Index, q []byte, p searchParams) ([]fmindex.Hit, error) {
	if len(q) == 0 {
		return nil, nil
	}
	if p.maxErrors == 0 && p.minErrors == 0 {
		cur, ok := search.ExactSearch(idx, q)
		if !ok {
			return nil, nil
		}
		if p.countOnly {
			return widthOnlyHits([]fmindex.Cursor{cur}), nil
		}
		cursorHits, err := idx.LocateCursor(cur, len(q))
		if err != nil {
			return nil, err
		}
		return dedupeHits(cursorHits), nil
	}

	generate := func(j int) (scheme.SearchScheme, error) {
		return scheme.Generate(p.generatorName, j, j, idx.Sigma(), len(q))
	}

	seen := map[fmindex.Cursor]bool{}
	var cursors []fmindex.Cursor
	var hits []fmindex.Hit
	var searchErr error
	collect := func(h search.Hit) bool {
		if seen[h.Cursor] {
			return true
		}
		seen[h.Cursor] = true
		if p.countOnly {
			cursors = append(cursors, h.Cursor)
			return true
		}
		cursorHits, err := idx.LocateCursor(h.Cursor, len(q))
		if err != nil {
			searchErr = err
			return false
		}
		hits = append(hits, cursorHits...)
		return true
	}

	if p.bestHits {
		expand := func(s scheme.SearchScheme) []int {
			c, err := expandParts(s, p.expansionMode, len(q), idx.Sigma())
			if err != nil {
				searchErr = err
				return nil
			}
			return c
		}
		if err := search.SearchBestHits(idx, q, p.minErrors, p.maxErrors, generate, expand, p.mode, p.maxHits, collect); err != nil {
			return nil, err
		}
	} else {
		s, err := scheme.Generate(p.generatorName, p.minErrors, p.maxErrors, idx.Sigma(), len(q))
		if err != nil {
			return nil, err
		}
		c, err := expandParts(s, p.expansionMode, len(q), idx.Sigma())
		if err != nil {
			return nil, err
		}
		search.Search(idx, q, s, c, p.mode, p.maxHits, collect)
	}
	if searchErr != nil {
		return nil, searchErr
	}
	if p.countOnly {
		return widthOnlyHits(cursors), nil
	}
	return dedupeHits(hits), nil
}

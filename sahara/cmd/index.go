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
	"path/filepath"
	"regexp"
	"time"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/sahara/alphabet"
	"github.com/shenwei356/sahara/internal/rankdict"
	"github.com/shenwei356/sahara/sahara/fmindex"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "build a bidirectional FM-index from FASTA/Q reference sequences",
	Long: `Build a bidirectional FM-index from FASTA/Q reference sequences.

Input:
  1. Reference sequence files given as positional arguments, or via
     -X/--infile-list with one path per line.
  2. Or a directory of sequence files via -I/--in-dir, matched by
     -r/--file-regexp.

Every FASTA/Q record becomes one reference sequence, keyed by its
identifier, unless --by-file collapses each whole file into a single
concatenated sequence keyed by the file's basename.
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

		outFile := getFlagString(cmd, "out-file")
		if outFile == "" {
			checkError(fmt.Errorf("flag -O/--out-file is needed"))
		}
		force := getFlagBool(cmd, "force")
		if !force {
			existed, err := pathutil.Exists(outFile)
			checkError(errors.Wrapf(err, "checking output file %s", outFile))
			if existed {
				checkError(fmt.Errorf("output file %s already exists, use --force to overwrite", outFile))
			}
		}

		inDir := getFlagString(cmd, "in-dir")
		reFileStr := getFlagString(cmd, "file-regexp")
		byFile := getFlagBool(cmd, "by-file")
		alphabetName := getFlagString(cmd, "alphabet")
		samplingRate := getFlagPositiveInt(cmd, "sample-rate")
		nonDelimited := getFlagBool(cmd, "non-delimited")
		mirror := getFlagBool(cmd, "mirror")
		rankKind := getFlagString(cmd, "rank-dict")
		seed := getFlagPositiveInt(cmd, "seed")
		compress := getFlagBool(cmd, "compress")

		var files []string
		var err error
		if inDir != "" {
			isDir, err := pathutil.IsDir(inDir)
			checkError(errors.Wrapf(err, "checking -I/--in-dir: %s", inDir))
			if !isDir {
				checkError(fmt.Errorf("-I/--in-dir is not a directory: %s", inDir))
			}

			reFile, reErr := regexp.Compile(reFileStr)
			checkError(errors.Wrapf(reErr, "compiling -r/--file-regexp"))
			files, err = getFileListFromDir(inDir, reFile, opt.NumCPUs)
			checkError(errors.Wrapf(err, "walking dir: %s", inDir))
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		}
		if len(files) < 1 {
			checkError(fmt.Errorf("reference sequence files needed"))
		}

		alpha, unknown, err := resolveAlphabet(alphabetName)
		checkError(err)

		if opt.Verbose || opt.Log2File {
			log.Infof("alphabet: %s (sigma=%d)", alpha.Name(), alpha.Sigma())
			log.Infof("reading %d reference file(s) ...", len(files))
		}

		rng := rand.New(rand.NewSource(int64(seed)))
		names, seqs, err := readReferenceSequences(files, byFile, alpha, unknown, rng)
		checkError(err)
		if len(seqs) == 0 {
			checkError(fmt.Errorf("no usable reference sequences found"))
		}

		kind, err := parseRankDictKind(rankKind)
		checkError(err)

		bopt := fmindex.DefaultBuildOptions()
		bopt.SamplingRate = samplingRate
		bopt.Delimited = !nonDelimited
		bopt.RankDictKind = kind
		bopt.Mirror = mirror
		if mirror {
			bopt.Complement = dnaComplementTable(alpha)
		}

		if opt.Verbose || opt.Log2File {
			log.Infof("building index over %d reference sequences (delimited=%v mirror=%v rank-dict=%s sample-rate=%d)",
				len(seqs), bopt.Delimited, bopt.Mirror, kind, samplingRate)
		}

		var pbs *mpb.Progress
		var bar *mpb.Bar
		if opt.Verbose {
			pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
			bar = pbs.AddBar(int64(fmindex.BuildStageCount),
				mpb.PrependDecorators(
					decor.Name("building index: ", decor.WC{W: len("building index: "), C: decor.DindentRight}),
					decor.Name("", decor.WCSyncSpaceR),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(),
					decor.OnComplete(decor.Name(""), ". done"),
				),
			)
			bopt.Progress = func(stage string) { bar.Increment() }
		}

		idx, err := fmindex.Build(seqs, alpha.Sigma(), bopt)
		checkError(err)
		if pbs != nil {
			pbs.Wait()
		}

		if err := os.MkdirAll(filepath.Dir(outFile), 0777); err != nil && !os.IsExist(err) {
			checkError(err)
		}

		fh, err := os.Create(outFile)
		checkError(err)

		var out io.Writer = fh
		var pgz *pgzip.Writer
		if compress {
			pgz = pgzip.NewWriter(fh)
			out = pgz
		}
		w := bufio.NewWriter(out)
		if _, err := idx.WriteTo(w); err != nil {
			checkError(err)
		}
		checkError(w.Flush())
		if pgz != nil {
			checkError(pgz.Close())
		}
		checkError(fh.Close())

		namesFile := outFile + ".seqs.tsv"
		checkError(writeSeqNames(namesFile, names))

		if opt.Verbose || opt.Log2File {
			log.Infof("index saved to %s (sequence names: %s)", outFile, namesFile)
		}
	},
}

func init() {
	RootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing FASTA/Q files.`))
	indexCmd.Flags().StringP("file-regexp", "r", `\.(f[aq](st[aq])?|fna)(.gz)?$`,
		formatFlagUsage(`Regular expression for matching sequence files in -I/--in-dir.`))
	indexCmd.Flags().BoolP("by-file", "", false,
		formatFlagUsage(`Treat each input file as one concatenated reference sequence instead of one per record.`))

	indexCmd.Flags().StringP("out-file", "O", "",
		formatFlagUsage(`Output index file.`))
	indexCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Overwrite an existing output file.`))
	indexCmd.Flags().BoolP("compress", "", false,
		formatFlagUsage(`Gzip-compress the index file with a parallel gzip writer.`))

	indexCmd.Flags().StringP("alphabet", "a", "dna5",
		formatFlagUsage(`Reference alphabet: dna4, dna5 or protein.`))
	indexCmd.Flags().IntP("sample-rate", "s", 16,
		formatFlagUsage(`Suffix-array sampling rate for the locate table.`))
	indexCmd.Flags().BoolP("non-delimited", "", false,
		formatFlagUsage(`Build one undelimited concatenated text instead of separating sequences with sentinels.`))
	indexCmd.Flags().BoolP("mirror", "", false,
		formatFlagUsage(`Also index the reverse complement of every sequence for single-pass two-strand search.`))
	indexCmd.Flags().StringP("rank-dict", "", "wavelet",
		formatFlagUsage(`Rank-dictionary backend: wavelet, reduced or plain.`))
	indexCmd.Flags().IntP("seed", "", 1,
		formatFlagUsage(`Seed for --alphabet dna4's random replacement of unknown bases.`))

	indexCmd.SetUsageTemplate(usageTemplate("{[-I <seqs dir>] | <seq files> | -X <file list>} -O <out file>"))
}

func resolveAlphabet(name string) (*alphabet.Alphabet, alphabet.UnknownStrategy, error) {
	switch name {
	case "dna4":
		return alphabet.DNA4(true), alphabet.UnknownRandom, nil
	case "dna5":
		return alphabet.DNA5(true), alphabet.UnknownToPad, nil
	case "protein":
		return alphabet.Protein(true), alphabet.UnknownToPad, nil
	default:
		return nil, 0, fmt.Errorf("unknown alphabet %q, expected dna4, dna5 or protein", name)
	}
}

func parseRankDictKind(name string) (rankdict.Kind, error) {
	switch name {
	case "wavelet":
		return rankdict.KindWavelet, nil
	case "reduced":
		return rankdict.KindReduced, nil
	case "plain":
		return rankdict.KindPlain, nil
	default:
		return 0, fmt.Errorf("unknown rank-dict backend %q, expected wavelet, reduced or plain", name)
	}
}

// dnaComplementTable builds the rank-level complement table mirror mode
// needs, valid only for the dna4/dna5 alphabets (A<->T, C<->G; N and the
// sentinel map to themselves).
func dnaComplementTable(a *alphabet.Alphabet) []byte {
	pairs := map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C'}
	table := make([]byte, a.Sigma())
	for r := 0; r < a.Sigma(); r++ {
		letter := a.Letter(r)
		if partner, ok := pairs[letter]; ok {
			pr, _ := a.Rank(partner)
			table[r] = byte(pr)
		} else {
			table[r] = byte(r)
		}
	}
	return table
}

// readReferenceSequences reads every record (or, with byFile, every whole
// file) from files and alphabet-encodes it, returning parallel name/sequence
// slices in the order sequences were read. rng backs --alphabet dna4's
// UnknownRandom strategy so unknown bases are actually replaced with a
// uniformly random letter instead of a fixed default one.
func readReferenceSequences(files []string, byFile bool, alpha *alphabet.Alphabet, unknown alphabet.UnknownStrategy, rng *rand.Rand) ([]string, [][]byte, error) {
	var names []string
	var seqs [][]byte
	randFn := func(n int) int { return rng.Intn(n) }

	for _, file := range files {
		reader, err := fastx.NewReader(nil, file, "")
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening %s", file)
		}

		var fileBuf bytes.Buffer
		fileName := baseNameNoExt(file)
		var record *fastx.Record
		for {
			record, err = reader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				reader.Close()
				return nil, nil, errors.Wrapf(err, "reading %s", file)
			}
			if byFile {
				fileBuf.Write(bytes.ToUpper(record.Seq.Seq))
				continue
			}
			ranks, err := alpha.Encode(bytes.ToUpper(record.Seq.Seq), unknown, randFn)
			if err != nil {
				reader.Close()
				return nil, nil, errors.Wrapf(err, "encoding %s in %s", record.ID, file)
			}
			names = append(names, string(record.ID))
			seqs = append(seqs, ranks)
		}
		reader.Close()

		if byFile && fileBuf.Len() > 0 {
			ranks, err := alpha.Encode(fileBuf.Bytes(), unknown, randFn)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "encoding %s", file)
			}
			names = append(names, fileName)
			seqs = append(seqs, ranks)
		}
	}
	return names, seqs, nil
}

func baseNameNoExt(file string) string {
	base := filepath.Base(file)
	for _, ext := range []string{".gz", ".xz", ".zst", ".bz2"} {
		base = trimSuffix(base, ext)
	}
	return trimSuffix(base, filepath.Ext(base))
}

func trimSuffix(s, suffix string) string {
	if len(suffix) > 0 && len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}

// writeSeqNames persists the original-sequence-id -> name mapping the index
// binary format itself doesn't carry (§6 stores only per-sequence lengths).
func writeSeqNames(path string, names []string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	w := bufio.NewWriter(fh)
	for i, name := range names {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, name); err != nil {
			return err
		}
	}
	return w.Flush()
}

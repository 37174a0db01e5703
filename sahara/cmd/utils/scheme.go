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

package utils

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/shenwei356/sahara/sahara/scheme"
	"github.com/spf13/cobra"
)

func checkError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var schemeCmd = &cobra.Command{
	Use:   "scheme",
	Short: "generate and inspect search schemes",
	Long: `Generate a named search scheme and print its parts, or list every
known generator along with its node count for a given query length.
`,
	Run: func(cmd *cobra.Command, args []string) {
		list, _ := cmd.Flags().GetBool("list")
		if list {
			for _, name := range scheme.Names {
				fmt.Println(name)
			}
			return
		}

		generator, _ := cmd.Flags().GetString("generator")
		length, _ := cmd.Flags().GetInt("length")
		minErrors, _ := cmd.Flags().GetInt("min-errors")
		maxErrors, _ := cmd.Flags().GetInt("max-errors")
		sigma, _ := cmd.Flags().GetInt("sigma")
		all, _ := cmd.Flags().GetBool("all")
		tomlOut, _ := cmd.Flags().GetBool("toml")
		expansionMode, _ := cmd.Flags().GetString("expansion-mode")

		if all {
			printAllGenerators(length, minErrors, maxErrors, sigma, expansionMode, tomlOut)
			return
		}

		printOneGenerator(generator, length, minErrors, maxErrors, sigma, expansionMode, tomlOut)
	},
}

func init() {
	Command.AddCommand(schemeCmd)

	schemeCmd.Flags().BoolP("list", "", false, "print the names of every known generator and exit")
	schemeCmd.Flags().StringP("generator", "g", "pigeon", "which generator to use")
	schemeCmd.Flags().IntP("length", "l", 150, "assumed query length, for part-size expansion")
	schemeCmd.Flags().IntP("min-errors", "", 0, "minimum tolerated error count")
	schemeCmd.Flags().IntP("max-errors", "k", 2, "maximum tolerated error count")
	schemeCmd.Flags().IntP("sigma", "", 4, "alphabet size, e.g. 4 for ACGT")
	schemeCmd.Flags().BoolP("all", "a", false, "print a summary table for every generator")
	schemeCmd.Flags().BoolP("toml", "y", false, "print structured TOML instead of plain text")
	schemeCmd.Flags().StringP("expansion-mode", "", "uniform", "part-size expansion: uniform, bottomup or topdown")
}

func expandParts(s scheme.SearchScheme, mode string, length, sigma int) []int {
	p := s[0].NumParts()
	switch mode {
	case "uniform":
		return scheme.Uniform(p, length)
	case "bottomup":
		return scheme.WeightedNodeCountBottomUp(s, sigma, length, length, true)
	case "topdown":
		return scheme.WeightedNodeCountTopDown(s, sigma, length, length, 0, true)
	default:
		checkError(fmt.Errorf("invalid --expansion-mode %q", mode))
		return nil
	}
}

type schemeReport struct {
	Generator  string  `toml:"generator"`
	NumSearch  int     `toml:"num_searches"`
	NumParts   int     `toml:"num_parts"`
	NodeCount  float64 `toml:"node_count"`
	WNodeCount float64 `toml:"weighted_node_count"`
}

func buildReport(name string, length, minErrors, maxErrors, sigma int, mode string) (schemeReport, error) {
	s, err := scheme.Generate(name, minErrors, maxErrors, sigma, length)
	if err != nil {
		return schemeReport{}, err
	}
	c := expandParts(s, mode, length, sigma)
	return schemeReport{
		Generator:  name,
		NumSearch:  len(s),
		NumParts:   s[0].NumParts(),
		NodeCount:  scheme.NodeCount(s, c, sigma, true),
		WNodeCount: scheme.WeightedNodeCount(s, c, sigma, length, true),
	}, nil
}

func printOneGenerator(name string, length, minErrors, maxErrors, sigma int, mode string, tomlOut bool) {
	s, err := scheme.Generate(name, minErrors, maxErrors, sigma, length)
	checkError(err)
	c := expandParts(s, mode, length, sigma)

	if tomlOut {
		out, err := toml.Marshal(map[string]interface{}{
			"generator": name,
			"parts":     c,
			"searches":  s,
		})
		checkError(err)
		fmt.Print(string(out))
		return
	}

	fmt.Printf("generator: %s\n", name)
	fmt.Printf("parts (lengths): %v\n", c)
	for i, one := range s {
		fmt.Printf("  search %d: pi=%v L=%v U=%v\n", i, one.Pi, one.L, one.U)
	}
	fmt.Printf("node count: %.1f\n", scheme.NodeCount(s, c, sigma, true))
	fmt.Printf("weighted node count: %.1f\n", scheme.WeightedNodeCount(s, c, sigma, length, true))
}

func printAllGenerators(length, minErrors, maxErrors, sigma int, mode string, tomlOut bool) {
	names := append([]string{}, scheme.Names...)
	sort.Strings(names)

	var reports []schemeReport
	for _, name := range names {
		r, err := buildReport(name, length, minErrors, maxErrors, sigma, mode)
		if err != nil {
			continue
		}
		reports = append(reports, r)
	}

	if tomlOut {
		out, err := toml.Marshal(map[string]interface{}{"generator": reports})
		checkError(err)
		fmt.Print(string(out))
		return
	}

	fmt.Printf("%-16s %10s %10s %14s %18s\n", "generator", "#search", "#parts", "node-count", "w-node-count")
	for _, r := range reports {
		fmt.Printf("%-16s %10d %10d %14.1f %18.1f\n", r.Generator, r.NumSearch, r.NumParts, r.NodeCount, r.WNodeCount)
	}
}

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
	"sort"

	"github.com/shenwei356/sahara/sahara/scheme"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var schemePlotCmd = &cobra.Command{
	Use:   "scheme-plot",
	Short: "plot node counts of every generator as a bar chart",
	Long: `Generate every named search scheme for a given query length and error
budget, expand it into parts, and render a bar chart comparing node count and
weighted node count across generators to an image file.
`,
	Run: func(cmd *cobra.Command, args []string) {
		length, _ := cmd.Flags().GetInt("length")
		minErrors, _ := cmd.Flags().GetInt("min-errors")
		maxErrors, _ := cmd.Flags().GetInt("max-errors")
		sigma, _ := cmd.Flags().GetInt("sigma")
		mode, _ := cmd.Flags().GetString("expansion-mode")
		out, _ := cmd.Flags().GetString("out-file")
		width, _ := cmd.Flags().GetFloat64("width")
		height, _ := cmd.Flags().GetFloat64("height")

		names := append([]string{}, scheme.Names...)
		sort.Strings(names)

		nodeCounts := make(plotter.Values, 0, len(names))
		weightedCounts := make(plotter.Values, 0, len(names))
		labels := make([]string, 0, len(names))
		for _, name := range names {
			r, err := buildReport(name, length, minErrors, maxErrors, sigma, mode)
			if err != nil {
				continue
			}
			labels = append(labels, name)
			nodeCounts = append(nodeCounts, r.NodeCount)
			weightedCounts = append(weightedCounts, r.WNodeCount)
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("search-scheme node counts (Q=%d, k=[%d,%d], sigma=%d)",
			length, minErrors, maxErrors, sigma)
		p.Y.Label.Text = "node count"
		p.X.Label.Text = "generator"

		barWidth := vg.Points(10)
		nodeBars, err := plotter.NewBarChart(nodeCounts, barWidth)
		checkError(err)
		nodeBars.Color = plotutil.Color(0)
		nodeBars.Offset = -barWidth / 2

		weightedBars, err := plotter.NewBarChart(weightedCounts, barWidth)
		checkError(err)
		weightedBars.Color = plotutil.Color(1)
		weightedBars.Offset = barWidth / 2

		p.Add(nodeBars, weightedBars)
		p.Legend.Add("node count", nodeBars)
		p.Legend.Add("weighted node count", weightedBars)
		p.NominalX(labels...)

		checkError(p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, out))
		fmt.Printf("wrote plot to %s\n", out)
	},
}

func init() {
	Command.AddCommand(schemePlotCmd)

	schemePlotCmd.Flags().IntP("length", "l", 150, "assumed query length, for part-size expansion")
	schemePlotCmd.Flags().IntP("min-errors", "", 0, "minimum tolerated error count")
	schemePlotCmd.Flags().IntP("max-errors", "k", 2, "maximum tolerated error count")
	schemePlotCmd.Flags().IntP("sigma", "", 4, "alphabet size, e.g. 4 for ACGT")
	schemePlotCmd.Flags().StringP("expansion-mode", "", "uniform", "part-size expansion: uniform, bottomup or topdown")
	schemePlotCmd.Flags().StringP("out-file", "o", "scheme-node-counts.png", "output image file")
	schemePlotCmd.Flags().Float64P("width", "", 10, "image width in inches")
	schemePlotCmd.Flags().Float64P("height", "", 5, "image height in inches")
}

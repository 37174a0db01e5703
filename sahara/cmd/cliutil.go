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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func isStdin(file string) bool {
	return file == "-"
}

// formatFlagUsage collapses a multi-line doc string onto one line, matching
// cobra's single-line flag usage convention.
func formatFlagUsage(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// usageTemplate embeds a one-line synopsis into cobra's default usage
// section, printed as "Usage: sahara <cmd> <synopsis>".
func usageTemplate(synopsis string) string {
	return fmt.Sprintf("Usage:{{if .Runnable}}\n  {{.UseLine}} %s{{end}}{{if .HasAvailableSubCommands}}\n  {{.CommandPath}} [command]{{end}}\n\nFlags:\n{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}\n", synopsis)
}

// getFileListFromArgsAndFile collects input file paths from positional args,
// falling back to reading them one-per-line from a --infile-list file when
// given, and finally to stdin ("-") when neither is present.
func getFileListFromArgsAndFile(cmd *cobra.Command, args []string, checkExist bool, listFlag string, checkList bool) []string {
	files := append([]string{}, args...)

	listFile := getFlagString(cmd, listFlag)
	if listFile != "" {
		fh, err := os.Open(listFile)
		if err != nil {
			checkError(fmt.Errorf("reading %s: %w", listFlag, err))
		}
		defer fh.Close()

		scanner := bufio.NewScanner(fh)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				files = append(files, line)
			}
		}
		if err := scanner.Err(); err != nil {
			checkError(err)
		}
	}

	if len(files) == 0 {
		return []string{"-"}
	}

	if checkExist {
		for _, f := range files {
			if isStdin(f) {
				continue
			}
			if _, err := os.Stat(f); err != nil {
				checkError(fmt.Errorf("input file not found: %s", f))
			}
		}
	}

	return files
}

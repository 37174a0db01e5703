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

// Package cmd is the command-line front end: a cobra root command wiring
// index/search/utils subcommands to the sahara/fmindex, sahara/scheme,
// sahara/search and sahara/batch packages.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/mattn/go-colorable"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var logFormat = logging.MustStringFormatter(
	`%{color}[%{level:.4s}]%{color:reset} %{message}`,
)

var defaultBackendLeveled logging.LeveledBackend

func init() {
	backend := logging.NewLogBackend(colorable.NewColorableStderr(), "", 0)
	backendFormatted := logging.NewBackendFormatter(backend, logFormat)
	defaultBackendLeveled = logging.AddModuleLevel(backendFormatted)
	defaultBackendLeveled.SetLevel(logging.NOTICE, "")
	logging.SetBackend(defaultBackendLeveled)
}

// RootCmd is the entry point every subcommand attaches to.
var RootCmd = &cobra.Command{
	Use:   "sahara",
	Short: "bidirectional FM-index approximate string matching for biological sequences",
	Long: `sahara builds a bidirectional FM-index over a set of reference
sequences and searches it for approximate (Hamming- or edit-distance
bounded) occurrences of query sequences, using search-scheme-guided
backtracking.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlagBool(cmd, "quiet") {
			defaultBackendLeveled.SetLevel(logging.ERROR, "")
		} else if getFlagBool(cmd, "verbose") {
			defaultBackendLeveled.SetLevel(logging.DEBUG, "")
		}
		loadConfigFile(cmd)
	},
}

// Execute runs the root command; called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().IntP("threads", "j", 0, "number of CPUs to use, 0 for all available")
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error log messages")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print debug-level log messages")
	RootCmd.PersistentFlags().StringP("log", "", "", "also write log messages to this file")
	RootCmd.PersistentFlags().StringP("infile-list", "X", "", "file of input file paths, one per line")
	RootCmd.PersistentFlags().StringP("config", "", "", "TOML config file overriding default flag values (default: ~/.sahara.toml)")
}

// tomlConfig mirrors the subset of persistent/subcommand flags a config file
// may override. Fields left zero-valued in the file don't touch the flag.
type tomlConfig struct {
	Threads int    `toml:"threads"`
	Quiet   bool   `toml:"quiet"`
	Log     string `toml:"log"`
}

func loadConfigFile(cmd *cobra.Command) {
	path := getFlagString(cmd, "config")
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return
		}
		candidate := filepath.Join(home, ".sahara.toml")
		if _, err := os.Stat(candidate); err != nil {
			return
		}
		path = candidate
	}

	data, err := os.ReadFile(path)
	if err != nil {
		checkError(fmt.Errorf("reading config file %s: %w", path, err))
	}

	var cfg tomlConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		checkError(fmt.Errorf("parsing config file %s: %w", path, err))
	}

	if cfg.Threads > 0 && !cmd.Flags().Changed("threads") {
		checkError(cmd.Flags().Set("threads", fmt.Sprintf("%d", cfg.Threads)))
	}
	if cfg.Quiet && !cmd.Flags().Changed("quiet") {
		checkError(cmd.Flags().Set("quiet", "true"))
	}
	if cfg.Log != "" && !cmd.Flags().Changed("log") {
		checkError(cmd.Flags().Set("log", cfg.Log))
	}
}

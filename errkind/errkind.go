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

// Package errkind classifies the three error kinds the engine can raise:
// configuration mistakes, I/O failures, and internal invariant violations.
package errkind

import "fmt"

// Config wraps a caller-facing configuration mistake: an invalid alphabet
// rank, an unknown generator/index-type name, an inconsistent error budget,
// empty input, or a σ mismatch between query and index. Surfaced immediately,
// never retried.
type Config struct {
	Msg string
}

func (e *Config) Error() string { return "config: " + e.Msg }

// NewConfig builds a *Config with a formatted message.
func NewConfig(format string, args ...interface{}) *Config {
	return &Config{Msg: fmt.Sprintf(format, args...)}
}

// IO wraps a file or serialization failure with path context.
type IO struct {
	Path string
	Err  error
}

func (e *IO) Error() string {
	if e.Path == "" {
		return "io: " + e.Err.Error()
	}
	return fmt.Sprintf("io: %s: %s", e.Path, e.Err)
}

func (e *IO) Unwrap() error { return e.Err }

// NewIO wraps err with path context. Returns nil if err is nil.
func NewIO(path string, err error) error {
	if err == nil {
		return nil
	}
	return &IO{Path: path, Err: err}
}

// Invariant is a fatal internal assertion failure: locate walked more than s
// LF-steps, rank returned an out-of-bounds answer, cursor lengths desynced.
// Callers of the search/fmindex packages should treat this as unrecoverable.
type Invariant struct {
	Msg string
}

func (e *Invariant) Error() string { return "invariant violation: " + e.Msg }

// NewInvariant builds an *Invariant with a formatted message.
func NewInvariant(format string, args ...interface{}) *Invariant {
	return &Invariant{Msg: fmt.Sprintf(format, args...)}
}

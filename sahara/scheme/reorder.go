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

package scheme

// Direction names which extend operation consumes a part's query positions.
type Direction int

const (
	DirRight Direction = iota
	DirLeft
)

// PartOffsets returns the start offset, in the original left-to-right query
// numbering, of each part given concrete part sizes c.
func PartOffsets(c []int) []int {
	offsets := make([]int, len(c))
	var pos int
	for i, cj := range c {
		offsets[i] = pos
		pos += cj
	}
	return offsets
}

// Reorder walks search's parts in Pi order and returns, for every step of
// the walk, the query position the driver should pull next and which
// direction produced it (§4.D.5). The first part in Pi order is the pivot
// and is always consumed left to right, matching the driver's fresh
// full-range cursor initialized at its left boundary (§4.E step 1); every
// later part is a left extension if its index precedes every part visited so
// far, or a right extension otherwise.
func Reorder(search Search, c []int) (positions []int, dirs []Direction) {
	offsets := PartOffsets(c)
	total := sum(c)
	positions = make([]int, 0, total)
	dirs = make([]Direction, 0, len(search.Pi))

	if len(search.Pi) == 0 {
		return positions, dirs
	}
	minVisited, maxVisited := search.Pi[0], search.Pi[0]
	for i, part := range search.Pi {
		start := offsets[part]
		end := start + c[part]

		dir := DirRight
		if i > 0 && part < minVisited {
			dir = DirLeft
		}

		if dir == DirRight {
			for pos := start; pos < end; pos++ {
				positions = append(positions, pos)
			}
		} else {
			for pos := end - 1; pos >= start; pos-- {
				positions = append(positions, pos)
			}
		}
		dirs = append(dirs, dir)

		if part < minVisited {
			minVisited = part
		}
		if part > maxVisited {
			maxVisited = part
		}
	}
	return positions, dirs
}

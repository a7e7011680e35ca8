// Package grid turns spreadsheet exports into a dense table of cell text.
package grid

import "strings"

// Grid is a dense rows x cols table, missing cells are "".
type Grid struct {
	cells [][]string
}

func New(rows, cols int) Grid {
	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}
	return Grid{cells: cells}
}

// FromRows wraps rows, shorter rows are padded to the longest one.
func FromRows(rows [][]string) Grid {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	g := New(len(rows), cols)
	for i, r := range rows {
		copy(g.cells[i], r)
	}
	return g
}

func (g Grid) Rows() int {
	return len(g.cells)
}

func (g Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// Cell returns the text at row, col. Coordinates outside the grid read as "".
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.cells) {
		return ""
	}
	if col < 0 || col >= len(g.cells[row]) {
		return ""
	}
	return g.cells[row][col]
}

func (g Grid) set(row, col int, text string) {
	g.cells[row][col] = text
}

// FindRow returns the first row whose cell in col equals text, or -1.
func (g Grid) FindRow(col int, text string) int {
	for i := range g.cells {
		if g.Cell(i, col) == text {
			return i
		}
	}
	return -1
}

// IsBlank reports whether the cell is empty after trimming whitespace.
func (g Grid) IsBlank(row, col int) bool {
	return strings.TrimSpace(g.Cell(row, col)) == ""
}

package grid

import (
	"encoding/json"
	"strconv"

	"menufetcher/internal/menu"
)

type textNode struct {
	Text string `json:"$t"`
}

type cellFeed struct {
	Feed struct {
		Entry []struct {
			Title   textNode `json:"title"`
			Content textNode `json:"content"`
		} `json:"entry"`
		RowCount textNode `json:"gs$rowCount"`
		ColCount textNode `json:"gs$colCount"`
	} `json:"feed"`
}

// maxCells bounds the sheet size a feed may declare, menu sheets are a few
// hundred cells.
const maxCells = 1 << 20

// FromCellFeed builds a grid out of a spreadsheet cells feed (json alt format), the
// feed only lists non-empty cells together with the declared sheet size. Every
// error is a menu.ErrMalformed.
func FromCellFeed(raw []byte) (Grid, error) {
	var feed cellFeed
	err := json.Unmarshal(raw, &feed)
	if err != nil {
		return Grid{}, menu.Malformed("decode cell feed", err)
	}

	rows, err := strconv.Atoi(feed.Feed.RowCount.Text)
	if err != nil {
		return Grid{}, menu.Malformed("row count", err)
	}
	cols, err := strconv.Atoi(feed.Feed.ColCount.Text)
	if err != nil {
		return Grid{}, menu.Malformed("col count", err)
	}
	if rows < 0 || cols < 0 || (cols > 0 && rows > maxCells/cols) {
		return Grid{}, menu.Malformedf("cell feed declares a %dx%d sheet", rows, cols)
	}

	g := New(rows, cols)
	for _, entry := range feed.Feed.Entry {
		row, col, err := ParseAddress(entry.Title.Text)
		if err != nil {
			return Grid{}, menu.Malformed("cell address", err)
		}
		if row >= rows || col >= cols {
			return Grid{}, menu.Malformedf("cell %s outside of declared %dx%d sheet", entry.Title.Text, rows, cols)
		}
		g.set(row, col, entry.Content.Text)
	}
	return g, nil
}

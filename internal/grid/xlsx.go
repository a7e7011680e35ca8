package grid

import (
	"fmt"

	"github.com/tealeg/xlsx/v3"
)

// SheetNames lists the worksheets of an xlsx workbook in order.
func SheetNames(raw []byte) ([]string, error) {
	file, err := xlsx.OpenBinary(raw)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	names := make([]string, len(file.Sheets))
	for i, sheet := range file.Sheets {
		names[i] = sheet.Name
	}
	return names, nil
}

// FromXLSX reads the named worksheet of an xlsx workbook.
func FromXLSX(raw []byte, sheetName string) (Grid, error) {
	file, err := xlsx.OpenBinary(raw)
	if err != nil {
		return Grid{}, fmt.Errorf("open workbook: %w", err)
	}
	sheet, ok := file.Sheet[sheetName]
	if !ok {
		return Grid{}, fmt.Errorf("no sheet named %q", sheetName)
	}

	g := New(sheet.MaxRow, sheet.MaxCol)
	for r := 0; r < sheet.MaxRow; r++ {
		for c := 0; c < sheet.MaxCol; c++ {
			cell, err := sheet.Cell(r, c)
			if err != nil {
				return Grid{}, fmt.Errorf("read cell %s%d: %w", EncodeColumn(c+1), r+1, err)
			}
			g.set(r, c, cell.String())
		}
	}
	return g, nil
}

package grid

import (
	"fmt"
	"regexp"
	"strconv"
)

// DecodeColumn converts spreadsheet column letters into a 1-based column number.
// Letters form a bijective base 26 numeral, there is no zero digit.
func DecodeColumn(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("empty column")
	}
	value := 0
	for _, l := range letters {
		if l < 'A' || l > 'Z' {
			return 0, fmt.Errorf("invalid column letter %q in %q", l, letters)
		}
		value = value*26 + int(l-'A'+1)
	}
	return value, nil
}

// EncodeColumn is the inverse of DecodeColumn.
func EncodeColumn(n int) string {
	if n <= 0 {
		return ""
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

var addressRegex = regexp.MustCompile(`^([A-Z]+)([1-9][0-9]*)$`)

// ParseAddress converts a cell address like "B3" into 0-based row and column.
func ParseAddress(address string) (row int, col int, err error) {
	groups := addressRegex.FindStringSubmatch(address)
	if groups == nil {
		return 0, 0, fmt.Errorf("invalid cell address %q", address)
	}
	col, err = DecodeColumn(groups[1])
	if err != nil {
		return 0, 0, err
	}
	row, err = strconv.Atoi(groups[2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell address %q: %w", address, err)
	}
	return row - 1, col - 1, nil
}

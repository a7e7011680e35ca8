package sodexo

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestStationName(t *testing.T) {
	testCases := []struct {
		cell     string
		expected string
	}{
		{cell: `<td class="station">&nbsp;Grill</td>`, expected: "Grill"},
		{cell: `<td class="station">&nbsp;Waffle Bar</td>`, expected: "Waffle Bar"},
		{cell: `<td class="station">Deli</td>`, expected: "Deli"},
		{cell: `<td class="station"> Salad &nbsp; Bar </td>`, expected: "Salad Bar"},
		{cell: `<td class="station">&nbsp;</td>`, expected: ""},
		{cell: `<td class="station"></td>`, expected: ""},
		{cell: `<td class="station">&nbsp;Grill<span>closed</span></td>`, expected: "Grill"},
	}

	for _, tc := range testCases {
		t.Run(tc.cell, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(
				"<table><tr>" + tc.cell + "</tr></table>",
			))
			require.NoError(t, err)
			require.Equal(t, tc.expected, stationName(doc.Find(".station")))
		})
	}
}

package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimItemName(t *testing.T) {
	testCases := []struct {
		input  string
		expect string
	}{
		{"Burger", "Burger"},
		{"  Burger ", "Burger"},
		{"Burger&nbsp;", "Burger"},
		{"Burger\u00a0", "Burger"},
		{"Burger &nbsp;\u00a0 ", "Burger"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expect, TrimItemName(test.input), test.input)
	}
}

func TestSlug(t *testing.T) {
	require.Equal(t, "salad-bar", Slug(" Salad  Bar "))
	require.Equal(t, "breakfast", Slug("Breakfast"))
}

func TestCapitalize(t *testing.T) {
	require.Equal(t, "Breakfast", Capitalize("BREAKFAST"))
	require.Equal(t, "Lunch", Capitalize("lunch"))
	require.Equal(t, "", Capitalize(""))
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"Eggs", "Bacon", "Toast"}, SplitList(" Eggs, Bacon ,, Toast"))
	require.Nil(t, SplitList("  "))
}

package menu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func items(names ...string) []Item {
	out := make([]Item, len(names))
	for i, n := range names {
		out[i] = NewItem(n, "")
	}
	return out
}

func TestMergeStations(t *testing.T) {
	testCases := []struct {
		name     string
		input    []Station
		expected []Station
	}{
		{
			name: "case differs",
			input: []Station{
				{Name: "Grill", Items: items("Burger", "Fries")},
				{Name: "grill", Items: items("Hot Dog")},
			},
			expected: []Station{
				{Name: "Grill", Items: items("Burger", "Fries", "Hot Dog")},
			},
		},
		{
			name: "first seen casing and position",
			input: []Station{
				{Name: "grill", Items: items("A")},
				{Name: "Deli", Items: items("B")},
				{Name: "GRILL", Items: items("C")},
			},
			expected: []Station{
				{Name: "grill", Items: items("A", "C")},
				{Name: "Deli", Items: items("B")},
			},
		},
		{
			name:     "nothing to merge",
			input:    []Station{{Name: "Deli", Items: items("B")}},
			expected: []Station{{Name: "Deli", Items: items("B")}},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, MergeStations(test.input))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestPrune(t *testing.T) {
	input := Menu{
		HallName: "McConnell",
		HallID:   "pitzer",
		Meals: []Meal{
			{
				Name: "Breakfast",
				Stations: []Station{
					{Name: "Grill", Items: nil},
					{Name: "Bakery", Items: nil},
				},
			},
			{
				Name: "Lunch",
				Stations: []Station{
					{Name: "grill", Items: items("Burger")},
					{Name: "Salad", Items: nil},
					{Name: "salad", Items: items("Caesar")},
				},
			},
			{
				Name:     "Dinner",
				Stations: []Station{{Name: "Bakery", Items: nil}},
			},
		},
	}

	expected := Menu{
		HallName: "McConnell",
		HallID:   "pitzer",
		Meals: []Meal{
			{
				Name:     "Breakfast",
				Stations: []Station{{Name: "Grill", Items: nil}},
			},
			{
				Name: "Lunch",
				Stations: []Station{
					{Name: "grill", Items: items("Burger")},
					{Name: "Salad", Items: items("Caesar")},
				},
			},
		},
	}

	diff := cmp.Diff(expected, Prune(input))
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNewItemTags(t *testing.T) {
	a := NewItem("Tofu", "", "vegan", "vegetarian", "vegan")
	b := NewItem("Tofu", "", "vegetarian", "vegan")
	require.Equal(t, a, b)
	require.Equal(t, []string{"vegan", "vegetarian"}, a.Tags)
}

func TestStationText(t *testing.T) {
	s := Station{
		Name: "Grill",
		Items: []Item{
			NewItem("Burger", ""),
			NewItem("Melt", "cheddar<br />rye"),
		},
	}
	require.Equal(t, "Grill\n\nBurger\nMelt: \n\tcheddar\n\trye\n", s.Text())
}

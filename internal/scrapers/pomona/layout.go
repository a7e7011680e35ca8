package pomona

import (
	"sort"
	"strings"
	"time"

	"menufetcher/internal/grid"
	"menufetcher/internal/menu"
	"menufetcher/internal/schedule"
	"menufetcher/lib/textutil"
)

func stationItems(cell string) []menu.Item {
	names := textutil.SplitList(cell)
	items := make([]menu.Item, len(names))
	for i, name := range names {
		items[i] = menu.NewItem(name, "")
	}
	return items
}

func isClosed(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), "CLOSED")
}

// frank/frary sheets hold a block per weekday:
//
//	header row:  |          |          | Breakfast | Lunch  | Dinner |
//	day row:     | Monday   |          | <notes>   | ...    | ...    |
//	station row: |          | Grill    | Eggs, ... | ...    | ...    |
//	...until the station name is blank or column 0 reads "Day"
func parseFrankFrary(g grid.Grid, day time.Weekday, hours schedule.Hours) ([]menu.Meal, error) {
	dayRow := g.FindRow(0, day.String())
	if dayRow < 0 {
		return nil, menu.Malformedf("spreadsheet has no row for %s", day)
	}
	headerRow := dayRow - 1
	if headerRow < 0 {
		return nil, menu.Malformedf("spreadsheet has no meal header above %s", day)
	}

	var meals []menu.Meal
	for col := 2; col < g.Cols(); col++ {
		if !frankFraryMealExists(g, headerRow, col) {
			continue
		}
		meal, ok := frankFraryMeal(g, headerRow, col, hours)
		if !ok {
			continue
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

func frankFraryStationRows(g grid.Grid, headerRow int) []int {
	var rows []int
	for row := headerRow + 2; row < g.Rows(); row++ {
		if g.Cell(row, 1) == "" || g.Cell(row, 0) == "Day" {
			break
		}
		rows = append(rows, row)
	}
	return rows
}

func frankFraryMealExists(g grid.Grid, headerRow, col int) bool {
	if g.Cell(headerRow, col) == "" {
		return false
	}
	if isClosed(g.Cell(headerRow+1, col)) {
		return false
	}
	for _, row := range frankFraryStationRows(g, headerRow) {
		if g.Cell(row, col) != "" {
			return true
		}
	}
	return g.Cell(headerRow+1, col) != ""
}

func frankFraryMeal(g grid.Grid, headerRow, col int, hours schedule.Hours) (menu.Meal, bool) {
	name := menu.CorrectMealName(g.Cell(headerRow, col))
	timeRange, ok := hours[name]
	if !ok {
		return menu.Meal{}, false
	}

	description := g.Cell(headerRow+1, col)
	var stations []menu.Station
	for _, row := range frankFraryStationRows(g, headerRow) {
		if g.Cell(row, col) == "" {
			continue
		}
		stations = append(stations, menu.Station{
			Name:  g.Cell(row, 1),
			Items: stationItems(g.Cell(row, col)),
		})
	}
	if len(stations) == 0 && description != "" {
		// some weekend blocks only fill in the description row
		stations = append(stations, menu.Station{
			Name:  "Brunch",
			Items: stationItems(description),
		})
	}

	return menu.Meal{
		Name:        name,
		Description: description,
		Hours:       &timeRange,
		Stations:    stations,
	}, true
}

// oldenborg sheets hold one column per weekday (Monday is column 1), row 2 carries
// notes or CLOSED and stations start on row 3 with their name in column 0.
func parseOldenborg(g grid.Grid, day time.Weekday, hours schedule.Hours) ([]menu.Meal, error) {
	if day == time.Saturday || day == time.Sunday {
		return []menu.Meal{}, nil
	}
	col := int(day)
	if isClosed(g.Cell(2, col)) || g.Cell(3, col) == "" {
		return []menu.Meal{}, nil
	}

	name := oldenborgMealName(hours)
	timeRange := hours[name]

	var stations []menu.Station
	for row := 3; row < g.Rows() && g.Cell(row, col) != ""; row++ {
		stations = append(stations, menu.Station{
			Name:  g.Cell(row, 0),
			Items: stationItems(g.Cell(row, col)),
		})
	}

	return []menu.Meal{{
		Name:        name,
		Description: g.Cell(2, col),
		Hours:       &timeRange,
		Stations:    stations,
	}}, nil
}

// oldenborg serves a single meal, its name comes from the hours table. When more
// than one entry is published lunch wins, then the alphabetically first name.
func oldenborgMealName(hours schedule.Hours) string {
	if _, ok := hours["Lunch"]; ok || len(hours) == 0 {
		return "Lunch"
	}
	names := make([]string, 0, len(hours))
	for name := range hours {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0]
}

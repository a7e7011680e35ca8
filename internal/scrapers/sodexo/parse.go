package sodexo

import (
	"strings"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/menu"
	"menufetcher/lib/htmlutil"
	"menufetcher/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// mealClasses lists the row classes of a day in serving order.
var mealClasses = []string{"brk", "lun", "din"}

// parseDay reads the rows of a weekday's table, every row carries the class of its
// meal. The first row of a meal holds its name:
//
//	<tr class="lun"><td class="mealname">LUNCH</td></tr>
//	<tr class="lun"><td class="station">&nbsp;Grill</td><td>Burger <img class="icon" alt="vegan"></td></tr>
//	<tr class="lun"><td class="station">&nbsp;</td><td>Fries</td></tr>
//	<tr class="lun"><td class="station">&nbsp;Deli</td><td>Turkey Wrap</td></tr>
func parseDay(dayMenu *goquery.Selection, day time.Time) ([]menu.Meal, error) {
	meals := []menu.Meal{}
	for _, class := range mealClasses {
		rows := dayMenu.Find("." + class)
		if rows.Length() == 0 {
			continue
		}
		meal, err := parseMeal(rows, day)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

func parseMeal(rows *goquery.Selection, day time.Time) (menu.Meal, error) {
	header := rows.First().Find(".mealname").First()
	if header.Length() == 0 {
		return menu.Meal{}, menu.Malformedf("meal rows start without a meal name")
	}
	name := textutil.Capitalize(htmlutil.NormalizeSpace(htmlutil.SelectionOwnText(header)))
	if chrono.IsWeekend(day) {
		name = menu.WeekendMealName(name, day)
	}

	var stations []menu.Station
	current := -1
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		marker := row.Find(".station").First()
		if marker.Length() > 0 {
			if label := stationName(marker); label != "" {
				stations = append(stations, menu.Station{Name: label, Items: []menu.Item{}})
				current = len(stations) - 1
			}
		}
		if current < 0 {
			return
		}
		item, ok := parseItem(row)
		if ok {
			stations[current].Items = append(stations[current].Items, item)
		}
	})

	return menu.Meal{
		Name:     name,
		Stations: menu.MergeStations(stations),
	}, nil
}

// station cells are padded with a leading &nbsp;, which own text normalization
// already strips. An empty marker continues the previous station.
func stationName(marker *goquery.Selection) string {
	return htmlutil.SelectionOwnText(marker)
}

func parseItem(row *goquery.Selection) (menu.Item, bool) {
	row = row.Clone()
	row.Find(".station").Remove()

	name := htmlutil.NormalizeSpace(row.Text())
	if name == "" {
		return menu.Item{}, false
	}

	var tags []string
	row.Find(".icon").Each(func(_ int, icon *goquery.Selection) {
		alt, _ := icon.Attr("alt")
		if alt = strings.TrimSpace(alt); alt != "" {
			tags = append(tags, alt)
		}
	})
	return menu.NewItem(name, "", tags...), true
}

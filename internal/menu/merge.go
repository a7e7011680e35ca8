package menu

// AddStation appends station to stations, or merges it into an existing station of
// the same name. Merged stations keep the first seen name and position, items are
// concatenated in the order they were seen.
func AddStation(stations []Station, station Station) []Station {
	for i, existing := range stations {
		if !SameStation(existing.Name, station.Name) {
			continue
		}
		items := make([]Item, 0, len(existing.Items)+len(station.Items))
		items = append(items, existing.Items...)
		items = append(items, station.Items...)
		stations[i] = Station{Name: existing.Name, Items: items}
		return stations
	}
	return append(stations, station)
}

// MergeStations collapses same-named stations.
func MergeStations(stations []Station) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		out = AddStation(out, s)
	}
	return out
}

// Prune merges the stations of every meal, then drops stations without items unless
// another meal of the menu has a non-empty station of the same name. Meals left
// without stations are dropped.
func Prune(m Menu) Menu {
	merged := make([]Meal, len(m.Meals))
	for i, meal := range m.Meals {
		meal.Stations = MergeStations(meal.Stations)
		merged[i] = meal
	}

	populatedElsewhere := func(mealIdx int, name string) bool {
		for i, meal := range merged {
			if i == mealIdx {
				continue
			}
			s, ok := meal.Station(name)
			if ok && len(s.Items) > 0 {
				return true
			}
		}
		return false
	}

	meals := make([]Meal, 0, len(merged))
	for i, meal := range merged {
		stations := make([]Station, 0, len(meal.Stations))
		for _, s := range meal.Stations {
			if len(s.Items) == 0 && !populatedElsewhere(i, s.Name) {
				continue
			}
			stations = append(stations, s)
		}
		if len(stations) == 0 {
			continue
		}
		meal.Stations = stations
		meals = append(meals, meal)
	}

	m.Meals = meals
	return m
}

package menu

import (
	"strings"
	"time"
)

// MealCorrections fixes meal labels that are misspelled or mislabeled upstream.
var MealCorrections = map[string]string{
	"Brakfast":      "Breakfast",
	"Breakfast Bar": "Breakfast",
}

// HoursAliases lists hours entries that must also be stored under another meal
// name, weekend breakfast is published as continental breakfast.
var HoursAliases = map[string]string{
	"Continental Breakfast": "Breakfast",
}

// StationPrefixes collapses station names that carry a variant suffix.
var StationPrefixes = map[string]string{
	"Grill-": "Grill",
}

func CorrectMealName(name string) string {
	name = strings.TrimSpace(name)
	if corrected, ok := MealCorrections[name]; ok {
		return corrected
	}
	return name
}

func CorrectStationName(name string) string {
	for prefix, replacement := range StationPrefixes {
		if strings.HasPrefix(name, prefix) {
			return replacement
		}
	}
	return name
}

// WeekendMealName relabels lunch served on a weekend as brunch.
func WeekendMealName(name string, day time.Time) string {
	weekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
	if weekend && name == "Lunch" {
		return "Brunch"
	}
	return name
}

// Package highlight condenses a menu into the few items worth showing, following
// a per hall rule table.
package highlight

import (
	"fmt"
	"regexp"

	"menufetcher/internal/menu"
	"menufetcher/lib/configutil"
)

type stationRule struct {
	station string
	rule    Rule
}

type wildcard struct {
	pattern *regexp.Regexp
	rule    Rule
}

type mealRules struct {
	meal     string
	explicit []stationRule
	wildcard *wildcard
}

// Table is a compiled rule table.
type Table struct {
	halls map[string][]mealRules
}

// Load reads and compiles a rule table, see configutil.ReadConfig for the file
// lookup. Invalid rules fail the whole table.
func Load(path string) (*Table, error) {
	doc, err := configutil.ReadConfig[Document](path)
	if err != nil {
		return nil, fmt.Errorf("read highlights %s: %w", path, err)
	}
	return Compile(doc)
}

func Compile(doc Document) (*Table, error) {
	t := &Table{halls: map[string][]mealRules{}}
	for _, hall := range doc.Halls {
		for _, meal := range hall.Meals {
			compiled := mealRules{meal: meal.Meal}
			for _, sr := range meal.Stations {
				where := fmt.Sprintf("%s/%s/%q", hall.Hall, meal.Meal, sr.Station)
				if sr.Station == "" {
					w, err := compileWildcard(sr.Rule)
					if err != nil {
						return nil, fmt.Errorf("%s: %w", where, err)
					}
					compiled.wildcard = w
					continue
				}
				rule, err := CompileRule(sr.Rule)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", where, err)
				}
				compiled.explicit = append(compiled.explicit, stationRule{station: sr.Station, rule: rule})
			}
			t.halls[hall.Hall] = append(t.halls[hall.Hall], compiled)
		}
	}
	return t, nil
}

// the wildcard takes any rule. An object rule may also carry a "pattern" that
// narrows the stations it applies to, matched against the whole station name
// ignoring case; without one every unlisted station matches.
func compileWildcard(value any) (*wildcard, error) {
	pattern := ".*"
	if obj, ok := value.(map[string]any); ok {
		if p, ok := obj["pattern"]; ok {
			s, ok := p.(string)
			if !ok {
				return nil, invalid("wildcard pattern must be a string")
			}
			pattern = s

			rest := make(map[string]any, len(obj))
			for k, v := range obj {
				if k != "pattern" {
					rest[k] = v
				}
			}
			value = rest
		}
	}
	re, err := regexp.Compile("(?i)^(?:" + pattern + ")$")
	if err != nil {
		return nil, invalid("wildcard pattern: %s", err)
	}
	rule, err := CompileRule(value)
	if err != nil {
		return nil, err
	}
	return &wildcard{pattern: re, rule: rule}, nil
}

func (t *Table) HasHall(hallId string) bool {
	_, ok := t.halls[hallId]
	return ok
}

func (t *Table) mealRules(hallId, meal string) (mealRules, bool) {
	for _, mr := range t.halls[hallId] {
		if mr.meal == meal {
			return mr, true
		}
	}
	return mealRules{}, false
}

// Highlight returns a condensed copy of every meal of m that has rules. Stations
// with an explicit rule come first in rule order, then the stations matched by the
// wildcard in menu order.
func (t *Table) Highlight(m menu.Menu) []menu.Meal {
	meals := []menu.Meal{}
	for _, meal := range m.Meals {
		rules, ok := t.mealRules(m.HallID, meal.Name)
		if !ok {
			continue
		}
		meals = append(meals, rules.apply(meal))
	}
	return meals
}

func (r mealRules) apply(meal menu.Meal) menu.Meal {
	stations := []menu.Station{}
	for _, sr := range r.explicit {
		s, ok := meal.Station(sr.station)
		if !ok {
			continue
		}
		if out, ok := sr.rule.Apply(s); ok {
			stations = append(stations, out)
		}
	}

	if r.wildcard != nil {
		for _, s := range meal.Stations {
			if r.listed(s.Name) || !r.wildcard.pattern.MatchString(s.Name) {
				continue
			}
			if out, ok := r.wildcard.rule.Apply(s); ok {
				stations = append(stations, out)
			}
		}
	}

	return menu.Meal{
		Name:        meal.Name,
		Description: meal.Description,
		Hours:       meal.Hours,
		Stations:    stations,
	}
}

func (r mealRules) listed(station string) bool {
	for _, sr := range r.explicit {
		if menu.SameStation(sr.station, station) {
			return true
		}
	}
	return false
}

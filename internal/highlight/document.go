package highlight

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Document is a rule table as written in configuration, keyed hall id -> meal
// name -> station name -> rule. Keys keep the order they are written in:
//
//	frank:
//	  Lunch:
//	    Grill: 3
//	    Salad Bar: single
//	    "": {pattern: "soup.*", number: all}
type Document struct {
	Halls []HallRules
}

type HallRules struct {
	Hall  string
	Meals []MealRules
}

type MealRules struct {
	Meal     string
	Stations []StationRule
}

// StationRule holds the raw rule of a station, an empty Station is the wildcard.
type StationRule struct {
	Station string
	Rule    any
}

func mappingPairs(node *yaml.Node, what string) ([][2]*yaml.Node, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %s must be a mapping", node.Line, what)
	}
	pairs := make([][2]*yaml.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		pairs = append(pairs, [2]*yaml.Node{node.Content[i], node.Content[i+1]})
	}
	return pairs, nil
}

func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	halls, err := mappingPairs(node, "rule table")
	if err != nil {
		return err
	}
	d.Halls = make([]HallRules, 0, len(halls))
	for _, hall := range halls {
		meals, err := mappingPairs(hall[1], fmt.Sprintf("hall %q", hall[0].Value))
		if err != nil {
			return err
		}
		hr := HallRules{Hall: hall[0].Value}
		for _, meal := range meals {
			stations, err := mappingPairs(meal[1], fmt.Sprintf("meal %q", meal[0].Value))
			if err != nil {
				return err
			}
			mr := MealRules{Meal: meal[0].Value}
			for _, station := range stations {
				var rule any
				err := station[1].Decode(&rule)
				if err != nil {
					return fmt.Errorf("line %d: %w", station[1].Line, err)
				}
				mr.Stations = append(mr.Stations, StationRule{Station: station[0].Value, Rule: rule})
			}
			hr.Meals = append(hr.Meals, mr)
		}
		d.Halls = append(d.Halls, hr)
	}
	return nil
}

// MergeLocal applies a local rule file over d. Halls merge meal by meal, a meal
// present in the override replaces the base meal's stations entirely since their
// order is significant. Unknown halls and meals are appended.
func (d *Document) MergeLocal(override any) error {
	local, ok := override.(Document)
	if !ok {
		return fmt.Errorf("cannot merge %T into a highlight document", override)
	}
	for _, lh := range local.Halls {
		hi := slices.IndexFunc(d.Halls, func(h HallRules) bool { return h.Hall == lh.Hall })
		if hi < 0 {
			d.Halls = append(d.Halls, lh)
			continue
		}
		hall := &d.Halls[hi]
		for _, lm := range lh.Meals {
			mi := slices.IndexFunc(hall.Meals, func(m MealRules) bool { return m.Meal == lm.Meal })
			if mi < 0 {
				hall.Meals = append(hall.Meals, lm)
				continue
			}
			hall.Meals[mi] = lm
		}
	}
	return nil
}

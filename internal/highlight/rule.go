package highlight

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"menufetcher/internal/menu"
)

var ErrInvalidRule = errors.New("invalid highlight rule")

// Rule condenses a station. A false result leaves the station out.
type Rule interface {
	Apply(s menu.Station) (menu.Station, bool)
}

// Count keeps the first N items when positive, the last |N| items when negative.
type Count int

func (c Count) Apply(s menu.Station) (menu.Station, bool) {
	n := int(c)
	var items []menu.Item
	if n > 0 {
		items = s.Items[:min(n, len(s.Items))]
	} else {
		items = s.Items[max(len(s.Items)+n, 0):]
	}
	return menu.Station{Name: s.Name, Items: append([]menu.Item{}, items...)}, true
}

// All keeps the station as is.
type All struct{}

func (All) Apply(s menu.Station) (menu.Station, bool) {
	return s, true
}

// Single joins every item name into one item, ex. "Rice, Beans, Tortillas".
type Single struct{}

func (Single) Apply(s menu.Station) (menu.Station, bool) {
	if len(s.Items) == 0 {
		return menu.Station{Name: s.Name, Items: []menu.Item{}}, true
	}
	names := make([]string, len(s.Items))
	for i, item := range s.Items {
		names[i] = strings.TrimSpace(item.Name)
	}
	return menu.Station{
		Name:  s.Name,
		Items: []menu.Item{menu.NewItem(strings.Join(names, ", "), "")},
	}, true
}

// IncludeIf applies Rule only when the station text contains (or with Negate,
// does not contain) Text.
type IncludeIf struct {
	Text   string
	Negate bool
	Rule   Rule
}

func (r IncludeIf) Apply(s menu.Station) (menu.Station, bool) {
	if strings.Contains(s.Text(), r.Text) == r.Negate {
		return menu.Station{}, false
	}
	return r.Rule.Apply(s)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRule, fmt.Sprintf(format, args...))
}

// CompileRule turns a decoded configuration value into a Rule.
func CompileRule(value any) (Rule, error) {
	switch v := value.(type) {
	case int:
		return compileCount(int64(v))
	case int64:
		return compileCount(v)
	case uint64:
		if v > math.MaxInt32 {
			return nil, invalid("count %d out of range", v)
		}
		return compileCount(int64(v))
	case float64:
		if v != math.Trunc(v) {
			return nil, invalid("count %v is not an integer", v)
		}
		return compileCount(int64(v))
	case string:
		switch v {
		case "all":
			return All{}, nil
		case "single":
			return Single{}, nil
		}
		return nil, invalid("unknown rule %q", v)
	case map[string]any:
		return compileObject(v)
	}
	return nil, invalid("unsupported rule %v (%T)", value, value)
}

func compileCount(n int64) (Rule, error) {
	if n == 0 {
		return nil, invalid("count must not be 0")
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return nil, invalid("count %d out of range", n)
	}
	return Count(n), nil
}

func compileObject(v map[string]any) (Rule, error) {
	for key := range v {
		if key != "include-if" && key != "number" {
			return nil, invalid("unknown key %q", key)
		}
	}
	number, ok := v["number"]
	if !ok {
		return nil, invalid("missing number")
	}
	inner, err := CompileRule(number)
	if err != nil {
		return nil, err
	}

	cond, ok := v["include-if"]
	if !ok {
		return inner, nil
	}
	condMap, ok := cond.(map[string]any)
	if !ok || len(condMap) != 1 {
		return nil, invalid("include-if must hold exactly one condition")
	}
	for key, text := range condMap {
		s, ok := text.(string)
		if !ok {
			return nil, invalid("include-if %s must be a string", key)
		}
		switch key {
		case "contains":
			return IncludeIf{Text: s, Rule: inner}, nil
		case "not-contains":
			return IncludeIf{Text: s, Negate: true, Rule: inner}, nil
		}
		return nil, invalid("unknown condition %q", key)
	}
	return nil, invalid("empty include-if")
}

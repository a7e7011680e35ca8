// Package menu holds the canonical representation every source is normalized into.
// Values are built once per fetch and are not mutated afterwards.
package menu

import (
	"fmt"
	"sort"
	"strings"
)

// TimeOfDay is a wall clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	_, err := fmt.Sscanf(string(text), "%d:%d", &t.Hour, &t.Minute)
	if err != nil {
		return fmt.Errorf("time of day %q: %w", text, err)
	}
	return nil
}

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// TimeRange is the serving window of a meal. Start is not required to precede End.
type TimeRange struct {
	Start TimeOfDay `json:"startTime"`
	End   TimeOfDay `json:"endTime"`
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s - %s", r.Start, r.End)
}

// Contains reports whether t lies within [Start, End].
func (r TimeRange) Contains(t TimeOfDay) bool {
	return !t.Before(r.Start) && !r.End.Before(t)
}

type Item struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// NewItem builds an item, tags are treated as a set.
func NewItem(name, description string, tags ...string) Item {
	return Item{
		Name:        name,
		Description: description,
		Tags:        normalizeTags(tags),
	}
}

func normalizeTags(tags []string) []string {
	set := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := set[t]; ok {
			continue
		}
		set[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (i Item) String() string {
	if i.Description == "" {
		return i.Name
	}
	return i.Name + ": \n\t" + strings.ReplaceAll(i.Description, "<br />", "\n\t")
}

type Station struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Text renders the station name followed by every item, it is what
// textual highlight conditions are matched against.
func (s Station) Text() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	sb.WriteString("\n\n")
	for _, item := range s.Items {
		sb.WriteString(item.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// SameStation reports whether two station names refer to the same station.
func SameStation(a, b string) bool {
	return strings.EqualFold(a, b)
}

type Meal struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Hours       *TimeRange `json:"hours,omitempty"`
	Stations    []Station  `json:"stations"`
}

// Station returns the first station whose name matches case-insensitively.
func (m Meal) Station(name string) (Station, bool) {
	for _, s := range m.Stations {
		if SameStation(s.Name, name) {
			return s, true
		}
	}
	return Station{}, false
}

type Menu struct {
	HallName  string `json:"name"`
	HallID    string `json:"id"`
	PublicURL string `json:"url"`
	Meals     []Meal `json:"meals"`
}

// Empty returns a menu without any meals for the given hall.
func Empty(hallName, hallId, publicUrl string) Menu {
	return Menu{
		HallName:  hallName,
		HallID:    hallId,
		PublicURL: publicUrl,
		Meals:     []Meal{},
	}
}

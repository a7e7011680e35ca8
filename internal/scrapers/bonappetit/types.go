package bonappetit

import (
	"encoding/json"
	"sort"
)

type menuResponse struct {
	Days  []menuDay       `json:"days"`
	Items map[string]item `json:"items"`
}

type menuDay struct {
	Date  string                  `json:"date"`
	Cafes map[string]cafeDayparts `json:"cafes"`
}

type cafeDayparts struct {
	Name string `json:"name"`
	// the first element holds the meals of the day, the api never fills more than one
	Dayparts [][]daypart `json:"dayparts"`
}

type daypart struct {
	Label     string    `json:"label"`
	Starttime string    `json:"starttime"`
	Endtime   string    `json:"endtime"`
	Stations  []station `json:"stations"`
}

type station struct {
	Label string   `json:"label"`
	Items []string `json:"items"`
}

type item struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	// cor_icon is an object of icon id -> tag when the item has tags and an empty
	// array otherwise
	CorIcon json.RawMessage `json:"cor_icon"`
}

func (i item) tags() []string {
	var icons map[string]string
	if len(i.CorIcon) == 0 || json.Unmarshal(i.CorIcon, &icons) != nil {
		return nil
	}
	tags := make([]string, 0, len(icons))
	for _, tag := range icons {
		tags = append(tags, tag)
	}
	return tags
}

// sortedItemIds makes name resolution deterministic when two items share a label.
func sortedItemIds(items map[string]item) []string {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

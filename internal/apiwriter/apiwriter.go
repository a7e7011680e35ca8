// Package apiwriter writes menus as a static json api:
//
//	api/v1/<date>/dining-halls                       every hall
//	api/v1/<date>/all                                every hall with everything below it
//	api/v1/<date>/<hall>/meals, all
//	api/v1/<date>/<hall>/<meal>/stations, all
//	api/v1/<date>/<hall>/<meal>/<station>/items, all
//
// Meal and station ids are their names lowercased with whitespace runs replaced
// by dashes.
package apiwriter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"menufetcher/internal/menu"
	"menufetcher/lib/textutil"
)

type hallNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type hallAllNode struct {
	hallNode
	Meals []mealAllNode `json:"meals"`
}

type mealNode struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartTime   *menu.TimeOfDay `json:"startTime,omitempty"`
	EndTime     *menu.TimeOfDay `json:"endTime,omitempty"`
}

type mealAllNode struct {
	mealNode
	Stations []stationAllNode `json:"stations"`
}

type stationNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type stationAllNode struct {
	stationNode
	Items []menu.Item `json:"items"`
}

// ID turns a display name into a path segment.
func ID(name string) string {
	id := textutil.Slug(name)
	id = strings.ReplaceAll(id, "/", "-")
	id = strings.ReplaceAll(id, "\\", "-")
	if id == "" || id == "." || id == ".." {
		return "-"
	}
	return id
}

type Writer struct {
	root string
}

// New writes under <root>/api/v1.
func New(root string) Writer {
	return Writer{root: filepath.Join(root, "api", "v1")}
}

func writeJson(dir, node string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	err = os.WriteFile(filepath.Join(dir, node), data, 0644)
	if err != nil {
		return fmt.Errorf("write %s: %w", node, err)
	}
	return nil
}

// Write replaces the nodes of day with menus.
func (w Writer) Write(day time.Time, menus []menu.Menu) error {
	dayDir := filepath.Join(w.root, day.Format(time.DateOnly))
	err := os.MkdirAll(dayDir, 0755)
	if err != nil {
		return err
	}

	halls := make([]hallNode, 0, len(menus))
	all := make([]hallAllNode, 0, len(menus))
	for _, m := range menus {
		node := hallNode{ID: m.HallID, Name: m.HallName, URL: m.PublicURL}
		meals, err := w.writeMeals(filepath.Join(dayDir, ID(m.HallID)), m.Meals)
		if err != nil {
			return fmt.Errorf("%s: %w", m.HallID, err)
		}
		halls = append(halls, node)
		all = append(all, hallAllNode{hallNode: node, Meals: meals})
	}

	err = writeJson(dayDir, "dining-halls", halls)
	if err != nil {
		return err
	}
	return writeJson(dayDir, "all", all)
}

func (w Writer) writeMeals(hallDir string, meals []menu.Meal) ([]mealAllNode, error) {
	err := os.MkdirAll(hallDir, 0755)
	if err != nil {
		return nil, err
	}

	nodes := make([]mealNode, 0, len(meals))
	all := make([]mealAllNode, 0, len(meals))
	for _, meal := range meals {
		node := mealNode{
			ID:          ID(meal.Name),
			Name:        meal.Name,
			Description: meal.Description,
		}
		if meal.Hours != nil {
			node.StartTime = &meal.Hours.Start
			node.EndTime = &meal.Hours.End
		}
		stations, err := w.writeStations(filepath.Join(hallDir, node.ID), meal.Stations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", meal.Name, err)
		}
		nodes = append(nodes, node)
		all = append(all, mealAllNode{mealNode: node, Stations: stations})
	}

	err = writeJson(hallDir, "meals", nodes)
	if err != nil {
		return nil, err
	}
	return all, writeJson(hallDir, "all", all)
}

func (w Writer) writeStations(mealDir string, stations []menu.Station) ([]stationAllNode, error) {
	err := os.MkdirAll(mealDir, 0755)
	if err != nil {
		return nil, err
	}

	nodes := make([]stationNode, 0, len(stations))
	all := make([]stationAllNode, 0, len(stations))
	for _, s := range stations {
		node := stationNode{ID: ID(s.Name), Name: s.Name}
		items := s.Items
		if items == nil {
			items = []menu.Item{}
		}

		stationDir := filepath.Join(mealDir, node.ID)
		err := os.MkdirAll(stationDir, 0755)
		if err != nil {
			return nil, err
		}
		err = writeJson(stationDir, "items", items)
		if err != nil {
			return nil, err
		}
		err = writeJson(stationDir, "all", items)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, node)
		all = append(all, stationAllNode{stationNode: node, Items: items})
	}

	err = writeJson(mealDir, "stations", nodes)
	if err != nil {
		return nil, err
	}
	return all, writeJson(mealDir, "all", all)
}

package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"menufetcher/internal/batch"
	"menufetcher/internal/menu"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func hours(meal menu.Meal) string {
	if meal.Hours == nil {
		return ""
	}
	return meal.Hours.String()
}

func itemNames(items []menu.Item) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return strings.Join(names, "\n")
}

// renderMeals prints one row per station with the meal columns merged.
func renderMeals(out io.Writer, title string, meals []menu.Meal) {
	t := newTable(out)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Meal", "Hours", "Station", "Items"})
	for _, meal := range meals {
		if len(meal.Stations) == 0 {
			t.AppendRow(table.Row{meal.Name, hours(meal), "", ""})
		}
		for _, s := range meal.Stations {
			t.AppendRow(table.Row{meal.Name, hours(meal), s.Name, itemNames(s.Items)})
		}
		t.AppendSeparator()
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 2, AutoMerge: true},
	})
	if len(meals) == 0 {
		t.AppendRow(table.Row{"closed", "", "", ""})
	}
	t.Render()
}

func renderFailures(out io.Writer, days []batch.Day) {
	t := newTable(out)
	t.SetTitle("Unavailable")
	t.AppendHeader(table.Row{"Date", "Hall", "Error"})
	n := 0
	for _, d := range days {
		for _, f := range d.Failures {
			t.AppendRow(table.Row{d.Date.Format(time.DateOnly), f.HallName, f.Err.Error()})
			n++
		}
	}
	if n == 0 {
		return
	}
	t.Render()
}

func menuTitle(m menu.Menu, day time.Time) string {
	return fmt.Sprintf("%s, %s", m.HallName, day.Format("Monday January 2, 2006"))
}

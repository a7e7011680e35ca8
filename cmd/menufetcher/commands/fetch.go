package commands

import (
	"encoding/json"
	"io"
	"time"

	"menufetcher/internal/batch"
	"menufetcher/internal/menu"

	"github.com/spf13/cobra"
)

type jsonFailure struct {
	Hall  string `json:"hall"`
	Error string `json:"error"`
}

type jsonDay struct {
	Date     string        `json:"date"`
	Menus    []menu.Menu   `json:"menus"`
	Failures []jsonFailure `json:"failures"`
}

func writeJsonDays(out io.Writer, days []batch.Day) error {
	doc := make([]jsonDay, len(days))
	for i, d := range days {
		doc[i] = jsonDay{Date: d.Date.Format(time.DateOnly), Menus: d.Menus, Failures: []jsonFailure{}}
		for _, f := range d.Failures {
			doc[i].Failures = append(doc[i].Failures, jsonFailure{Hall: f.HallID, Error: f.Err.Error()})
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

var fetchDates dateFlags
var fetchJson bool

func init() {
	addDateFlags(fetchCmd, &fetchDates)
	fetchCmd.Flags().BoolVar(&fetchJson, "json", false, "Print the menus as json instead of tables.")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [--date <YYYY-MM-DD,...> | --from <YYYY-MM-DD> [--to <YYYY-MM-DD> | --days <n>]]",
	Short: "Fetches menus and prints them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		result, err := e.run(cmd.Context(), fetchDates)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if fetchJson {
			return writeJsonDays(out, result.Days)
		}
		for _, day := range result.Days {
			for _, m := range day.Menus {
				renderMeals(out, menuTitle(m, day.Date), m.Meals)
			}
		}
		renderFailures(out, result.Days)
		return nil
	},
}

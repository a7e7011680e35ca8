package commands

import (
	"fmt"
	"path/filepath"

	"menufetcher/internal/highlight"
	"menufetcher/internal/menu"

	"github.com/spf13/cobra"
)

var highlightDates dateFlags
var highlightFile string

func init() {
	addDateFlags(highlightsCmd, &highlightDates)
	highlightsCmd.Flags().StringVar(&highlightFile, "rules", "", "The highlight rule table, defaults to <config-dir>/highlights.yaml.")
	rootCmd.AddCommand(highlightsCmd)
}

var highlightsCmd = &cobra.Command{
	Use:   "highlights [--rules <file>] [date flags]",
	Short: "Fetches menus and prints only the highlighted items of halls that have rules.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := highlightFile
		if path == "" {
			path = filepath.Join(configDir, "highlights.yaml")
		}
		rules, err := highlight.Load(path)
		if err != nil {
			return err
		}

		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		var withRules []menu.Source
		for _, src := range e.sources {
			if rules.HasHall(src.ID()) {
				withRules = append(withRules, src)
			}
		}
		if len(withRules) == 0 {
			return fmt.Errorf("no selected hall has highlight rules in %s", path)
		}
		e.sources = withRules

		result, err := e.run(cmd.Context(), highlightDates)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, day := range result.Days {
			for _, m := range day.Menus {
				renderMeals(out, menuTitle(m, day.Date), rules.Highlight(m))
			}
		}
		renderFailures(out, result.Days)
		return nil
	},
}

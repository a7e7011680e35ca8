package commands

import (
	"log/slog"
	"time"

	"menufetcher/internal/apiwriter"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var apiDates dateFlags
var apiBaseDir string

func init() {
	addDateFlags(apiCmd, &apiDates)
	apiCmd.Flags().StringVarP(&apiBaseDir, "basedir", "f", ".", "The directory the api folder is written to.")
	rootCmd.AddCommand(apiCmd)
}

var apiCmd = &cobra.Command{
	Use:   "api [--basedir <dir>] [date flags]",
	Short: "Fetches menus and writes them as a static json api under <basedir>/api/v1.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		result, err := e.run(cmd.Context(), apiDates)
		if err != nil {
			return err
		}

		writer := apiwriter.New(apiBaseDir)
		t := newTable(cmd.OutOrStdout())
		t.SetTitle("Written")
		t.AppendHeader(table.Row{"Date", "Halls", "Unavailable"})
		for _, day := range result.Days {
			err := writer.Write(day.Date, day.Menus)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{day.Date.Format(time.DateOnly), len(day.Menus), len(day.Failures)})
		}
		t.Render()
		slog.Info("api written", "basedir", apiBaseDir, "run_id", result.RunID)
		return nil
	},
}

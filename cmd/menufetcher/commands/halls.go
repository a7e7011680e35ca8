package commands

import (
	"menufetcher/internal/halls"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(hallsCmd)
}

func hallSource(h halls.Hall) string {
	switch h.Kind {
	case halls.KindPomona:
		layout := h.Layout
		if layout == "" {
			layout = "frankFrary"
		}
		return h.Sitename + " (" + layout + ")"
	case halls.KindBonAppetit:
		return h.UrlPrefix + "/" + h.UrlCafe
	case halls.KindSodexo:
		return h.Sitename
	case halls.KindSmg:
		return h.Sitename + " " + h.SmgName
	case halls.KindBiteMenu:
		return h.Sitename + " " + h.HallSlug
	}
	return ""
}

var hallsCmd = &cobra.Command{
	Use:   "halls",
	Short: "Lists the configured halls.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := halls.LoadConfig(hallsConfigPath())
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Name", "Kind", "Source", "Enabled"})
		for _, h := range cfg.Halls {
			t.AppendRow(table.Row{h.ID, h.Name, h.Kind, hallSource(h), !h.Disabled})
		}
		t.Render()
		return nil
	},
}

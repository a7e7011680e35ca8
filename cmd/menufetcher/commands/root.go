package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "menufetcher",
	Short: "menufetcher fetches the menus of the Claremont dining halls.",
	Long: `menufetcher fetches the menus of the Claremont dining halls and prints them,
condenses them into highlights or writes them as a static json api.

Halls are configured in <config-dir>/halls.json5 (the built in halls are used when
it is missing), highlight rules in <config-dir>/highlights.yaml.`,
	SilenceUsage: true,
}

var (
	configDir   string
	hallIds     []string
	dumpDir     string
	parallelism int
)

func init() {
	defaultConfigDir := os.Getenv("MENUFETCHER_CONFIG_DIR")
	if defaultConfigDir == "" {
		defaultConfigDir = "."
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", defaultConfigDir, "Directory holding halls.json5 and highlights.yaml, defaults to $MENUFETCHER_CONFIG_DIR.")
	flags.StringSliceVar(&hallIds, "halls", nil, "Only fetch the halls with these ids.")
	flags.StringVar(&dumpDir, "dump", "", "Write every http exchange to this directory.")
	flags.IntVar(&parallelism, "parallel", 4, "How many halls are fetched at once.")
}

// ExecuteContext runs the command line and returns the exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

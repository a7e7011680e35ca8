package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHallsCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "halls.json5"), []byte(`{
		halls: [
			{kind: "sodexo", id: "scripps", name: "Malott", sitename: "scrippsdining", tcm_id: 1567},
			{kind: "bitemenu", id: "hoch", name: "The Hoch", sitename: "hmc", menu_id: 344, location_id: 13147001, hall_slug: "hoch-100", disabled: true},
		],
	}`), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"halls", "--config-dir", dir})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configDir = "."
	})

	require.Equal(t, 0, ExecuteContext(context.Background()))
	text := out.String()
	require.Contains(t, text, "Malott")
	require.Contains(t, text, "scrippsdining")
	require.Contains(t, text, "hmc hoch-100")
	require.Contains(t, text, "false")
	require.NotContains(t, text, "Frank")
}

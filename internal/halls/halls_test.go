package halls

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/fetch/fetchtest"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func ids(t *testing.T, set *Set) []string {
	t.Helper()
	out := make([]string, len(set.Sources))
	for i, s := range set.Sources {
		out[i] = s.ID()
	}
	return out
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "halls.json5"))
	require.NoError(t, err)
	require.Equal(t, DefaultHalls(), cfg.Halls)
	require.False(t, cfg.Browser.Enabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "halls.json5"), `{
		// the hoch through bitemenu instead of smg
		halls: [
			{kind: "bitemenu", id: "hoch", name: "The Hoch", sitename: "hmc", menu_id: 344, location_id: 13147001, hall_slug: "hoch-100"},
			{kind: "pomona", id: "frank", name: "Frank", sitename: "frank", disabled: true},
		],
		fetch: {timeout_seconds: 2.5, requests_per_second: 1},
	}`)
	writeFile(t, filepath.Join(dir, "halls.local.json5"), `{fetch: {requests_per_second: 4}}`)

	cfg, err := LoadConfig(filepath.Join(dir, "halls.json5"))
	require.NoError(t, err)
	require.Len(t, cfg.Halls, 2)
	require.Equal(t, KindBiteMenu, cfg.Halls[0].Kind)
	require.Equal(t, 13147001, cfg.Halls[0].LocationID)

	opts := cfg.Fetch.Options()
	require.Equal(t, 2500*time.Millisecond, opts.Timeout)
	require.Equal(t, 4.0, opts.RequestsPerSecond)
}

func TestLoadConfigLocalHalls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "halls.json5"), `{
		halls: [
			{kind: "pomona", id: "frank", name: "Frank", sitename: "frank"},
			{kind: "bonappetit", id: "collins", name: "Collins", cafe_id: 50, url_prefix: "collins-cmc", url_cafe: "collins"},
		],
		browser: {enabled: true, control_url: "ws://127.0.0.1:9222"},
	}`)
	writeFile(t, filepath.Join(dir, "halls.local.json5"), `{
		halls: [
			{id: "collins", disabled: true, cafe_id: 51},
			{kind: "sodexo", id: "scripps", name: "Malott", sitename: "scrippsdining", tcm_id: 1567},
		],
		browser: {show_window: true},
	}`)

	cfg, err := LoadConfig(filepath.Join(dir, "halls.json5"))
	require.NoError(t, err)

	expected := []Hall{
		{Kind: KindPomona, ID: "frank", Name: "Frank", Sitename: "frank"},
		{Kind: KindBonAppetit, ID: "collins", Name: "Collins", Disabled: true, CafeID: 51, UrlPrefix: "collins-cmc", UrlCafe: "collins"},
		{Kind: KindSodexo, ID: "scripps", Name: "Malott", Sitename: "scrippsdining", TcmID: 1567},
	}
	require.Equal(t, expected, cfg.Halls)
	require.Equal(t, BrowserConfig{Enabled: true, ControlURL: "ws://127.0.0.1:9222", ShowWindow: true}, cfg.Browser)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name  string
		halls []Hall
		err   string
	}{
		{name: "defaults", halls: DefaultHalls()},
		{
			name:  "duplicate",
			halls: []Hall{DefaultHalls()[0], DefaultHalls()[0]},
			err:   "hall frank: duplicate id",
		},
		{
			name:  "unknown kind",
			halls: []Hall{{Kind: "dininghall", ID: "x"}},
			err:   `unknown kind "dininghall"`,
		},
		{
			name:  "missing fields",
			halls: []Hall{{Kind: KindBonAppetit, ID: "collins", UrlCafe: "collins"}},
			err:   "bonappetit hall is missing [cafe_id url_prefix]",
		},
		{
			name:  "bad layout",
			halls: []Hall{{Kind: KindPomona, ID: "frank", Sitename: "frank", Layout: "grid"}},
			err:   `unknown layout "grid"`,
		},
		{
			name:  "missing id",
			halls: []Hall{{Kind: KindSodexo, Sitename: "scrippsdining", TcmID: 1567}},
			err:   "hall 0: missing id",
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			err := Config{Halls: test.halls}.Validate()
			if test.err == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, test.err)
		})
	}
}

func TestBuild(t *testing.T) {
	clock := chrono.NewFixedImpl(time.Date(2024, time.August, 28, 9, 0, 0, 0, time.UTC))
	tel := &telemetry.RecordingAPI{}

	halls := DefaultHalls()
	halls[1].Disabled = true
	set, err := Build(context.Background(), Config{Halls: halls}, clock, tel, BuildOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, set.Close()) })

	require.Equal(t, []string{"frank", "oldenborg", "collins", "pitzer", "hoch", "scripps"}, ids(t, set))
	require.Equal(t, KindSmg, set.Kinds["hoch"])
	require.Len(t, tel.Find("debug", "halls.disabled"), 1)

	selected, err := set.Select([]string{"scripps", "frank"})
	require.NoError(t, err)
	require.Equal(t, "scripps", selected[0].ID())
	require.Equal(t, "Frank", selected[1].Name())

	_, err = set.Select([]string{"frary"})
	require.ErrorContains(t, err, `unknown hall "frary"`)

	all, err := set.Select(nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
}

func TestBuildRoutesThroughTransport(t *testing.T) {
	srv := fetchtest.NewServer(t, map[string]string{
		"menus.sodexomyway.com/BiteMenu/MenuOnly?menuId=288&locationId=10638001&startdate=08/28/2024": `<div id="nutData">[
			{"date": "2024-08-28T00:00:00", "dayParts": [{"dayPartName": "Lunch", "courses": [
				{"courseName": "Grill", "menuItems": [
					{"formalName": "Burger", "description": "", "startTime": "2024-08-28T11:00:00", "endTime": "2024-08-28T13:00:00"}
				]}
			]}]}
		]</div>`,
	})
	cfg := Config{
		Halls: []Hall{{
			Kind:       KindBiteMenu,
			ID:         "scripps",
			Name:       "Malott",
			Sitename:   "scrippsdining",
			MenuID:     288,
			LocationID: 10638001,
			HallSlug:   "mallot",
		}},
		Fetch: FetchConfig{RequestsPerSecond: 1000},
	}
	clock := chrono.NewFixedImpl(time.Date(2024, time.August, 28, 9, 0, 0, 0, time.UTC))
	set, err := Build(context.Background(), cfg, clock, &telemetry.RecordingAPI{}, BuildOptions{Transport: srv.Transport()})
	require.NoError(t, err)

	m, err := set.Sources[0].GetMenu(context.Background(), time.Date(2024, time.August, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "Burger", m.Meals[0].Stations[0].Items[0].Name)
	require.Equal(t, 1, srv.TotalHits())
}

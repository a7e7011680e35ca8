// Package halls builds the list of menu sources from configuration. The order of
// the configured halls is the order menus are reported and written in.
package halls

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"menufetcher/internal/fetch"
	"menufetcher/lib/configutil"

	"dario.cat/mergo"
)

type Kind string

const (
	KindPomona     Kind = "pomona"
	KindBonAppetit Kind = "bonappetit"
	KindSodexo     Kind = "sodexo"
	KindSmg        Kind = "smg"
	KindBiteMenu   Kind = "bitemenu"
)

// Hall configures one source, only the fields of its kind are read.
type Hall struct {
	Kind     Kind   `json:"kind"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`

	// pomona, sodexo, smg and bitemenu
	Sitename string `json:"sitename"`
	// pomona, "frankFrary" or "oldenborg"
	Layout string `json:"layout"`

	// bonappetit
	CafeID    int    `json:"cafe_id"`
	UrlPrefix string `json:"url_prefix"`
	UrlCafe   string `json:"url_cafe"`

	// sodexo
	TcmID int `json:"tcm_id"`

	// smg
	SmgName string `json:"smg_name"`

	// bitemenu
	MenuID     int    `json:"menu_id"`
	LocationID int    `json:"location_id"`
	HallSlug   string `json:"hall_slug"`
}

type FetchConfig struct {
	TimeoutSeconds    float64 `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	UserAgent         string  `json:"user_agent"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

func (c FetchConfig) Options() fetch.Options {
	return fetch.Options{
		Timeout:           time.Duration(c.TimeoutSeconds * float64(time.Second)),
		UserAgent:         c.UserAgent,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
	}
}

// BrowserConfig switches smg halls to evaluating their script in chrome.
type BrowserConfig struct {
	Enabled bool `json:"enabled"`
	// ControlURL connects to a running chrome instead of launching one.
	ControlURL string `json:"control_url"`
	ShowWindow bool   `json:"show_window"`
}

type Config struct {
	Halls   []Hall        `json:"halls"`
	Fetch   FetchConfig   `json:"fetch"`
	Browser BrowserConfig `json:"browser"`
}

// MergeLocal applies halls.local.json5 over c. Halls are matched by id and merged
// field by field, unknown ids are appended. As with every mergo override, zero
// values (false, 0, "") in the local file leave the base value alone.
func (c *Config) MergeLocal(override any) error {
	local, ok := override.(Config)
	if !ok {
		return fmt.Errorf("cannot merge %T into a halls config", override)
	}
	for _, lh := range local.Halls {
		i := slices.IndexFunc(c.Halls, func(h Hall) bool { return h.ID == lh.ID })
		if i < 0 {
			c.Halls = append(c.Halls, lh)
			continue
		}
		err := mergo.Merge(&c.Halls[i], lh, mergo.WithOverride)
		if err != nil {
			return fmt.Errorf("hall %s: %w", lh.ID, err)
		}
	}
	err := mergo.Merge(&c.Fetch, local.Fetch, mergo.WithOverride)
	if err != nil {
		return err
	}
	return mergo.Merge(&c.Browser, local.Browser, mergo.WithOverride)
}

// DefaultHalls are the Claremont dining halls.
func DefaultHalls() []Hall {
	return []Hall{
		{Kind: KindPomona, ID: "frank", Name: "Frank", Sitename: "frank", Layout: "frankFrary"},
		{Kind: KindPomona, ID: "frary", Name: "Frary", Sitename: "frary", Layout: "frankFrary"},
		{Kind: KindPomona, ID: "oldenborg", Name: "Oldenborg", Sitename: "oldenborg", Layout: "oldenborg"},
		{Kind: KindBonAppetit, ID: "collins", Name: "Collins", CafeID: 50, UrlPrefix: "collins-cmc", UrlCafe: "collins"},
		{Kind: KindBonAppetit, ID: "pitzer", Name: "McConnell", CafeID: 219, UrlPrefix: "pitzer", UrlCafe: "mcconnell-bistro"},
		{
			Kind:     KindSmg,
			ID:       "hoch",
			Name:     "The Hoch",
			Sitename: "hmc",
			SmgName:  "harvey%20mudd%20college%20-%20resident%20dining",
		},
		{Kind: KindSodexo, ID: "scripps", Name: "Malott", Sitename: "scrippsdining", TcmID: 1567},
	}
}

// LoadConfig reads path through configutil, a missing file (or one without halls)
// falls back to DefaultHalls.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(cfg.Halls) == 0 {
		cfg.Halls = DefaultHalls()
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, h := range c.Halls {
		if h.ID == "" {
			errs = append(errs, fmt.Errorf("hall %d: missing id", i))
			continue
		}
		if seen[h.ID] {
			errs = append(errs, fmt.Errorf("hall %s: duplicate id", h.ID))
		}
		seen[h.ID] = true
		err := h.validate()
		if err != nil {
			errs = append(errs, fmt.Errorf("hall %s: %w", h.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (h Hall) validate() error {
	var missing []string
	require := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	switch h.Kind {
	case KindPomona:
		require(h.Sitename != "", "sitename")
		if h.Layout != "" && h.Layout != "frankFrary" && h.Layout != "oldenborg" {
			return fmt.Errorf("unknown layout %q", h.Layout)
		}
	case KindBonAppetit:
		require(h.CafeID > 0, "cafe_id")
		require(h.UrlPrefix != "", "url_prefix")
		require(h.UrlCafe != "", "url_cafe")
	case KindSodexo:
		require(h.Sitename != "", "sitename")
		require(h.TcmID > 0, "tcm_id")
	case KindSmg:
		require(h.Sitename != "", "sitename")
		require(h.SmgName != "", "smg_name")
	case KindBiteMenu:
		require(h.Sitename != "", "sitename")
		require(h.MenuID > 0, "menu_id")
		require(h.LocationID > 0, "location_id")
	default:
		return fmt.Errorf("unknown kind %q", h.Kind)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s hall is missing %v", h.Kind, missing)
	}
	return nil
}

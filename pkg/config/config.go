// Package config reads the service configuration from a json5 file. A
// sibling <name>.local.json5 file, when present, is merged on top so
// credentials can stay out of the checked-in file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gigscout/pkg/remote"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

type Config struct {
	Addr           string        `json:"addr"`
	KVPath         string        `json:"kv_path"`
	UserID         string        `json:"user_id"`
	ListingURL     string        `json:"listing_url"`
	AllowedDomains []string      `json:"allowed_domains"`
	Remote         remote.Config `json:"remote"`
	// Cron spec for periodic re-scrapes, e.g. "@every 12h". Empty disables.
	Schedule string `json:"schedule"`
}

func Default() Config {
	return Config{
		Addr:           ":9090",
		KVPath:         "./gigscout.db",
		UserID:         "gigscout",
		ListingURL:     "https://www.fiverr.com/users/me/manage_gigs",
		AllowedDomains: []string{"www.fiverr.com"},
	}
}

// Read loads name (json5) over the defaults, then merges the .local variant
// on top. A missing file is not an error; defaults apply.
func Read(name string) (Config, error) {
	cfg := Default()

	if err := readInto(&cfg, name); err != nil {
		return cfg, err
	}

	ext := filepath.Ext(name)
	local := strings.TrimSuffix(name, ext) + ".local" + ext
	if err := readInto(&cfg, local); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func readInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var override Config
	if err := json5.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("config: merge %s: %w", path, err)
	}
	return nil
}

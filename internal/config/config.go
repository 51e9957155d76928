// Package config loads server settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/peterje/shelll/internal/db"
)

const (
	DefaultAddr = "127.0.0.1:8787"
	FileName    = "config.toml"
)

// Config holds server settings. The shell program and terminal type are
// fixed and intentionally absent.
type Config struct {
	Addr           string   `toml:"addr"`
	DataDir        string   `toml:"data_dir"`
	History        bool     `toml:"history"`
	SelfNames      []string `toml:"self_names"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Default returns the built-in settings.
func Default() (Config, error) {
	dataDir, err := db.DataDir()
	if err != nil {
		return Config{}, fmt.Errorf("data dir: %w", err)
	}
	return Config{
		Addr:      DefaultAddr,
		DataDir:   dataDir,
		History:   true,
		SelfNames: []string{"Shelll", "shelll"},
	}, nil
}

// ResolveDataDir picks the data directory from an explicit value, then
// SHELLL_DATA_DIR, then the per-user default. The config file lives there,
// so this must run before Load.
func ResolveDataDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv("SHELLL_DATA_DIR"); v != "" {
		return v, nil
	}
	return db.DataDir()
}

// Path returns the config file location for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load applies the file at path (if it exists) and then the environment on
// top of the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	default:
		for _, key := range md.Undecoded() {
			log.Printf("config: unknown key %q in %s", key.String(), path)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("SHELLL_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("SHELLL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SHELLL_HISTORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHELLL_HISTORY must be true or false: %w", err)
		}
		cfg.History = b
	}
	if v := os.Getenv("SHELLL_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return nil
}

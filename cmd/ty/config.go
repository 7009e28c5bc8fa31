package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig holds CLI defaults read from ~/.config/tally/config.toml.
// Flags and TALLY_* environment variables take precedence over it.
type fileConfig struct {
	Server string `toml:"server"`
	Token  string `toml:"token"`
	Actor  string `toml:"actor"`
}

func configPath() string {
	if dir := os.Getenv("TALLY_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tally", "config.toml")
}

// loadFileConfig reads the config file, returning a zero config if the file
// is missing or malformed. A broken config file should never stop the CLI;
// the user can always pass flags.
func loadFileConfig() fileConfig {
	var cfg fileConfig
	path := configPath()
	if path == "" {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return fileConfig{}
	}
	return cfg
}

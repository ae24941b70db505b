// Package config loads the server's two settings: listen address and
// the root directory for the file routes. Values come from defaults,
// an optional JSON file, then command-line flags, in that order.
package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Defaults match the original deployment: port 4221, files served
// out of the working directory.
const (
	DefaultAddr      = ":4221"
	DefaultDirectory = "."
)

type Config struct {
	Addr      string `json:"addr"`
	Directory string `json:"directory"`
}

func Default() Config {
	return Config{Addr: DefaultAddr, Directory: DefaultDirectory}
}

// LoadFile overlays values from a JSON file onto the defaults.
// Fields absent from the file keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := jsoniter.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

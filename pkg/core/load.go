// pkg/core/load.go
package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads the service manifest, applies env overrides, and
// validates. Loaded once at process start; immutable afterwards.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	var cfg manifest.Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, err
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *manifest.Config) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Service.Port = p
		}
	}
	if v := strings.TrimSpace(os.Getenv("RIPTIDE_ENABLED")); v != "" {
		cfg.Riptide.Enabled = v == "true" || v == "1"
	}
	if v := strings.TrimSpace(os.Getenv("NODE_ID")); v != "" {
		cfg.Node.ID = v
	}
	if v := strings.TrimSpace(os.Getenv("NETWORK")); v != "" {
		cfg.Node.Network = v
	}
	if v := strings.TrimSpace(os.Getenv("NODE_TYPE")); v != "" {
		cfg.Node.Type = v
	}
}

// ListenAddr is the HTTP bind address derived from the manifest port.
func ListenAddr(cfg manifest.Config) string {
	return fmt.Sprintf(":%d", cfg.Service.Port)
}

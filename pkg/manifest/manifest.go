// manifest/manifest.go
package manifest

import (
	"errors"
	"fmt"
	"strings"
)

/* ===========================
   Top-level config
   =========================== */

type Config struct {
	Service Service  `toml:"service"`
	Riptide Riptide  `toml:"riptide"`
	Node    Node     `toml:"node"`
	Checks  []Check  `toml:"check"`
	Secrets []Secret `toml:"secret"`
}

type Service struct {
	Name             string `toml:"name"`
	Version          string `toml:"version"`
	Port             int    `toml:"port"`
	Description      string `toml:"description"`
	RequestTimeoutMS int    `toml:"request_timeout_ms"`
}

// Riptide is the orchestrator sub-config consumed by pkg/riptide.
type Riptide struct {
	Enabled             bool   `toml:"enabled"`
	HeartbeatIntervalMS int    `toml:"heartbeat_interval_ms"`
	StatusIntervalMS    int    `toml:"status_interval_ms"`
	MetricsEnabled      bool   `toml:"metrics_enabled"`
	SecretsFlagFile     string `toml:"secrets_flag_file"`
}

type Node struct {
	ID      string `toml:"id"`
	Network string `toml:"network"`
	Type    string `toml:"type"`
	ChainID string `toml:"chain_id"`
}

/* ===========================
   Readiness sub-checks
   =========================== */

type CheckKind string

const (
	CheckTCP    CheckKind = "tcp"
	CheckFile   CheckKind = "file"
	CheckEnv    CheckKind = "env"
	CheckStatic CheckKind = "static"
)

// Check is one named readiness probe aggregated by the ready capability.
type Check struct {
	Name      string    `toml:"name"`
	Kind      CheckKind `toml:"kind"`
	Target    string    `toml:"target"`
	TimeoutMS int       `toml:"timeout_ms"`
}

// Secret binds a secret name to the env var that carries its value when the
// orchestrator does not deliver it in the invocation context.
type Secret struct {
	Name string `toml:"name"`
	Env  string `toml:"env"`
}

/* ===========================
   Validation / Normalization
   =========================== */

// Validate normalizes and rejects structurally broken manifests. Soft policy
// violations (missing name, out-of-range port) are Lint's job so they surface
// through the validate capability instead of failing the load.
func (c *Config) Validate() error {
	c.Service.Name = strings.TrimSpace(c.Service.Name)
	c.Service.Version = strings.TrimSpace(c.Service.Version)
	c.Node.Network = strings.TrimSpace(c.Node.Network)
	c.Node.Type = strings.TrimSpace(c.Node.Type)

	if c.Riptide.HeartbeatIntervalMS == 0 {
		c.Riptide.HeartbeatIntervalMS = 30_000
	}
	if c.Riptide.StatusIntervalMS == 0 {
		c.Riptide.StatusIntervalMS = 60_000
	}
	if c.Riptide.HeartbeatIntervalMS < 0 || c.Riptide.StatusIntervalMS < 0 {
		return errors.New("riptide intervals must be >= 0")
	}
	if c.Service.RequestTimeoutMS < 0 {
		return errors.New("service.request_timeout_ms must be >= 0")
	}

	seen := map[string]struct{}{}
	for i := range c.Checks {
		ck := &c.Checks[i]
		ck.Name = strings.TrimSpace(ck.Name)
		if ck.Name == "" {
			return fmt.Errorf("check %d: name required", i)
		}
		if _, dup := seen[ck.Name]; dup {
			return fmt.Errorf("check %d: duplicate name %q", i, ck.Name)
		}
		seen[ck.Name] = struct{}{}
		switch ck.Kind {
		case CheckTCP, CheckFile, CheckEnv:
			if strings.TrimSpace(ck.Target) == "" {
				return fmt.Errorf("check %q: target required for kind %q", ck.Name, ck.Kind)
			}
		case CheckStatic:
		default:
			return fmt.Errorf("check %q: unknown kind %q", ck.Name, ck.Kind)
		}
		if ck.TimeoutMS == 0 {
			ck.TimeoutMS = 2_000
		}
		if ck.TimeoutMS < 0 {
			return fmt.Errorf("check %q: timeout_ms must be >= 0", ck.Name)
		}
	}

	for i := range c.Secrets {
		s := &c.Secrets[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return fmt.Errorf("secret %d: name required", i)
		}
	}
	return nil
}

// Lint returns ordered human-readable policy violations for the validate
// capability. An empty slice means the manifest is deployable.
func (c *Config) Lint() []string {
	var errs []string
	if strings.TrimSpace(c.Service.Name) == "" {
		errs = append(errs, "service.name is required")
	}
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		errs = append(errs, fmt.Sprintf("service.port %d outside valid range [1,65535]", c.Service.Port))
	}
	if c.Riptide.Enabled {
		if c.Riptide.HeartbeatIntervalMS < 1_000 {
			errs = append(errs, fmt.Sprintf("riptide.heartbeat_interval_ms %d below 1000ms floor", c.Riptide.HeartbeatIntervalMS))
		}
		if c.Riptide.StatusIntervalMS < 1_000 {
			errs = append(errs, fmt.Sprintf("riptide.status_interval_ms %d below 1000ms floor", c.Riptide.StatusIntervalMS))
		}
	}
	for _, s := range c.Secrets {
		if strings.TrimSpace(s.Env) == "" {
			errs = append(errs, fmt.Sprintf("secret %q: env is required", s.Name))
		}
	}
	return errs
}

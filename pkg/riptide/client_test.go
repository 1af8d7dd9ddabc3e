package riptide

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/hooks"
	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	"github.com/joeydtaylor/riptide-node-core/pkg/report"
	"github.com/joeydtaylor/riptide-node-core/pkg/secrets"
)

func clientConfig(heartbeatMS, statusMS int) manifest.Config {
	return manifest.Config{
		Service: manifest.Service{Name: "svc", Version: "1.0.0", Port: 3000},
		Riptide: manifest.Riptide{
			Enabled:             true,
			HeartbeatIntervalMS: heartbeatMS,
			StatusIntervalMS:    statusMS,
		},
	}
}

func countingRegistry(beats *atomic.Uint64) *hooks.Registry {
	reg := hooks.NewRegistry(nil)
	reg.Register(hooks.CapHeartbeat, func(context.Context, *hooks.Context) (any, error) {
		beats.Add(1)
		return hooks.HeartbeatResult{Timestamp: hooks.Timestamp(), Status: hooks.StatusHealthy}, nil
	})
	reg.Register(hooks.CapStatus, func(context.Context, *hooks.Context) (any, error) {
		return hooks.StatusResult{Status: hooks.StateRunning, Timestamp: hooks.Timestamp()}, nil
	})
	return reg
}

func TestHeartbeatLoop(t *testing.T) {
	var beats atomic.Uint64
	c := NewClient(Options{
		Config:   clientConfig(10, 10),
		Registry: countingRegistry(&beats),
	})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Shutdown(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for beats.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if beats.Load() == 0 {
		t.Fatal("no heartbeat within deadline")
	}
	if c.Beats() == 0 {
		t.Fatal("client beat counter not advanced")
	}
}

func TestShutdownStopsLoops(t *testing.T) {
	var beats atomic.Uint64
	c := NewClient(Options{
		Config:   clientConfig(10, 10),
		Registry: countingRegistry(&beats),
	})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for beats.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	settled := beats.Load()
	time.Sleep(50 * time.Millisecond)
	if beats.Load() != settled {
		t.Fatalf("heartbeats continued after shutdown: %d -> %d", settled, beats.Load())
	}

	// Idempotent.
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	cfg := clientConfig(10, 10)
	cfg.Riptide.Enabled = false
	var beats atomic.Uint64
	c := NewClient(Options{Config: cfg, Registry: countingRegistry(&beats)})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if beats.Load() != 0 {
		t.Fatalf("beats = %d for disabled client", beats.Load())
	}
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestInitializeFailsOnInvalidManifest(t *testing.T) {
	cfg := clientConfig(30_000, 60_000)
	cfg.Service.Name = "" // lint violation
	reg := hooks.NewRegistry(nil)
	rep := report.New(cfg)
	hooks.RegisterStandard(reg, rep, secrets.NewStore())

	c := NewClient(Options{Config: cfg, Registry: reg})
	if err := c.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize accepted invalid manifest")
	}
}

func TestInitializeInstallsDeliveredSecrets(t *testing.T) {
	cfg := clientConfig(30_000, 60_000)
	cfg.Secrets = []manifest.Secret{{Name: "API_KEY", Env: "UNUSED_ENV_FALLBACK"}}
	reg := hooks.NewRegistry(nil)
	rep := report.New(cfg)
	store := secrets.NewStore()
	hooks.RegisterStandard(reg, rep, store)

	c := NewClient(Options{
		Config:   cfg,
		Registry: reg,
		Secrets:  map[string]string{"API_KEY": "delivered"},
	})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer c.Shutdown(context.Background())

	if v, ok := store.Get("API_KEY"); !ok || v != "delivered" {
		t.Fatalf("store.Get = %q, %v", v, ok)
	}
}

// riptide/client.go
package riptide

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/hooks"
	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	hmetrics "github.com/joeydtaylor/riptide-node-core/pkg/middleware/metrics"
	"go.uber.org/zap"
)

// Options configure the orchestrator client.
type Options struct {
	Config   manifest.Config
	Registry *hooks.Registry
	Logger   *zap.Logger
	// Secrets delivered out-of-band by the orchestrator; merged into the
	// installSecrets invocation context. Env fallback stays in the handler.
	Secrets map[string]string
}

// Client drives the orchestrator side of the capability contract: validate
// and installSecrets once at startup, then heartbeat/status on timers at
// least as often as configured. Consumers see only Initialize and Shutdown;
// the scheduling stays internal.
type Client struct {
	cfg     manifest.Config
	reg     *hooks.Registry
	log     *zap.Logger
	secrets map[string]string

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	beats atomic.Uint64
	polls atomic.Uint64
}

func NewClient(o Options) *Client {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: o.Config, reg: o.Registry, log: log, secrets: o.Secrets}
}

// Initialize validates the manifest, installs secrets, and starts the
// heartbeat/status loops. A validation failure is fatal to startup. No-op
// success when riptide.enabled is false.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if !c.cfg.Riptide.Enabled {
		c.log.Info("riptide disabled; running unmanaged")
		return nil
	}

	if c.reg.Has(hooks.CapValidate) {
		res, err := c.reg.Invoke(ctx, hooks.CapValidate, &hooks.Context{Config: c.cfg})
		if err != nil {
			return fmt.Errorf("validate capability: %w", err)
		}
		if vr, ok := res.(hooks.ValidateResult); ok && !vr.Valid {
			return fmt.Errorf("manifest validation failed: %s", strings.Join(vr.Errors, "; "))
		}
	}

	if c.reg.Has(hooks.CapInstallSecrets) {
		res, err := c.reg.Invoke(ctx, hooks.CapInstallSecrets, &hooks.Context{
			Config:  c.cfg,
			Secrets: c.secrets,
		})
		if err != nil {
			return fmt.Errorf("installSecrets capability: %w", err)
		}
		if ir, ok := res.(hooks.InstallSecretsResult); ok {
			c.log.Info("secrets installed",
				zap.Strings("installed", ir.Installed),
				zap.Strings("skipped", ir.Skipped),
				zap.Bool("success", ir.Success),
			)
		}
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.startLoop(loopCtx, hooks.CapHeartbeat, c.interval(c.cfg.Riptide.HeartbeatIntervalMS), &c.beats)
	c.startLoop(loopCtx, hooks.CapStatus, c.interval(c.cfg.Riptide.StatusIntervalMS), &c.polls)
	c.started = true
	c.log.Info("riptide client initialized",
		zap.Int("heartbeatIntervalMs", c.cfg.Riptide.HeartbeatIntervalMS),
		zap.Int("statusIntervalMs", c.cfg.Riptide.StatusIntervalMS),
	)
	return nil
}

// Shutdown stops the loops and waits for them to drain. Idempotent; honors
// ctx for the wait.
func (c *Client) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.started = false
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		c.log.Info("riptide client stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Beats reports heartbeat invocations since Initialize.
func (c *Client) Beats() uint64 { return c.beats.Load() }

// StatusPolls reports status invocations since Initialize.
func (c *Client) StatusPolls() uint64 { return c.polls.Load() }

func (c *Client) interval(ms int) time.Duration {
	if ms <= 0 {
		return 30 * time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) startLoop(ctx context.Context, capability hooks.Capability, every time.Duration, counter *atomic.Uint64) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.invoke(ctx, capability)
				counter.Add(1)
			}
		}
	}()
}

func (c *Client) invoke(ctx context.Context, capability hooks.Capability) {
	res, err := c.reg.Invoke(ctx, capability, &hooks.Context{Config: c.cfg})
	if err != nil {
		hmetrics.ObserveCapability(string(capability), "degraded")
		// Keep the orchestrator side on parseable JSON even for failures.
		b, _ := json.Marshal(hooks.ErrorResult(capability, err.Error()))
		c.log.Warn("capability degraded",
			zap.String("capability", string(capability)),
			zap.ByteString("result", b),
		)
		return
	}
	hmetrics.ObserveCapability(string(capability), "ok")
	if hb, ok := res.(hooks.HeartbeatResult); ok && hb.Status != hooks.StatusHealthy {
		c.log.Warn("heartbeat unhealthy", zap.String("error", hb.Error))
	}
}

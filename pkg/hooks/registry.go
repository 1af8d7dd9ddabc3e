// hooks/registry.go
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	"go.uber.org/zap"
)

// Capability names a hook a node service may provide to the orchestrator.
type Capability string

const (
	CapHeartbeat      Capability = "heartbeat"
	CapStatus         Capability = "status"
	CapReady          Capability = "ready"
	CapProbe          Capability = "probe"
	CapMetrics        Capability = "metrics"
	CapValidate       Capability = "validate"
	CapInstallSecrets Capability = "installSecrets"
)

// ErrNotImplemented is returned by Invoke for an unregistered capability.
// Callers must treat it as "absent", not as a failure.
var ErrNotImplemented = errors.New("capability not implemented")

// Context carries per-invocation inputs. Constructed by the caller, never
// retained by handlers.
type Context struct {
	Config  manifest.Config
	Secrets map[string]string // installSecrets only; nil otherwise
}

// Func is the signature for capability handlers. The returned value must be
// JSON-serializable. Handlers are expected to absorb their own failures into
// an error-shaped result; a returned error is the escape hatch the caller
// turns into its boundary response (HTTP 500, degraded report).
type Func func(ctx context.Context, inv *Context) (any, error)

// Registry maps capability names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Capability]Func
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{handlers: map[Capability]Func{}, log: log}
}

// Register binds a handler under a capability name. Last registration wins.
func (r *Registry) Register(c Capability, fn Func) {
	r.mu.Lock()
	r.handlers[c] = fn
	r.mu.Unlock()
}

func (r *Registry) Has(c Capability) bool {
	r.mu.RLock()
	_, ok := r.handlers[c]
	r.mu.RUnlock()
	return ok
}

// Names lists registered capabilities in stable order.
func (r *Registry) Names() []Capability {
	r.mu.RLock()
	out := make([]Capability, 0, len(r.handlers))
	for c := range r.handlers {
		out = append(out, c)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Invoke runs the handler for c. An unregistered capability yields
// ErrNotImplemented. Handler panics are recovered into an error, so an
// invocation can fail but never crash the process.
func (r *Registry) Invoke(ctx context.Context, c Capability, inv *Context) (out any, err error) {
	r.mu.RLock()
	fn, ok := r.handlers[c]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, c)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("capability panicked",
				zap.String("capability", string(c)),
				zap.Any("panic", rec),
			)
			out, err = nil, fmt.Errorf("capability %s panicked: %v", c, rec)
		}
	}()

	out, err = fn(ctx, inv)
	if err != nil {
		r.log.Warn("capability failed",
			zap.String("capability", string(c)),
			zap.Error(err),
		)
	}
	return out, err
}

// ErrorResult builds the per-capability degraded shape for a failed
// invocation, keeping consumers on parseable JSON regardless of what broke.
func ErrorResult(c Capability, msg string) any {
	now := Timestamp()
	switch c {
	case CapHeartbeat:
		return HeartbeatResult{Timestamp: now, Status: StatusUnhealthy, Error: msg}
	case CapStatus:
		return StatusResult{Status: StateError, Timestamp: now, Error: msg}
	case CapReady:
		return ReadyResult{Ready: false, Error: msg}
	case CapProbe:
		return ProbeResult{Alive: false, Timestamp: now, Error: msg}
	case CapMetrics:
		return MetricsResult{Timestamp: now, Error: msg}
	case CapValidate:
		return ValidateResult{Valid: false, Errors: []string{msg}}
	case CapInstallSecrets:
		return InstallSecretsResult{Success: false, Timestamp: now, Error: msg}
	default:
		return map[string]any{"error": msg, "timestamp": now}
	}
}

// Timestamp is the wire format for all capability timestamps.
func Timestamp() string { return time.Now().UTC().Format(time.RFC3339) }

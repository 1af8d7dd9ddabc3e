// core/router.go
package core

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/riptide-node-core/pkg/hooks"
	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	"github.com/joeydtaylor/riptide-node-core/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/riptide-node-core/pkg/middleware/metrics"
	httpx "github.com/joeydtaylor/riptide-node-core/pkg/transport/httpx"
)

type BuildDeps struct {
	Registry *hooks.Registry
	LogMW    *logger.Middleware
	Metrics  http.Handler
	Router   httpx.Router
}

// BuildRouter assembles the HTTP facade over the capability registry.
// Every response is application/json; a capability failure escaping to the
// route boundary becomes 500 {"error": ...} and nothing else.
func BuildRouter(cfg manifest.Config, d BuildDeps) http.Handler {
	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())

	r.Get("/", rootHandler(cfg))
	r.Get("/health", hookRoute(cfg, d, hooks.CapStatus))
	r.Get("/status", hookRoute(cfg, d, hooks.CapStatus))
	r.Get("/ready", readyRoute(cfg, d))
	r.Get("/live", liveRoute(cfg, d))
	r.Get("/metrics", metricsRoute(cfg, d))
	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics/prometheus", d.Metrics)
	}
	return r.Mux()
}

func rootHandler(cfg manifest.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"service":     cfg.Service.Name,
			"version":     cfg.Service.Version,
			"description": cfg.Service.Description,
			"status":      "running",
			"timestamp":   hooks.Timestamp(),
		}, http.StatusOK)
	}
}

// hookRoute invokes a capability and writes its result verbatim.
func hookRoute(cfg manifest.Config, d BuildDeps, c hooks.Capability) http.HandlerFunc {
	h := func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Registry.Invoke(r.Context(), c, &hooks.Context{Config: cfg})
		if err != nil {
			hmetrics.ObserveCapability(string(c), "degraded")
			writeError(w, err)
			return
		}
		hmetrics.ObserveCapability(string(c), "ok")
		writeJSON(w, res, http.StatusOK)
	}
	return withTimeout(h, cfg)
}

func readyRoute(cfg manifest.Config, d BuildDeps) http.HandlerFunc {
	h := func(w http.ResponseWriter, r *http.Request) {
		if !d.Registry.Has(hooks.CapReady) {
			hmetrics.ObserveCapability(string(hooks.CapReady), "absent")
			writeJSON(w, hooks.ReadyResult{Ready: true, Checks: map[string]bool{}}, http.StatusOK)
			return
		}
		res, err := d.Registry.Invoke(r.Context(), hooks.CapReady, &hooks.Context{Config: cfg})
		if err != nil {
			hmetrics.ObserveCapability(string(hooks.CapReady), "degraded")
			writeError(w, err)
			return
		}
		hmetrics.ObserveCapability(string(hooks.CapReady), "ok")
		status := http.StatusOK
		if rr, ok := res.(hooks.ReadyResult); ok && !rr.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, res, status)
	}
	return withTimeout(h, cfg)
}

func liveRoute(cfg manifest.Config, d BuildDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Registry.Has(hooks.CapProbe) {
			hmetrics.ObserveCapability(string(hooks.CapProbe), "absent")
			writeJSON(w, hooks.ProbeResult{Alive: true, Timestamp: hooks.Timestamp()}, http.StatusOK)
			return
		}
		res, err := d.Registry.Invoke(r.Context(), hooks.CapProbe, &hooks.Context{Config: cfg})
		if err != nil {
			hmetrics.ObserveCapability(string(hooks.CapProbe), "degraded")
			writeError(w, err)
			return
		}
		hmetrics.ObserveCapability(string(hooks.CapProbe), "ok")
		writeJSON(w, res, http.StatusOK)
	}
}

func metricsRoute(cfg manifest.Config, d BuildDeps) http.HandlerFunc {
	h := func(w http.ResponseWriter, r *http.Request) {
		if !d.Registry.Has(hooks.CapMetrics) {
			hmetrics.ObserveCapability(string(hooks.CapMetrics), "absent")
			writeJSON(w, map[string]string{"message": "Metrics hook not implemented"}, http.StatusOK)
			return
		}
		res, err := d.Registry.Invoke(r.Context(), hooks.CapMetrics, &hooks.Context{Config: cfg})
		if err != nil {
			hmetrics.ObserveCapability(string(hooks.CapMetrics), "degraded")
			writeError(w, err)
			return
		}
		hmetrics.ObserveCapability(string(hooks.CapMetrics), "ok")
		writeJSON(w, res, http.StatusOK)
	}
	return withTimeout(h, cfg)
}

func withTimeout(next http.HandlerFunc, cfg manifest.Config) http.HandlerFunc {
	if cfg.Service.RequestTimeoutMS <= 0 {
		return next
	}
	d := time.Duration(cfg.Service.RequestTimeoutMS) * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	b, err := json.Marshal(v)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	_, _ = w.Write(b)
}

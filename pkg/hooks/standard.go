// hooks/standard.go
package hooks

import (
	"context"
	"os"

	"github.com/joeydtaylor/riptide-node-core/pkg/report"
	"github.com/joeydtaylor/riptide-node-core/pkg/secrets"
)

// RegisterStandard binds the full capability set for a managed node process.
// metrics is withheld when riptide.metrics_enabled is false so callers see it
// as "not implemented" rather than an empty snapshot.
func RegisterStandard(reg *Registry, rep *report.Reporter, store *secrets.Store) {
	reg.Register(CapHeartbeat, heartbeatHandler(rep))
	reg.Register(CapStatus, statusHandler(rep))
	reg.Register(CapReady, readyHandler)
	reg.Register(CapProbe, probeHandler(rep))
	reg.Register(CapValidate, validateHandler)
	reg.Register(CapInstallSecrets, installSecretsHandler(store))
}

// RegisterMetrics adds the metrics capability; split out so deployments can
// leave it absent (the HTTP facade then serves the placeholder body).
func RegisterMetrics(reg *Registry, rep *report.Reporter) {
	reg.Register(CapMetrics, metricsHandler(rep))
}

func heartbeatHandler(rep *report.Reporter) Func {
	return func(_ context.Context, _ *Context) (any, error) {
		ch := rep.Chain()
		ps := rep.Process()
		return HeartbeatResult{
			Timestamp: Timestamp(),
			Status:    StatusHealthy,
			NodeStatus: &NodeStatus{
				Synced:      ch.Synced,
				BlockHeight: ch.BlockHeight,
				Peers:       ch.Peers,
			},
			Uptime: rep.Uptime(),
			Memory: &MemoryStats{RSS: ps.RSS, HeapAlloc: ps.HeapAlloc, HeapSys: ps.HeapSys},
			PID:    rep.PID(),
		}, nil
	}
}

func statusHandler(rep *report.Reporter) Func {
	return func(_ context.Context, inv *Context) (any, error) {
		ch := rep.Chain()
		return StatusResult{
			Service: inv.Config.Service.Name,
			Version: inv.Config.Service.Version,
			Status:  StateRunning,
			NodeInfo: &NodeInfo{
				ID:      rep.NodeID(),
				Version: inv.Config.Service.Version,
				Network: inv.Config.Node.Network,
				Type:    inv.Config.Node.Type,
			},
			NetworkStatus: &NetworkStatus{
				Connected: ch.Peers > 0,
				Peers:     ch.Peers,
				ChainID:   ch.ChainID,
			},
			Timestamp: Timestamp(),
		}, nil
	}
}

func readyHandler(_ context.Context, inv *Context) (any, error) {
	checks := make(map[string]bool, len(inv.Config.Checks))
	ready := true
	for _, ck := range inv.Config.Checks {
		ok := runCheck(ck)
		checks[ck.Name] = ok
		ready = ready && ok
	}
	return ReadyResult{Ready: ready, Checks: checks}, nil
}

func probeHandler(rep *report.Reporter) Func {
	return func(_ context.Context, _ *Context) (any, error) {
		return ProbeResult{Alive: true, Timestamp: Timestamp(), Uptime: rep.Uptime()}, nil
	}
}

func metricsHandler(rep *report.Reporter) Func {
	return func(_ context.Context, _ *Context) (any, error) {
		ch := rep.Chain()
		ps := rep.Process()
		return MetricsResult{
			Timestamp: Timestamp(),
			Node: &NodeMetrics{
				BlockHeight:         ch.BlockHeight,
				BlocksProcessed:     ch.BlocksProcessed,
				TxProcessed:         ch.TxProcessed,
				AvgBlockTimeSeconds: ch.AvgBlockTime,
			},
			Network: &NetworkMetrics{
				Peers:       ch.Peers,
				Connections: ch.Connections,
				LatencyMS:   ch.LatencyMS,
			},
			System: &SystemMetrics{
				MemoryRSS:     ps.RSS,
				HeapAlloc:     ps.HeapAlloc,
				CPUPercent:    ps.CPUPercent,
				UptimeSeconds: rep.Uptime(),
			},
		}, nil
	}
}

func validateHandler(_ context.Context, inv *Context) (any, error) {
	errs := inv.Config.Lint()
	if errs == nil {
		errs = []string{}
	}
	return ValidateResult{Valid: len(errs) == 0, Errors: errs}, nil
}

func installSecretsHandler(store *secrets.Store) Func {
	return func(_ context.Context, inv *Context) (any, error) {
		installed := []string{}
		skipped := []string{}
		for _, sec := range inv.Config.Secrets {
			val, ok := inv.Secrets[sec.Name]
			if !ok && sec.Env != "" {
				val = os.Getenv(sec.Env)
				ok = val != ""
			}
			if !ok || val == "" {
				skipped = append(skipped, sec.Name)
				continue
			}
			if store.Install(sec.Name, val) {
				installed = append(installed, sec.Name)
			} else {
				skipped = append(skipped, sec.Name)
			}
		}
		res := InstallSecretsResult{
			Success:   true,
			Installed: installed,
			Skipped:   skipped,
			Timestamp: Timestamp(),
		}
		if len(installed) > 0 {
			if err := store.Commit(); err != nil {
				res.Success = false
				res.Error = err.Error()
			}
		}
		return res, nil
	}
}

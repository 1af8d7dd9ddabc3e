// report/report.go
package report

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	"github.com/joeydtaylor/riptide-node-core/pkg/middleware/metrics"
	"github.com/shirou/gopsutil/v3/process"
)

// Nominal chain cadence for the simulated counters. A real node type replaces
// the chain section of the Reporter with live values from its RPC surface.
const (
	blockInterval = 12 * time.Second
	txPerBlock    = 47
	basePeers     = 8
)

// Reporter assembles the process and node snapshots behind the heartbeat,
// status and metrics capabilities. All methods are cheap and I/O free.
type Reporter struct {
	start    time.Time
	pid      int
	proc     *process.Process
	service  manifest.Service
	node     manifest.Node
	nodeID   string
	latency  float64
	basePeer int
}

func New(cfg manifest.Config) *Reporter {
	pid := os.Getpid()
	// Best effort; proc stays nil on platforms where the lookup fails and the
	// snapshot falls back to runtime.MemStats only.
	proc, _ := process.NewProcess(int32(pid))

	id := cfg.Node.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Reporter{
		start:    time.Now(),
		pid:      pid,
		proc:     proc,
		service:  cfg.Service,
		node:     cfg.Node,
		nodeID:   id,
		latency:  42.0,
		basePeer: basePeers,
	}
}

func (r *Reporter) NodeID() string { return r.nodeID }
func (r *Reporter) PID() int       { return r.pid }

// Uptime in seconds since Reporter construction. Monotonic.
func (r *Reporter) Uptime() float64 { return time.Since(r.start).Seconds() }

// ProcessStats is the memory/cpu view of the running process.
type ProcessStats struct {
	RSS        uint64
	HeapAlloc  uint64
	HeapSys    uint64
	CPUPercent float64
}

func (r *Reporter) Process() ProcessStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	st := ProcessStats{HeapAlloc: ms.HeapAlloc, HeapSys: ms.HeapSys, RSS: ms.Sys}
	if r.proc != nil {
		if mi, err := r.proc.MemoryInfo(); err == nil && mi != nil {
			st.RSS = mi.RSS
		}
		if cp, err := r.proc.CPUPercent(); err == nil {
			st.CPUPercent = cp
		}
	}
	return st
}

// ChainStats is the simulated node-side view: a monotonic head derived from
// elapsed time at the nominal block interval.
type ChainStats struct {
	BlockHeight     uint64
	BlocksProcessed uint64
	TxProcessed     uint64
	AvgBlockTime    float64
	Peers           int
	Connections     int
	LatencyMS       float64
	Synced          bool
	ChainID         string
}

func (r *Reporter) Chain() ChainStats {
	blocks := uint64(time.Since(r.start) / blockInterval)
	st := ChainStats{
		BlockHeight:     blocks,
		BlocksProcessed: blocks,
		TxProcessed:     blocks * txPerBlock,
		AvgBlockTime:    blockInterval.Seconds(),
		Peers:           r.basePeer,
		Connections:     r.basePeer,
		LatencyMS:       r.latency,
		Synced:          true,
		ChainID:         r.node.ChainID,
	}
	metrics.SetNodeState(st.BlockHeight, st.Peers, st.Synced)
	return st
}

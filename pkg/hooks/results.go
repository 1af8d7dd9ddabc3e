// hooks/results.go
package hooks

// Closed result shapes, one per capability. Failure variants carry Error and
// the degraded status value; success variants leave Error empty.

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StateRunning    = "running"
	StateError      = "error"
)

type NodeStatus struct {
	Synced      bool   `json:"synced"`
	BlockHeight uint64 `json:"blockHeight"`
	Peers       int    `json:"peers"`
}

type MemoryStats struct {
	RSS       uint64 `json:"rss"`
	HeapAlloc uint64 `json:"heapAlloc"`
	HeapSys   uint64 `json:"heapSys"`
}

// HeartbeatResult is the cheap periodic health signal. Timestamp is never
// omitted, including on failure.
type HeartbeatResult struct {
	Timestamp  string       `json:"timestamp"`
	Status     string       `json:"status"` // healthy | unhealthy
	NodeStatus *NodeStatus  `json:"nodeStatus,omitempty"`
	Uptime     float64      `json:"uptime,omitempty"` // seconds
	Memory     *MemoryStats `json:"memory,omitempty"`
	PID        int          `json:"pid,omitempty"`
	Error      string       `json:"error,omitempty"`
}

type NodeInfo struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Network string `json:"network"`
	Type    string `json:"type"`
}

type NetworkStatus struct {
	Connected bool   `json:"connected"`
	Peers     int    `json:"peers"`
	ChainID   string `json:"chainId"`
}

// StatusResult is the richer on-demand report behind /health and /status.
type StatusResult struct {
	Service       string         `json:"service,omitempty"`
	Version       string         `json:"version,omitempty"`
	Status        string         `json:"status"` // running | error
	NodeInfo      *NodeInfo      `json:"nodeInfo,omitempty"`
	NetworkStatus *NetworkStatus `json:"networkStatus,omitempty"`
	Timestamp     string         `json:"timestamp"`
	Error         string         `json:"error,omitempty"`
}

// ReadyResult aggregates boolean sub-checks; Ready is the AND of Checks.
type ReadyResult struct {
	Ready  bool            `json:"ready"`
	Checks map[string]bool `json:"checks,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ProbeResult answers liveness only; it must not reflect downstream health.
type ProbeResult struct {
	Alive     bool    `json:"alive"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type NodeMetrics struct {
	BlockHeight         uint64  `json:"blockHeight"`
	BlocksProcessed     uint64  `json:"blocksProcessed"`
	TxProcessed         uint64  `json:"transactionsProcessed"`
	AvgBlockTimeSeconds float64 `json:"averageBlockTime"`
}

type NetworkMetrics struct {
	Peers       int     `json:"peers"`
	Connections int     `json:"connections"`
	LatencyMS   float64 `json:"latencyMs"`
}

type SystemMetrics struct {
	MemoryRSS     uint64  `json:"memoryRss"`
	HeapAlloc     uint64  `json:"heapAlloc"`
	CPUPercent    float64 `json:"cpuPercent"`
	UptimeSeconds float64 `json:"uptime"`
}

// MetricsResult is a point-in-time snapshot. A partial result keeps Error set
// and omits the sections that could not be assembled.
type MetricsResult struct {
	Timestamp string          `json:"timestamp"`
	Node      *NodeMetrics    `json:"node,omitempty"`
	Network   *NetworkMetrics `json:"network,omitempty"`
	System    *SystemMetrics  `json:"system,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ValidateResult reports manifest policy violations. Never produced by a
// thrown error; validation failures are data.
type ValidateResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type InstallSecretsResult struct {
	Success   bool     `json:"success"`
	Installed []string `json:"installed"`
	Skipped   []string `json:"skipped,omitempty"`
	Timestamp string   `json:"timestamp"`
	Error     string   `json:"error,omitempty"`
}

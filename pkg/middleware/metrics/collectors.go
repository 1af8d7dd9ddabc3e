package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	capabilityInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "capability_invocations_total", Help: "capability invocations by name and outcome"},
		[]string{"capability", "outcome"},
	)

	nodeBlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "node_block_height", Help: "current chain head height"},
	)

	nodePeers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "node_peers", Help: "connected peer count"},
	)

	nodeSynced = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "node_synced", Help: "1 when the node reports synced"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		capabilityInvocations,
		nodeBlockHeight,
		nodePeers,
		nodeSynced,
	)
}

// SetNodeState pushes the reporter's chain view into the node gauges.
func SetNodeState(height uint64, peers int, synced bool) {
	nodeBlockHeight.Set(float64(height))
	nodePeers.Set(float64(peers))
	if synced {
		nodeSynced.Set(1)
	} else {
		nodeSynced.Set(0)
	}
}

// ObserveCapability records one capability invocation outcome
// ("ok" | "degraded" | "absent").
func ObserveCapability(capability, outcome string) {
	capabilityInvocations.WithLabelValues(capability, outcome).Inc()
}

package report

import (
	"testing"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
)

func testConfig() manifest.Config {
	return manifest.Config{
		Service: manifest.Service{Name: "svc", Version: "1.0.0", Port: 3000},
		Node:    manifest.Node{Network: "mainnet", Type: "validator", ChainID: "mainnet-1"},
	}
}

func TestUptimeMonotonic(t *testing.T) {
	r := New(testConfig())
	a := r.Uptime()
	time.Sleep(5 * time.Millisecond)
	b := r.Uptime()
	if b <= a {
		t.Fatalf("uptime not increasing: %f then %f", a, b)
	}
}

func TestNodeIDStableAndDefaulted(t *testing.T) {
	r := New(testConfig())
	if r.NodeID() == "" {
		t.Fatal("empty node id")
	}
	if r.NodeID() != r.NodeID() {
		t.Fatal("node id not stable")
	}

	cfg := testConfig()
	cfg.Node.ID = "node-7"
	if r2 := New(cfg); r2.NodeID() != "node-7" {
		t.Fatalf("NodeID = %q, want configured id", r2.NodeID())
	}
}

func TestChainHeadMonotonic(t *testing.T) {
	r := New(testConfig())
	a := r.Chain()
	b := r.Chain()
	if b.BlockHeight < a.BlockHeight {
		t.Fatalf("head went backwards: %d -> %d", a.BlockHeight, b.BlockHeight)
	}
	if a.AvgBlockTime <= 0 {
		t.Fatalf("avg block time = %f", a.AvgBlockTime)
	}
	if a.ChainID != "mainnet-1" {
		t.Fatalf("chain id = %q", a.ChainID)
	}
	if !a.Synced || a.Peers <= 0 {
		t.Fatalf("chain stats = %+v", a)
	}
}

func TestProcessStats(t *testing.T) {
	r := New(testConfig())
	ps := r.Process()
	if ps.HeapAlloc == 0 {
		t.Fatal("heap alloc reported as zero")
	}
	if r.PID() <= 0 {
		t.Fatalf("pid = %d", r.PID())
	}
}

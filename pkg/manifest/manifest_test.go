package manifest

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Service: Service{Name: "crypto-node-service", Version: "1.0.0", Port: 3000},
		Riptide: Riptide{Enabled: true, HeartbeatIntervalMS: 30_000, StatusIntervalMS: 60_000, MetricsEnabled: true},
		Node:    Node{Network: "mainnet", Type: "validator"},
	}
}

func TestValidateDefaultsIntervals(t *testing.T) {
	c := Config{Service: Service{Name: "svc", Port: 3000}}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Riptide.HeartbeatIntervalMS != 30_000 {
		t.Errorf("heartbeat interval default = %d, want 30000", c.Riptide.HeartbeatIntervalMS)
	}
	if c.Riptide.StatusIntervalMS != 60_000 {
		t.Errorf("status interval default = %d, want 60000", c.Riptide.StatusIntervalMS)
	}
}

func TestValidateRejectsBrokenChecks(t *testing.T) {
	tests := []struct {
		name  string
		check Check
		want  string
	}{
		{"missing name", Check{Kind: CheckStatic}, "name required"},
		{"unknown kind", Check{Name: "x", Kind: "dns"}, "unknown kind"},
		{"tcp without target", Check{Name: "db", Kind: CheckTCP}, "target required"},
		{"negative timeout", Check{Name: "db", Kind: CheckTCP, Target: "127.0.0.1:5432", TimeoutMS: -1}, "timeout_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Checks = []Check{tt.check}
			err := c.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateRejectsDuplicateCheckNames(t *testing.T) {
	c := validConfig()
	c.Checks = []Check{
		{Name: "db", Kind: CheckStatic},
		{Name: "db", Kind: CheckStatic},
	}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("err = %v, want duplicate name error", err)
	}
}

func TestLintCleanConfig(t *testing.T) {
	c := validConfig()
	if errs := c.Lint(); len(errs) != 0 {
		t.Fatalf("Lint on valid config = %v, want empty", errs)
	}
}

func TestLintMissingName(t *testing.T) {
	c := validConfig()
	c.Service.Name = ""
	errs := c.Lint()
	if len(errs) == 0 {
		t.Fatal("expected lint errors")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e, "name") {
			found = true
		}
	}
	if !found {
		t.Errorf("no lint error mentions name: %v", errs)
	}
}

func TestLintPortRange(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		c := validConfig()
		c.Service.Port = port
		errs := c.Lint()
		found := false
		for _, e := range errs {
			if strings.Contains(e, "port") && strings.Contains(e, "65535") {
				found = true
			}
		}
		if !found {
			t.Errorf("port %d: no lint error mentions port range: %v", port, errs)
		}
	}
}

func TestLintSecretNeedsEnv(t *testing.T) {
	c := validConfig()
	c.Secrets = []Secret{{Name: "API_KEY"}}
	errs := c.Lint()
	if len(errs) != 1 || !strings.Contains(errs[0], "API_KEY") {
		t.Fatalf("Lint = %v, want single API_KEY env error", errs)
	}
}

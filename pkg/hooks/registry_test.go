package hooks

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
)

func TestInvokeUnregistered(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Invoke(context.Background(), CapMetrics, &Context{})
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("err = %v, want ErrNotImplemented", err)
	}
}

func TestInvokePropagatesHandlerError(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(CapStatus, func(context.Context, *Context) (any, error) {
		return nil, errors.New("rpc down")
	})
	_, err := reg.Invoke(context.Background(), CapStatus, &Context{})
	if err == nil || !strings.Contains(err.Error(), "rpc down") {
		t.Fatalf("err = %v, want rpc down", err)
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(CapHeartbeat, func(context.Context, *Context) (any, error) {
		panic("boom")
	})
	_, err := reg.Invoke(context.Background(), CapHeartbeat, &Context{})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want recovered panic", err)
	}
}

func TestHasAndNames(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(CapStatus, func(context.Context, *Context) (any, error) { return nil, nil })
	reg.Register(CapHeartbeat, func(context.Context, *Context) (any, error) { return nil, nil })

	if !reg.Has(CapStatus) || reg.Has(CapReady) {
		t.Fatal("Has state wrong")
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != CapHeartbeat || names[1] != CapStatus {
		t.Fatalf("Names() = %v", names)
	}
}

func TestErrorResultShapes(t *testing.T) {
	for _, c := range []Capability{
		CapHeartbeat, CapStatus, CapReady, CapProbe,
		CapMetrics, CapValidate, CapInstallSecrets, Capability("custom"),
	} {
		res := ErrorResult(c, "it broke")
		b, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("%s: marshal: %v", c, err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("%s: unmarshal: %v", c, err)
		}
		switch c {
		case CapValidate:
			if m["valid"] != false {
				t.Errorf("validate: valid = %v", m["valid"])
			}
		default:
			if _, ok := m["error"]; !ok {
				t.Errorf("%s: no error field in %s", c, b)
			}
		}
	}

	hb := ErrorResult(CapHeartbeat, "x").(HeartbeatResult)
	if hb.Status != StatusUnhealthy || hb.Timestamp == "" {
		t.Errorf("heartbeat failure shape = %+v", hb)
	}
	if _, err := time.Parse(time.RFC3339, hb.Timestamp); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}
}

func TestContextNotMutatedByRegistry(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(CapStatus, func(_ context.Context, inv *Context) (any, error) {
		return inv.Config.Service.Name, nil
	})
	inv := &Context{Config: manifest.Config{Service: manifest.Service{Name: "svc"}}}
	res, err := reg.Invoke(context.Background(), CapStatus, inv)
	if err != nil || res != "svc" {
		t.Fatalf("res=%v err=%v", res, err)
	}
}

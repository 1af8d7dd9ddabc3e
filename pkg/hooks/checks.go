// hooks/checks.go
package hooks

import (
	"net"
	"os"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
)

// runCheck evaluates one readiness sub-check. Unknown kinds fail rather than
// error so a stale manifest degrades readiness instead of breaking the hook.
func runCheck(ck manifest.Check) bool {
	switch ck.Kind {
	case manifest.CheckTCP:
		timeout := time.Duration(ck.TimeoutMS) * time.Millisecond
		conn, err := net.DialTimeout("tcp", ck.Target, timeout)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	case manifest.CheckFile:
		_, err := os.Stat(ck.Target)
		return err == nil
	case manifest.CheckEnv:
		return os.Getenv(ck.Target) != ""
	case manifest.CheckStatic:
		return true
	default:
		return false
	}
}

package main

import (
	"github.com/joeydtaylor/riptide-node-core/pkg/serverfx"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		serverfx.Module(
			serverfx.WithService("crypto-node-service"),
			serverfx.WithManifestEnv("NODE_MANIFEST"),
			serverfx.WithDefaultManifest("manifest.toml"),
		),
	)
	// fx installs SIGINT/SIGTERM handling; OnStop runs the HTTP and
	// orchestrator shutdown chain.
	app.Run()
}

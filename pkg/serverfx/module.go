// serverfx/module.go
package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/riptide-node-core/pkg/bundlefx"
	"github.com/joeydtaylor/riptide-node-core/pkg/core"
	"github.com/joeydtaylor/riptide-node-core/pkg/hooks"
	"github.com/joeydtaylor/riptide-node-core/pkg/manifest"
	"github.com/joeydtaylor/riptide-node-core/pkg/middleware/logger"
	"github.com/joeydtaylor/riptide-node-core/pkg/report"
	"github.com/joeydtaylor/riptide-node-core/pkg/riptide"
	"github.com/joeydtaylor/riptide-node-core/pkg/secrets"
	"github.com/joeydtaylor/riptide-node-core/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service         string // for logs only
	ManifestEnv     string // e.g., NODE_MANIFEST
	DefaultManifest string // e.g., "manifest.toml"
	ListenEnv       string // SERVER_LISTEN_ADDRESS
	TLSCertEnv      string // SSL_SERVER_CERTIFICATE
	TLSKeyEnv       string // SSL_SERVER_KEY
}

type Option func(*Config)

func WithService(s string) Option            { return func(c *Config) { c.Service = s } }
func WithManifestEnv(k string) Option        { return func(c *Config) { c.ManifestEnv = k } }
func WithDefaultManifest(path string) Option { return func(c *Config) { c.DefaultManifest = path } }
func WithListenEnv(k string) Option          { return func(c *Config) { c.ListenEnv = k } }
func WithTLSCertKeyEnv(cert, key string) Option {
	return func(c *Config) { c.TLSCertEnv, c.TLSKeyEnv = cert, key }
}

func defaultConfig() Config {
	return Config{
		Service:         "node",
		ManifestEnv:     "NODE_MANIFEST",
		DefaultManifest: "manifest.toml",
		ListenEnv:       "SERVER_LISTEN_ADDRESS",
		TLSCertEnv:      "SSL_SERVER_CERTIFICATE",
		TLSKeyEnv:       "SSL_SERVER_KEY",
	}
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...)
// alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		bundlefx.Module,
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		fx.Provide(httpx.NewChi),
		fx.Provide(report.New),
		fx.Provide(provideSecretStore),
		fx.Provide(provideRegistry),
		fx.Provide(provideRiptide),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``),
			fx.ResultTags(`name:"app"`),
		)),
		fx.Invoke(registerHooks),
	)
}

// ---------- Providers ----------

func provideManifest(cfg Config, zl *zap.Logger) manifest.Config {
	path := envOr(cfg.ManifestEnv, cfg.DefaultManifest)
	man, err := core.LoadConfig(path)
	if err != nil {
		zl.Fatal("manifest load failed", zap.Error(err), zap.String("path", path))
	}
	return man
}

func provideSecretStore(man manifest.Config) *secrets.Store {
	st := secrets.NewStore()
	if man.Riptide.SecretsFlagFile != "" {
		st.WithFlagFile(man.Riptide.SecretsFlagFile)
	}
	return st
}

func provideRegistry(man manifest.Config, rep *report.Reporter, st *secrets.Store, zl *zap.Logger) *hooks.Registry {
	reg := hooks.NewRegistry(zl)
	hooks.RegisterStandard(reg, rep, st)
	if man.Riptide.MetricsEnabled {
		hooks.RegisterMetrics(reg, rep)
	}
	return reg
}

func provideRiptide(man manifest.Config, reg *hooks.Registry, zl *zap.Logger) *riptide.Client {
	return riptide.NewClient(riptide.Options{Config: man, Registry: reg, Logger: zl})
}

func provideRouter(
	man manifest.Config,
	reg *hooks.Registry,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	r httpx.Router,
) http.Handler {
	return core.BuildRouter(man, core.BuildDeps{
		Registry: reg,
		LogMW:    lm,
		Metrics:  m,
		Router:   r,
	})
}

// ---------- Lifecycle (orchestrator client + HTTP server) ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	Man    manifest.Config
	Client *riptide.Client
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := envOr(cfg.ListenEnv, core.ListenAddr(d.Man))
	cert := os.Getenv(cfg.TLSCertEnv)
	key := os.Getenv(cfg.TLSKeyEnv)

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Orchestrator first: a failed initialization aborts startup.
			if err := d.Client.Initialize(ctx); err != nil {
				d.Logger.Error("riptide initialization failed", zap.Error(err))
				return err
			}

			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			serr := srv.Shutdown(ctx)
			cerr := d.Client.Shutdown(ctx)
			return errors.Join(serr, cerr)
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

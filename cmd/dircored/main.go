// Command dircored serves a directory tree over HTTP with virtual attribute
// generation, rule-checked writes, and LDIF snapshot archiving.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dircore/internal/adapters/rest"
	"dircore/internal/archive"
	"dircore/internal/config"
	"dircore/internal/core"
	"dircore/internal/logging"
	"dircore/pkg/domain"
	"dircore/pkg/providerapi"
	"dircore/providers/pibling"
)

func main() {
	configPath := flag.String("config", "dircore.yaml", "path to configuration file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, "dircored:", err)
		os.Exit(1)
	}
}

func run(configPath, addrOverride string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Init(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format == "json")

	suffix, err := domain.ParseDN(cfg.Suffix)
	if err != nil {
		return fmt.Errorf("invalid suffix: %w", err)
	}

	engine := core.NewDefaultRulesEngine()
	store, err := core.OpenStore(core.StorageDriver(cfg.Storage.Driver), storageDSN(cfg.Storage), suffix, engine)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetricsRecorder(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithMetrics(metrics),
	)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("service close failed", "err", err)
		}
	}()

	if err := installProviders(svc, cfg.Providers); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archStore, err := archive.OpenDriver(ctx, archive.Driver(cfg.Archive.Driver), cfg.Archive.FSRoot)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	handler := rest.NewHandler(svc)
	handler.Archiver = archive.NewArchiver(archStore, store)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	listenAddr := cfg.HTTP.ListenAddr
	if addrOverride != "" {
		listenAddr = addrOverride
	}
	if listenAddr == "" {
		listenAddr = ":8389"
	}
	srv := &http.Server{Addr: listenAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", listenAddr, "suffix", suffix.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		case <-reload:
			if err := reloadProviders(svc, configPath); err != nil {
				logger.Warn("config reload rejected", "err", err)
			} else {
				logger.Info("config reloaded", "path", configPath)
			}
		}
	}
}

func storageDSN(s config.StorageSection) string {
	if s.Driver == "postgres" {
		return s.PostgresDSN
	}
	return s.SQLitePath
}

func installProviders(svc *core.Service, sections []config.ProviderSection) error {
	for _, section := range sections {
		provider, err := newProvider(section.Name)
		if err != nil {
			return err
		}
		if _, err := svc.InstallProvider(section.Attribute, provider, section.Settings); err != nil {
			return fmt.Errorf("install provider %s: %w", section.Attribute, err)
		}
	}
	return nil
}

// reloadProviders re-reads the config file and applies provider settings as
// one unit. A rejected candidate leaves every provider on its previous
// configuration.
func reloadProviders(svc *core.Service, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	candidates := make(map[string]providerapi.Settings, len(cfg.Providers))
	for _, section := range cfg.Providers {
		candidates[section.Attribute] = section.Settings
	}
	return svc.Reconfigure(candidates)
}

func newProvider(name string) (providerapi.Provider, error) {
	switch name {
	case "pibling":
		return pibling.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

package main

import (
	"context"
	"time"

	"frameworks/api_tunnels/internal/app"
	"frameworks/api_tunnels/internal/config"
	"frameworks/api_tunnels/internal/handlers"
	pkgconfig "frameworks/api_tunnels/pkg/config"
	"frameworks/api_tunnels/pkg/logging"
	"frameworks/api_tunnels/pkg/monitoring"
	"frameworks/api_tunnels/pkg/server"
	"frameworks/api_tunnels/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService("bosun")
	pkgconfig.LoadEnv(logger)

	cfg, err := config.LoadBosunConfig()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	healthChecker := monitoring.NewHealthChecker("bosun", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("bosun", version.Version, version.GitCommit)

	toolInvocations, toolDuration := metricsCollector.CreateExternalToolMetrics()
	metrics := &handlers.BosunMetrics{
		TunnelOperations:    metricsCollector.NewCounter("tunnel_operations_total", "Tunnel interface operations", []string{"operation", "status"}),
		ListenerOperations:  metricsCollector.NewCounter("listener_operations_total", "Relay listener and relay process operations", []string{"operation", "status"}),
		ListenersConfigured: metricsCollector.NewGauge("listeners_configured", "Listener records in the ledger", []string{}),
	}

	components := app.Build(cfg, logger, app.Options{
		Observer: func(tool, outcome string, elapsed time.Duration) {
			toolInvocations.WithLabelValues(tool, outcome).Inc()
			toolDuration.WithLabelValues(tool, outcome).Observe(elapsed.Seconds())
		},
	})

	if n, err := components.Ledger.Count(); err == nil {
		metrics.SetListeners(n)
	} else {
		logger.WithError(err).Warn("Listener ledger unreadable at startup")
	}

	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"WIREGUARD_CONFIG_DIR": cfg.WireGuardDir,
		"LISTENER_LEDGER_PATH": cfg.LedgerPath,
		"WG_QUICK_BIN":         cfg.WgQuickBin,
		"RELAY_BIN":            cfg.RelayBin,
	}))
	healthChecker.AddCheck("wireguard_dir", monitoring.DirectoryHealthCheck(cfg.WireGuardDir))
	healthChecker.AddCheck("ledger", monitoring.FileHealthCheck(cfg.LedgerPath, true))
	healthChecker.AddCheck("relay", monitoring.ProcessHealthCheck(cfg.RelayBin, func() (bool, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return components.Launcher.IsRunning(ctx)
	}))

	router := server.SetupServiceRouter(logger, "bosun", healthChecker, metricsCollector)

	tunnelHandler := handlers.NewTunnelHandler(
		components.Store,
		components.Reconciler,
		components.Status,
		logger,
		metrics,
	)
	listenerHandler := handlers.NewListenerHandler(
		components.Ledger,
		components.Interfaces,
		components.Launcher,
		cfg.RelayBin,
		logger,
		metrics,
	)

	tunnelHandler.Register(router.Group("/api/wireguard"))
	listenerHandler.Register(router.Group("/api/gost"))

	logger.WithFields(logging.Fields{
		"port":           cfg.Port,
		"wireguard_dir":  cfg.WireGuardDir,
		"ledger":         cfg.LedgerPath,
		"status_backend": cfg.StatusBackend,
		"tool_timeout":   cfg.ToolTimeout.String(),
		"version":        version.Version,
	}).Info("Starting bosun")

	serverConfig := server.DefaultConfig("bosun", cfg.Port)
	serverConfig.Port = cfg.Port
	// modify_config runs two tool calls in one request.
	if floor := cfg.ToolTimeout*2 + 5*time.Second; serverConfig.WriteTimeout < floor {
		serverConfig.WriteTimeout = floor
	}
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.Fatal(err.Error())
	}
}

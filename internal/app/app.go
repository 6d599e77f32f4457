// Package app wires the tunnel and relay components from a BosunConfig.
// The service and the CLI share it so both drive the same files the same way.
package app

import (
	"frameworks/api_tunnels/internal/config"
	"frameworks/api_tunnels/internal/ledger"
	"frameworks/api_tunnels/internal/netif"
	"frameworks/api_tunnels/internal/reconcile"
	"frameworks/api_tunnels/internal/relay"
	"frameworks/api_tunnels/internal/wireguard"
	"frameworks/api_tunnels/internal/xexec"
	"frameworks/api_tunnels/pkg/logging"
)

// Components is the assembled object graph.
type Components struct {
	Config     config.BosunConfig
	Runner     xexec.Runner
	Store      *wireguard.Store
	Lifecycle  *wireguard.WgQuick
	Status     wireguard.StatusSource
	Interfaces netif.Lister
	Ledger     *ledger.Ledger
	Launcher   *relay.Launcher
	Reconciler *reconcile.Reconciler
}

// Options lets callers swap collaborators, mainly in tests.
type Options struct {
	// Observer receives the outcome of every external command.
	Observer xexec.Observer
	// Runner replaces the os/exec runner.
	Runner xexec.Runner
	// Interfaces replaces the host interface lister.
	Interfaces netif.Lister
}

// Build assembles the components.
func Build(cfg config.BosunConfig, logger logging.Logger, opts Options) *Components {
	runner := opts.Runner
	if runner == nil {
		runner = xexec.NewRunner(cfg.ToolTimeout)
	}
	runner = xexec.WithObserver(runner, opts.Observer)

	lister := opts.Interfaces
	if lister == nil {
		lister = netif.NewSystem()
	}

	store := wireguard.NewStore(cfg.WireGuardDir, logger)
	lifecycle := wireguard.NewWgQuick(cfg.WgQuickBin, cfg.WireGuardDir, runner, logger)
	led := ledger.New(cfg.LedgerPath, lister, logger)

	return &Components{
		Config:     cfg,
		Runner:     runner,
		Store:      store,
		Lifecycle:  lifecycle,
		Status:     wireguard.NewStatusSource(cfg.StatusBackend, cfg.WgBin, runner, logger),
		Interfaces: lister,
		Ledger:     led,
		Launcher:   relay.NewLauncher(cfg.RelayBin, cfg.ScreenBin, cfg.RelaySession, runner, logger),
		Reconciler: reconcile.New(reconcile.Options{
			Store:     store,
			Lifecycle: lifecycle,
			Listeners: led,
			Loopback:  cfg.LoopbackInterface,
			Tool:      cfg.WgQuickBin,
			Logger:    logger,
		}),
	}
}

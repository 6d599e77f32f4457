package handlers

import (
	"context"

	"frameworks/api_tunnels/internal/ledger"
	"frameworks/api_tunnels/internal/relay"
	"frameworks/api_tunnels/internal/wireguard"
)

type TunnelStore interface {
	List() ([]string, error)
	Add(ctx context.Context, text string) (string, string, error)
	Read(iface string) (string, error)
}

type TunnelReconciler interface {
	BringUp(ctx context.Context, iface string) (wireguard.Outcome, error)
	BringDown(ctx context.Context, iface string) (wireguard.Outcome, error)
	ReplaceConfig(ctx context.Context, iface, text string) (string, wireguard.Outcome, error)
	RemoveInterface(iface string) (int, error)
}

type ListenerLedger interface {
	ListAll() ([]ledger.Record, error)
	AddItem(ctx context.Context, in ledger.Input) (ledger.Record, error)
	EditItem(id int, in ledger.Input) (ledger.Record, error)
	RemoveItemByID(id int) error
	ToCommandFragments() ([]ledger.ListenerSpec, error)
}

type InterfaceLister interface {
	Interfaces(ctx context.Context) ([]string, error)
}

type RelayLauncher interface {
	IsRunning(ctx context.Context) (bool, error)
	Start(ctx context.Context, cmd relay.Command) (relay.StartResult, error)
	StopAll(ctx context.Context) (int, error)
}

// Package reconcile keeps tunnel interfaces, their config files and the
// listener ledger consistent with each other.
package reconcile

import (
	"context"

	"frameworks/api_tunnels/internal/wireguard"
	"frameworks/api_tunnels/pkg/logging"
)

// DefaultLoopback is the interface listeners are redirected to when their
// tunnel goes away.
const DefaultLoopback = "lo"

// ConfigStore is the part of wireguard.Store the reconciler drives.
type ConfigStore interface {
	Replace(iface, text string) (string, error)
	Remove(iface string) error
}

// ListenerRewriter is the part of ledger.Ledger the reconciler drives.
type ListenerRewriter interface {
	ReplaceInterface(from, to string) (int, error)
}

// Reconciler orchestrates lifecycle calls and the ledger follow-up.
type Reconciler struct {
	store     ConfigStore
	lifecycle wireguard.Lifecycle
	listeners ListenerRewriter
	loopback  string
	tool      string
	logger    logging.Logger
}

// Options configures a Reconciler.
type Options struct {
	Store     ConfigStore
	Lifecycle wireguard.Lifecycle
	Listeners ListenerRewriter
	// Loopback defaults to DefaultLoopback.
	Loopback string
	// Tool names the lifecycle binary in error messages.
	Tool   string
	Logger logging.Logger
}

// New returns a reconciler.
func New(opts Options) *Reconciler {
	if opts.Loopback == "" {
		opts.Loopback = DefaultLoopback
	}
	if opts.Tool == "" {
		opts.Tool = "wg-quick"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	return &Reconciler{
		store:     opts.Store,
		lifecycle: opts.Lifecycle,
		listeners: opts.Listeners,
		loopback:  opts.Loopback,
		tool:      opts.Tool,
		logger:    opts.Logger,
	}
}

// Loopback returns the sentinel interface name.
func (r *Reconciler) Loopback() string { return r.loopback }

// BringUp brings iface up. A warning outcome (already up) is not an error.
func (r *Reconciler) BringUp(ctx context.Context, iface string) (wireguard.Outcome, error) {
	if err := wireguard.ValidateInterfaceName(iface); err != nil {
		return wireguard.Outcome{}, err
	}
	out := r.lifecycle.Up(ctx, iface)
	return out, out.Err(r.tool, "failed to bring up "+iface)
}

// BringDown brings iface down. "Already down" is a warning, not an error.
func (r *Reconciler) BringDown(ctx context.Context, iface string) (wireguard.Outcome, error) {
	if err := wireguard.ValidateInterfaceName(iface); err != nil {
		return wireguard.Outcome{}, err
	}
	out := r.lifecycle.Down(ctx, iface)
	return out, out.Err(r.tool, "failed to bring down "+iface)
}

// ReplaceConfig rewrites iface's config and restarts it: down (any result
// tolerated), then up. The returned outcome is the bring-up's.
func (r *Reconciler) ReplaceConfig(ctx context.Context, iface, text string) (string, wireguard.Outcome, error) {
	body, err := r.store.Replace(iface, text)
	if err != nil {
		return "", wireguard.Outcome{}, err
	}

	if down := r.lifecycle.Down(ctx, iface); down.Status == wireguard.OutcomeError {
		r.logger.WithFields(logging.Fields{
			"interface": iface,
			"exit_code": down.Code,
		}).Warn("Bring-down before restart failed, bringing up anyway")
	}

	up := r.lifecycle.Up(ctx, iface)
	if err := up.Err(r.tool, "config replaced but failed to bring up "+iface); err != nil {
		return body, up, err
	}
	return body, up, nil
}

// RemoveInterface deletes iface's config file and then redirects any
// listener bound to it. It returns the number of redirected listeners.
func (r *Reconciler) RemoveInterface(iface string) (int, error) {
	if err := r.store.Remove(iface); err != nil {
		return 0, err
	}
	return r.OnInterfaceRemoved(iface)
}

// OnInterfaceRemoved rewrites listeners on iface to the loopback sentinel.
// The ledger is not written when none matched.
func (r *Reconciler) OnInterfaceRemoved(iface string) (int, error) {
	n, err := r.listeners.ReplaceInterface(iface, r.loopback)
	if err != nil {
		r.logger.WithError(err).WithField("interface", iface).Error("Config removed but listeners could not be redirected")
		return 0, err
	}
	return n, nil
}

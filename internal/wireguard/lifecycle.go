package wireguard

import (
	"context"
	"fmt"
	"strings"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/xexec"
	"frameworks/api_tunnels/pkg/logging"
)

// OutcomeStatus is the three-way result of a lifecycle call.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeWarning OutcomeStatus = "warning"
	OutcomeError   OutcomeStatus = "error"
)

// exitAlreadyInState is the wg-quick exit code for "already up"/"not a WireGuard interface".
const exitAlreadyInState = 1

// Outcome is what a lifecycle tool reported for one call.
type Outcome struct {
	Status OutcomeStatus
	Stdout string
	Stderr string
	Code   int
}

// OK reports whether the outcome is success or warning.
func (o Outcome) OK() bool { return o.Status != OutcomeError }

// Err converts an error outcome into an ExternalTool error; other outcomes return nil.
func (o Outcome) Err(tool, message string) error {
	if o.Status != OutcomeError {
		return nil
	}
	return apperrors.ExternalTool(tool, o.Code, o.Stdout, o.Stderr, message)
}

// Classify maps a finished command onto an Outcome: exit 0 is success, exit 1
// a warning, anything else (including a command that never ran) an error.
func Classify(res xexec.Result, runErr error) Outcome {
	out := Outcome{Stdout: res.Stdout, Stderr: res.Stderr, Code: res.ExitCode}
	if runErr != nil {
		out.Status = OutcomeError
		if out.Code == 0 {
			out.Code = xexec.ExitUnexpected
		}
		if strings.TrimSpace(out.Stderr) == "" {
			out.Stderr = runErr.Error()
		}
		return out
	}
	switch res.ExitCode {
	case 0:
		out.Status = OutcomeSuccess
	case exitAlreadyInState:
		out.Status = OutcomeWarning
	default:
		out.Status = OutcomeError
	}
	return out
}

// Lifecycle brings tunnel interfaces up and down.
type Lifecycle interface {
	Up(ctx context.Context, iface string) Outcome
	Down(ctx context.Context, iface string) Outcome
}

// WgQuick drives wg-quick against configs in the store's directory.
type WgQuick struct {
	Bin    string
	Dir    string
	Runner xexec.Runner
	Logger logging.Logger
}

// NewWgQuick returns a lifecycle tool that runs bin. When dir is set the
// config path is passed instead of the bare interface name, so configs
// outside /etc/wireguard still work.
func NewWgQuick(bin, dir string, runner xexec.Runner, logger logging.Logger) *WgQuick {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &WgQuick{Bin: bin, Dir: dir, Runner: runner, Logger: logger}
}

// Up runs "wg-quick up".
func (w *WgQuick) Up(ctx context.Context, iface string) Outcome {
	return w.run(ctx, "up", iface)
}

// Down runs "wg-quick down".
func (w *WgQuick) Down(ctx context.Context, iface string) Outcome {
	return w.run(ctx, "down", iface)
}

func (w *WgQuick) target(iface string) string {
	if w.Dir == "" {
		return iface
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(w.Dir, "/"), ConfigFileName(iface))
}

func (w *WgQuick) run(ctx context.Context, action, iface string) Outcome {
	if err := ValidateInterfaceName(iface); err != nil {
		return Outcome{Status: OutcomeError, Stderr: err.Error(), Code: xexec.ExitUnexpected}
	}
	res, err := w.Runner.Run(ctx, w.Bin, action, w.target(iface))
	out := Classify(res, err)

	entry := w.Logger.WithFields(logging.Fields{
		"interface": iface,
		"action":    action,
		"exit_code": out.Code,
	})
	switch out.Status {
	case OutcomeSuccess:
		entry.Info("Tunnel interface " + action)
	case OutcomeWarning:
		entry.WithField("stderr", strings.TrimSpace(out.Stderr)).Warn("Tunnel interface already in requested state")
	default:
		entry.WithField("stderr", strings.TrimSpace(out.Stderr)).Error("Tunnel lifecycle tool failed")
	}
	return out
}

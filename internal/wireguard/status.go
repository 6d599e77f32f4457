package wireguard

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/sync/singleflight"
	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/xexec"
	"frameworks/api_tunnels/pkg/logging"
)

// Status backends selectable through WG_STATUS_BACKEND.
const (
	BackendWgctrl  = "wgctrl"
	BackendCommand = "command"
)

// StatusSource reports which tunnel interfaces the kernel currently has up.
// Results are never cached.
type StatusSource interface {
	ActiveInterfaces(ctx context.Context) ([]string, error)
}

type deviceClient interface {
	Devices() ([]*wgtypes.Device, error)
	Close() error
}

// WgctrlStatus lists devices through the wgctrl netlink/userspace client.
type WgctrlStatus struct {
	open func() (deviceClient, error)
}

// NewWgctrlStatus returns a status source backed by wgctrl.
func NewWgctrlStatus() *WgctrlStatus {
	return &WgctrlStatus{open: func() (deviceClient, error) { return wgctrl.New() }}
}

// ActiveInterfaces implements StatusSource.
func (s *WgctrlStatus) ActiveInterfaces(context.Context) ([]string, error) {
	client, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open wgctrl: %w", err)
	}
	defer func() { _ = client.Close() }()

	devices, err := client.Devices()
	if err != nil {
		return nil, fmt.Errorf("list wireguard devices: %w", err)
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		names = append(names, d.Name)
	}
	SortInterfaceNames(names)
	return names, nil
}

var interfaceLinePattern = regexp.MustCompile(`(?m)^interface: (\S+)`)

// ParseWgShow extracts interface names from "wg show" output.
func ParseWgShow(output string) []string {
	matches := interfaceLinePattern.FindAllStringSubmatch(output, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// CommandStatus runs the wg tool and parses its output.
type CommandStatus struct {
	Bin    string
	Runner xexec.Runner
}

// ActiveInterfaces implements StatusSource.
func (s *CommandStatus) ActiveInterfaces(ctx context.Context) ([]string, error) {
	res, err := s.Runner.Run(ctx, s.Bin, "show")
	if out := Classify(res, err); out.Code != 0 || err != nil {
		return nil, apperrors.ExternalTool(s.Bin, out.Code, out.Stdout, out.Stderr, "failed to query active interfaces")
	}
	return ParseWgShow(res.Stdout), nil
}

// FallbackStatus asks Primary and, when it fails, Secondary.
type FallbackStatus struct {
	Primary   StatusSource
	Secondary StatusSource
	Logger    logging.Logger
}

// ActiveInterfaces implements StatusSource.
func (s *FallbackStatus) ActiveInterfaces(ctx context.Context) ([]string, error) {
	names, err := s.Primary.ActiveInterfaces(ctx)
	if err == nil {
		return names, nil
	}
	if s.Logger != nil {
		s.Logger.WithError(err).Debug("Primary status backend failed, falling back to wg")
	}
	return s.Secondary.ActiveInterfaces(ctx)
}

// SharedStatus collapses concurrent queries into one call of the wrapped source.
type SharedStatus struct {
	source StatusSource
	group  singleflight.Group
}

// NewSharedStatus wraps source.
func NewSharedStatus(source StatusSource) *SharedStatus {
	return &SharedStatus{source: source}
}

// ActiveInterfaces implements StatusSource. The shared query runs detached
// from any one caller, so a caller that gives up does not fail the others.
func (s *SharedStatus) ActiveInterfaces(ctx context.Context) ([]string, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan("active", func() (interface{}, error) {
		return s.source.ActiveInterfaces(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		names, _ := res.Val.([]string)
		out := make([]string, len(names))
		copy(out, names)
		return out, nil
	}
}

// NewStatusSource builds the configured status chain. The wgctrl backend
// falls back to running wgBin when the kernel interface is unavailable.
func NewStatusSource(backend, wgBin string, runner xexec.Runner, logger logging.Logger) StatusSource {
	command := &CommandStatus{Bin: wgBin, Runner: runner}
	if backend == BackendCommand {
		return NewSharedStatus(command)
	}
	return NewSharedStatus(&FallbackStatus{
		Primary:   NewWgctrlStatus(),
		Secondary: command,
		Logger:    logger,
	})
}

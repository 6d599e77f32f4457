package relay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
	"golang.org/x/sys/unix"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/xexec"
	"frameworks/api_tunnels/pkg/logging"
)

// Process is the subset of a process table entry the launcher needs.
type Process interface {
	Pid() int
	Executable() string
}

// Launcher starts the relay inside a detached screen session and finds
// running instances through the process table.
type Launcher struct {
	Bin       string
	ScreenBin string
	Session   string
	Runner    xexec.Runner
	Logger    logging.Logger

	processes func() ([]Process, error)
	signal    func(pid int) error
}

// NewLauncher returns a launcher for the relay binary bin.
func NewLauncher(bin, screenBin, session string, runner xexec.Runner, logger logging.Logger) *Launcher {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Launcher{
		Bin:       bin,
		ScreenBin: screenBin,
		Session:   session,
		Runner:    runner,
		Logger:    logger,
		processes: systemProcesses,
		signal:    terminate,
	}
}

func systemProcesses() ([]Process, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]Process, len(procs))
	for i, p := range procs {
		out[i] = p
	}
	return out, nil
}

func terminate(pid int) error {
	err := unix.Kill(pid, unix.SIGTERM)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// StartResult reports what Start did.
type StartResult struct {
	AlreadyRunning bool
	Command        Command
}

func (l *Launcher) matches() ([]Process, error) {
	procs, err := l.processes()
	if err != nil {
		return nil, apperrors.IO(err, "failed to read process table")
	}
	name := filepath.Base(l.Bin)
	self := os.Getpid()
	var out []Process
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if p.Executable() == name {
			out = append(out, p)
		}
	}
	return out, nil
}

// IsRunning reports whether any relay process exists.
func (l *Launcher) IsRunning(context.Context) (bool, error) {
	procs, err := l.matches()
	if err != nil {
		return false, err
	}
	return len(procs) > 0, nil
}

// Start launches cmd in a detached session unless a relay is already running.
func (l *Launcher) Start(ctx context.Context, cmd Command) (StartResult, error) {
	result := StartResult{Command: cmd}
	if cmd.Empty() {
		return result, apperrors.Validation("no listeners configured")
	}
	running, err := l.IsRunning(ctx)
	if err != nil {
		return result, err
	}
	if running {
		l.Logger.WithField("session", l.Session).Warn("Relay already running, not starting another")
		result.AlreadyRunning = true
		return result, nil
	}

	args := append([]string{"-dmS", l.Session, cmd.Bin}, cmd.Args...)
	res, err := l.Runner.Run(ctx, l.ScreenBin, args...)
	if err != nil || res.ExitCode != 0 {
		code := res.ExitCode
		stderr := res.Stderr
		if err != nil && strings.TrimSpace(stderr) == "" {
			stderr = err.Error()
		}
		l.Logger.WithFields(logging.Fields{
			"exit_code": code,
			"stderr":    strings.TrimSpace(stderr),
		}).Error("Failed to start relay")
		return result, apperrors.ExternalTool(l.ScreenBin, code, res.Stdout, stderr, "failed to start relay")
	}

	l.Logger.WithFields(logging.Fields{
		"session":   l.Session,
		"listeners": cmd.Listeners(),
	}).Info("Relay started")
	return result, nil
}

// StopAll sends SIGTERM to every relay process and returns how many were signalled.
func (l *Launcher) StopAll(context.Context) (int, error) {
	procs, err := l.matches()
	if err != nil {
		return 0, err
	}
	stopped := 0
	for _, p := range procs {
		if err := l.signal(p.Pid()); err != nil {
			return stopped, apperrors.IO(err, "failed to signal relay pid %d", p.Pid())
		}
		stopped++
	}
	if stopped > 0 {
		l.Logger.WithField("processes", stopped).Info("Relay stopped")
	}
	return stopped, nil
}

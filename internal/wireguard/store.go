package wireguard

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/fsutil"
	"frameworks/api_tunnels/internal/wgconf"
	"frameworks/api_tunnels/pkg/logging"
)

const (
	lockFileName = ".bosun.lock"
	configPerm   = 0o600

	defaultCreateRetries = 5
	defaultCreateBackoff = 10 * time.Millisecond
)

// Store owns the tunnel config files of one directory. Every write holds the
// directory lock, so two bosun processes sharing a directory never allocate
// the same number.
type Store struct {
	dir    string
	lock   *fsutil.Lock
	retry  retrypolicy.RetryPolicy[string]
	logger logging.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Store{
		dir:    dir,
		lock:   fsutil.NewLock(filepath.Join(dir, lockFileName)),
		retry:  newCreateRetryPolicy(defaultCreateRetries, defaultCreateBackoff, logger),
		logger: logger,
	}
}

// newCreateRetryPolicy retries only exclusive-create collisions. Every other
// error is returned as is.
func newCreateRetryPolicy(retries int, backoff time.Duration, logger logging.Logger) retrypolicy.RetryPolicy[string] {
	return retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool {
			return errors.Is(err, fs.ErrExist)
		}).
		WithMaxRetries(retries).
		WithDelay(backoff).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[string]) {
			logger.WithFields(logging.Fields{
				"attempt": e.Attempts(),
				"error":   e.LastError(),
			}).Warn("Tunnel config name collided, allocating again")
		}).
		Build()
}

// Dir returns the config directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the config file path for iface.
func (s *Store) Path(iface string) string {
	return filepath.Join(s.dir, ConfigFileName(iface))
}

// List returns the configured interface names (wg3, not wg3.conf) in numeric order.
func (s *Store) List() ([]string, error) {
	files, err := s.fileNames()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		if iface, ok := InterfaceFromFile(f); ok {
			names = append(names, iface)
		}
	}
	SortInterfaceNames(names)
	return names, nil
}

func (s *Store) fileNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.IO(err, "failed to read config directory %s", s.dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Add transforms text, allocates the next free wgN.conf and writes it. It
// returns the interface name and the text as written.
func (s *Store) Add(ctx context.Context, text string) (string, string, error) {
	body := wgconf.Transform(text)

	file, err := failsafe.With[string](s.retry).WithContext(ctx).Get(func() (string, error) {
		return s.createNext(body)
	})
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", "", apperrors.Conflict(err, "could not allocate a free tunnel config name")
		}
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return "", "", err
		}
		return "", "", apperrors.IO(err, "failed to write tunnel config")
	}

	iface, _ := InterfaceFromFile(file)
	s.logger.WithFields(logging.Fields{
		"interface": iface,
		"file":      filepath.Join(s.dir, file),
	}).Info("Tunnel config created")
	return iface, body, nil
}

// createNext allocates and exclusively creates one file under the lock. A
// collision with a writer that ignores the lock surfaces as fs.ErrExist.
func (s *Store) createNext(body string) (string, error) {
	var file string
	err := s.lock.With(func() error {
		names, err := s.fileNames()
		if err != nil {
			return err
		}
		file = Allocate(names, func(name string) bool {
			_, statErr := os.Lstat(filepath.Join(s.dir, name))
			return statErr == nil
		})

		f, err := os.OpenFile(filepath.Join(s.dir, file), os.O_WRONLY|os.O_CREATE|os.O_EXCL, configPerm)
		if err != nil {
			return err
		}
		if _, err := f.WriteString(body); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return err
		}
		return f.Close()
	})
	return file, err
}

// Read returns the raw contents of iface's config.
func (s *Store) Read(iface string) (string, error) {
	if err := ValidateInterfaceName(iface); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path(iface))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.NotFound("config for %s not found", iface)
		}
		return "", apperrors.IO(err, "failed to read config for %s", iface)
	}
	return string(data), nil
}

// Replace transforms text and atomically replaces iface's existing config.
// It returns the text as written.
func (s *Store) Replace(iface, text string) (string, error) {
	if err := ValidateInterfaceName(iface); err != nil {
		return "", err
	}
	body := wgconf.Transform(text)
	path := s.Path(iface)

	err := s.lock.With(func() error {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return apperrors.NotFound("config for %s not found", iface)
			}
			return apperrors.IO(err, "failed to stat config for %s", iface)
		}
		if err := fsutil.WriteFileAtomic(path, []byte(body), configPerm); err != nil {
			return apperrors.IO(err, "failed to write config for %s", iface)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			err = apperrors.IO(err, "failed to lock config directory")
		}
		return "", err
	}

	s.logger.WithFields(logging.Fields{
		"interface": iface,
		"file":      path,
	}).Info("Tunnel config replaced")
	return body, nil
}

// Remove deletes iface's config file.
func (s *Store) Remove(iface string) error {
	if err := ValidateInterfaceName(iface); err != nil {
		return err
	}
	path := s.Path(iface)
	err := s.lock.With(func() error {
		if err := os.Remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return apperrors.NotFound("config for %s not found", iface)
			}
			return apperrors.IO(err, "failed to remove config for %s", iface)
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			err = apperrors.IO(err, "failed to lock config directory")
		}
		return err
	}

	s.logger.WithFields(logging.Fields{
		"interface": iface,
		"file":      path,
	}).Info("Tunnel config removed")
	return nil
}

package ledger

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"

	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/fsutil"
	"frameworks/api_tunnels/pkg/logging"
)

const filePerm = 0o600

// InterfaceLister reports the OS network interfaces that exist right now.
type InterfaceLister interface {
	Interfaces(ctx context.Context) ([]string, error)
}

// Ledger serializes all access to one ledger file.
type Ledger struct {
	path   string
	lock   *fsutil.Lock
	lister InterfaceLister
	logger logging.Logger
}

// New returns a ledger for the file at path. The file need not exist yet.
func New(path string, lister InterfaceLister, logger logging.Logger) *Ledger {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Ledger{
		path:   path,
		lock:   fsutil.NewLock(path + ".lock"),
		lister: lister,
		logger: logger,
	}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string { return l.path }

// load reads the file; a missing file is an empty ledger.
func (l *Ledger) load() ([]Record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, apperrors.IO(err, "failed to read listener ledger")
	}
	records, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.IO(err, "failed to parse listener ledger")
	}
	return records, nil
}

func (l *Ledger) store(records []Record) error {
	data, err := Encode(records)
	if err != nil {
		return apperrors.IO(err, "failed to encode listener ledger")
	}
	if err := fsutil.WriteFileAtomic(l.path, data, filePerm); err != nil {
		return apperrors.IO(err, "failed to write listener ledger")
	}
	return nil
}

// update runs fn over the current records under the lock and writes the
// result when fn reports a change.
func (l *Ledger) update(fn func(records []Record) ([]Record, bool, error)) error {
	err := l.lock.With(func() error {
		records, err := l.load()
		if err != nil {
			return err
		}
		next, changed, err := fn(records)
		if err != nil || !changed {
			return err
		}
		return l.store(next)
	})
	var appErr *apperrors.Error
	if err != nil && !errors.As(err, &appErr) {
		err = apperrors.IO(err, "failed to lock listener ledger")
	}
	return err
}

// ListAll returns every record in file order.
func (l *Ledger) ListAll() ([]Record, error) {
	return l.load()
}

// PortExists reports whether any record's port equals port exactly.
func (l *Ledger) PortExists(port string) (bool, error) {
	records, err := l.load()
	if err != nil {
		return false, err
	}
	return portTaken(records, port), nil
}

func portTaken(records []Record, port string) bool {
	for _, r := range records {
		if r.Port == port {
			return true
		}
	}
	return false
}

// AddItem validates in and appends it with id max+1. The duplicate-port
// check, id computation and append happen under one lock hold.
func (l *Ledger) AddItem(ctx context.Context, in Input) (Record, error) {
	rec := Record{
		Username:  Sanitize(in.Username),
		Password:  Sanitize(in.Password),
		Interface: Sanitize(in.Interface),
	}
	if rec.Username == "" || rec.Password == "" || rec.Interface == "" || in.Port == "" {
		return Record{}, apperrors.Validation("username, password, port and interface are required")
	}
	port, err := ParsePort(in.Port)
	if err != nil {
		return Record{}, err
	}
	rec.Port = port
	if err := l.requireInterface(ctx, rec.Interface); err != nil {
		return Record{}, err
	}

	err = l.update(func(records []Record) ([]Record, bool, error) {
		if portTaken(records, rec.Port) {
			return nil, false, apperrors.Validation("port %s is already in use", rec.Port)
		}
		rec.ID = maxID(records) + 1
		return append(records, rec), true, nil
	})
	if err != nil {
		return Record{}, err
	}

	l.logger.WithFields(logging.Fields{
		"listener_id": rec.ID,
		"port":        rec.Port,
		"interface":   rec.Interface,
	}).Info("Listener added")
	return rec, nil
}

func (l *Ledger) requireInterface(ctx context.Context, name string) error {
	if l.lister == nil {
		return apperrors.Validation("interface %q does not exist", name)
	}
	names, err := l.lister.Interfaces(ctx)
	if err != nil {
		return apperrors.IO(err, "failed to list network interfaces")
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return apperrors.Validation("interface %q does not exist", name)
}

func maxID(records []Record) int {
	highest := 0
	for _, r := range records {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest
}

// EditItem replaces the fields of record id. Port uniqueness and interface
// existence are not re-checked.
func (l *Ledger) EditItem(id int, in Input) (Record, error) {
	var edited Record
	err := l.update(func(records []Record) ([]Record, bool, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			records[i].Username = Sanitize(in.Username)
			records[i].Password = Sanitize(in.Password)
			records[i].Port = Sanitize(in.Port)
			records[i].Interface = Sanitize(in.Interface)
			edited = records[i]
			return records, true, nil
		}
		return nil, false, apperrors.NotFound("listener %d not found", id)
	})
	if err != nil {
		return Record{}, err
	}

	l.logger.WithFields(logging.Fields{
		"listener_id": id,
		"port":        edited.Port,
		"interface":   edited.Interface,
	}).Info("Listener updated")
	return edited, nil
}

// RemoveItemByID deletes record id, if present, and renumbers the remaining
// records 1..n in order. Removing an absent id is not an error.
func (l *Ledger) RemoveItemByID(id int) error {
	removed := false
	err := l.update(func(records []Record) ([]Record, bool, error) {
		kept := make([]Record, 0, len(records))
		for _, r := range records {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		changed := removed
		for i := range kept {
			if kept[i].ID != i+1 {
				kept[i].ID = i + 1
				changed = true
			}
		}
		return kept, changed, nil
	})
	if err != nil {
		return err
	}

	entry := l.logger.WithField("listener_id", id)
	if removed {
		entry.Info("Listener removed")
	} else {
		entry.Debug("Listener not present, nothing removed")
	}
	return nil
}

// ReplaceInterface rewrites every record on interface from to use to. The
// file is only written when at least one record matched.
func (l *Ledger) ReplaceInterface(from, to string) (int, error) {
	count := 0
	err := l.update(func(records []Record) ([]Record, bool, error) {
		for i := range records {
			if records[i].Interface == from {
				records[i].Interface = to
				count++
			}
		}
		return records, count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		l.logger.WithFields(logging.Fields{
			"from":      from,
			"to":        to,
			"listeners": count,
		}).Info("Listeners redirected")
	}
	return count, nil
}

// Count returns the number of records.
func (l *Ledger) Count() (int, error) {
	records, err := l.load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

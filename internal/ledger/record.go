// Package ledger is the flat-file store of relay listener definitions. The
// Ledger type is the only writer of the file; every mutation is a locked
// read-modify-write that atomically replaces the whole file.
package ledger

import (
	"strconv"
	"strings"

	"frameworks/api_tunnels/internal/apperrors"
)

// Record is one listener: credentials, the port it binds and the interface
// its traffic leaves through. Port is kept as written so lookups compare it
// exactly.
type Record struct {
	ID        int    `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	Password  string `json:"password" yaml:"password"`
	Port      string `json:"port" yaml:"port"`
	Interface string `json:"interface" yaml:"interface"`
}

// Input is the caller-supplied part of a record.
type Input struct {
	Username  string
	Password  string
	Port      string
	Interface string
}

// Sanitize strips the characters the file format cannot carry (comma and
// double quote) and surrounding whitespace.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}

// ParsePort validates a port in [1, 65535] and returns its canonical form.
func ParsePort(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", apperrors.Validation("port %q is not an integer", raw)
	}
	if n < 1 || n > 65535 {
		return "", apperrors.Validation("port %d is out of range 1-65535", n)
	}
	return strconv.Itoa(n), nil
}

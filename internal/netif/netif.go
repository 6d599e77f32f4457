// Package netif enumerates the host's network interfaces.
package netif

import (
	"context"
	"sort"
)

// Lister returns the names of the interfaces that currently exist.
type Lister interface {
	Interfaces(ctx context.Context) ([]string, error)
}

// System lists interfaces of the running host.
type System struct{}

// NewSystem returns the host lister.
func NewSystem() *System { return &System{} }

// Interfaces implements Lister.
func (System) Interfaces(ctx context.Context) ([]string, error) {
	names, err := listNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Static is a fixed interface list.
type Static []string

// Interfaces implements Lister.
func (s Static) Interfaces(context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

package ledger

import (
	"encoding/base64"
	"fmt"
)

// Separator is the token the relay requires between listener chains.
const Separator = "--"

// ListenerSpec is the launch-time form of one record.
type ListenerSpec struct {
	Port      string
	Auth      string
	Interface string
}

// Args renders the spec as relay arguments.
func (s ListenerSpec) Args() []string {
	return []string{
		"-L", fmt.Sprintf(":%s?auth=%s", s.Port, s.Auth),
		"-F", fmt.Sprintf("direct://:0?interface=%s", s.Interface),
	}
}

// Spec derives the listener spec for r.
func (r Record) Spec() ListenerSpec {
	return ListenerSpec{
		Port:      r.Port,
		Auth:      base64.StdEncoding.EncodeToString([]byte(r.Username + ":" + r.Password)),
		Interface: r.Interface,
	}
}

// ToCommandFragments returns one spec per record, in ledger order.
func (l *Ledger) ToCommandFragments() ([]ListenerSpec, error) {
	records, err := l.load()
	if err != nil {
		return nil, err
	}
	specs := make([]ListenerSpec, len(records))
	for i, r := range records {
		specs[i] = r.Spec()
	}
	return specs, nil
}

// JoinArgs flattens specs into one argument list with exactly one Separator
// between consecutive specs.
func JoinArgs(specs []ListenerSpec) []string {
	var args []string
	for i, s := range specs {
		if i > 0 {
			args = append(args, Separator)
		}
		args = append(args, s.Args()...)
	}
	return args
}

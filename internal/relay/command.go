// Package relay assembles the gost command line from the listener ledger and
// manages the detached relay process.
package relay

import (
	"strings"

	"frameworks/api_tunnels/internal/ledger"
)

// Command is a relay invocation.
type Command struct {
	Bin  string
	Args []string
}

// NewCommand builds the invocation for specs, in ledger order.
func NewCommand(bin string, specs []ledger.ListenerSpec) Command {
	return Command{Bin: bin, Args: ledger.JoinArgs(specs)}
}

// Empty reports whether the command has no listeners.
func (c Command) Empty() bool { return len(c.Args) == 0 }

// Listeners returns the number of listener chains in the command.
func (c Command) Listeners() int {
	n := 0
	for _, a := range c.Args {
		if a == "-L" {
			n++
		}
	}
	return n
}

// String renders the command for display. Arguments contain no spaces, so
// no quoting is applied.
func (c Command) String() string {
	if c.Empty() {
		return c.Bin
	}
	return c.Bin + " " + strings.Join(c.Args, " ")
}

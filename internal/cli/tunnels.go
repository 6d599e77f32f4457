package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"frameworks/api_tunnels/internal/wireguard"
)

func newTunnelsCmd(s *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tunnels",
		Aliases: []string{"tunnel", "wg"},
		Short:   "WireGuard tunnel configs and interfaces",
	}

	cmd.AddCommand(newTunnelsListCmd(s))
	cmd.AddCommand(newTunnelsActiveCmd(s))
	cmd.AddCommand(newTunnelsShowCmd(s))
	cmd.AddCommand(newTunnelsAddCmd(s))
	cmd.AddCommand(newTunnelsEditCmd(s))
	cmd.AddCommand(newTunnelsUpCmd(s))
	cmd.AddCommand(newTunnelsDownCmd(s))
	cmd.AddCommand(newTunnelsRemoveCmd(s))

	return cmd
}

func printNames(p printer, names []string) error {
	return p.print(names, func(w io.Writer) {
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
	})
}

func newTunnelsListCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured tunnel interfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			names, err := c.Store.List()
			if err != nil {
				return err
			}
			return printNames(s.printer(cmd), names)
		},
	}
}

func newTunnelsActiveCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "List tunnel interfaces that are currently up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			names, err := c.Status.ActiveInterfaces(commandContext(cmd))
			if err != nil {
				return err
			}
			return printNames(s.printer(cmd), names)
		},
	}
}

type tunnelView struct {
	Interface string           `json:"interface" yaml:"interface"`
	Config    string           `json:"config" yaml:"config"`
	Summary   wireguard.Config `json:"summary" yaml:"summary"`
}

func newTunnelsShowCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <interface>",
		Short: "Print a tunnel config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wireguard.ValidateInterfaceName(args[0]); err != nil {
				return err
			}
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			text, err := c.Store.Read(args[0])
			if err != nil {
				return err
			}
			view := tunnelView{Interface: args[0], Config: text, Summary: wireguard.Summarize(text)}
			return s.printer(cmd).print(view, func(w io.Writer) {
				fmt.Fprint(w, text)
			})
		},
	}
}

func newTunnelsAddCmd(s *rootState) *cobra.Command {
	var up bool

	cmd := &cobra.Command{
		Use:   "add [file|-]",
		Short: "Store a new tunnel config under the next free wgN name",
		Long: `Store a new tunnel config. DNS lines are stripped and "Table=off" is
added to the Interface section before the file is written.

The config is read from the named file, or from stdin when the argument is
missing or "-".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readConfigArg(cmd, args)
			if err != nil {
				return err
			}
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			iface, body, err := c.Store.Add(ctx, text)
			if err != nil {
				return err
			}
			p := s.printer(cmd)
			if !up {
				return p.status("success", fmt.Sprintf("created %s", iface), tunnelView{Interface: iface, Config: body, Summary: wireguard.Summarize(body)})
			}
			outcome, err := c.Reconciler.BringUp(ctx, iface)
			if err != nil {
				return fmt.Errorf("created %s but bring-up failed: %w", iface, err)
			}
			return printOutcome(p, fmt.Sprintf("created %s and brought it up", iface), iface, outcome)
		},
	}

	cmd.Flags().BoolVar(&up, "up", false, "bring the interface up after storing it")

	return cmd
}

func newTunnelsEditCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <interface> [file|-]",
		Short: "Replace a tunnel config and restart the interface",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			iface := args[0]
			if err := wireguard.ValidateInterfaceName(iface); err != nil {
				return err
			}
			text, err := readConfigArg(cmd, args[1:])
			if err != nil {
				return err
			}
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			_, outcome, err := c.Reconciler.ReplaceConfig(commandContext(cmd), iface, text)
			if err != nil {
				return err
			}
			return printOutcome(s.printer(cmd), fmt.Sprintf("%s updated and restarted", iface), iface, outcome)
		},
	}
}

func newTunnelsUpCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "up <interface>",
		Short: "Bring a tunnel interface up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			outcome, err := c.Reconciler.BringUp(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printOutcome(s.printer(cmd), fmt.Sprintf("%s is up", args[0]), args[0], outcome)
		},
	}
}

func newTunnelsDownCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "down <interface>",
		Short: "Bring a tunnel interface down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			outcome, err := c.Reconciler.BringDown(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printOutcome(s.printer(cmd), fmt.Sprintf("%s is down", args[0]), args[0], outcome)
		},
	}
}

func newTunnelsRemoveCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <interface>",
		Aliases: []string{"remove"},
		Short:   "Delete a tunnel config and move its listeners to loopback",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			n, err := c.Reconciler.RemoveInterface(args[0])
			if err != nil {
				return err
			}
			message := fmt.Sprintf("removed %s", args[0])
			if n > 0 {
				message = fmt.Sprintf("removed %s, %d listener(s) moved to %s", args[0], n, c.Reconciler.Loopback())
			}
			return s.printer(cmd).status("success", message, map[string]interface{}{
				"interface":            args[0],
				"redirected_listeners": n,
			})
		},
	}
}

type outcomeView struct {
	Interface string `json:"interface" yaml:"interface"`
	Code      int    `json:"error_code" yaml:"error_code"`
	Stdout    string `json:"stdout,omitempty" yaml:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}

// printOutcome reports a success or warning outcome. Error outcomes never
// reach here; the reconciler turns them into errors.
func printOutcome(p printer, message, iface string, o wireguard.Outcome) error {
	status := string(o.Status)
	if o.Status == wireguard.OutcomeWarning {
		message = fmt.Sprintf("%s: %s", iface, firstNonEmpty(o.Stderr, o.Stdout, "already in requested state"))
	}
	return p.status(status, message, outcomeView{Interface: iface, Code: o.Code, Stdout: o.Stdout, Stderr: o.Stderr})
}

// readConfigArg reads the config text from args[0], or stdin when args is
// empty or "-".
func readConfigArg(cmd *cobra.Command, args []string) (string, error) {
	var (
		b   []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read config: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("config is empty")
	}
	return string(b), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

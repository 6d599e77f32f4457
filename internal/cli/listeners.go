package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"frameworks/api_tunnels/internal/app"
	"frameworks/api_tunnels/internal/apperrors"
	"frameworks/api_tunnels/internal/ledger"
	"frameworks/api_tunnels/internal/relay"
)

func newListenersCmd(s *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "listeners",
		Aliases: []string{"listener", "gost"},
		Short:   "Relay listener ledger",
	}

	cmd.AddCommand(newListenersListCmd(s))
	cmd.AddCommand(newListenersAddCmd(s))
	cmd.AddCommand(newListenersEditCmd(s))
	cmd.AddCommand(newListenersRemoveCmd(s))
	cmd.AddCommand(newListenersCommandCmd(s))
	cmd.AddCommand(newListenersInterfacesCmd(s))

	return cmd
}

func newListenersListCmd(s *rootState) *cobra.Command {
	var showPasswords bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listener records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			records, err := c.Ledger.ListAll()
			if err != nil {
				return err
			}
			return s.printer(cmd).print(records, func(out io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(out, "No listeners configured.")
					return
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tUSERNAME\tPASSWORD\tPORT\tINTERFACE")
				for _, r := range records {
					password := "********"
					if showPasswords {
						password = r.Password
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Username, password, r.Port, r.Interface)
				}
				w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&showPasswords, "show-passwords", false, "print passwords in text output")

	return cmd
}

type listenerFlags struct {
	username string
	password string
	port     string
	iface    string
}

func (f *listenerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "listener username")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "listener password (prompted when omitted on a terminal)")
	cmd.Flags().StringVar(&f.port, "port", "", "listen port (1-65535)")
	cmd.Flags().StringVarP(&f.iface, "interface", "i", "", "egress network interface")
}

func (f *listenerFlags) input() ledger.Input {
	return ledger.Input{Username: f.username, Password: f.password, Port: f.port, Interface: f.iface}
}

func newListenersAddCmd(s *rootState) *cobra.Command {
	var f listenerFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a listener",
		Long: `Add a listener to the ledger. The port must be free in the ledger and the
interface must exist on this host.

Examples:
  bosunctl listeners add -u alice --port 1080 -i wg1       # prompt for password
  bosunctl listeners add -u bob -p secret --port 1081 -i eth0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.password == "" {
				pw, err := promptPassword(cmd)
				if err != nil {
					return err
				}
				f.password = pw
			}
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			rec, err := c.Ledger.AddItem(commandContext(cmd), f.input())
			if err != nil {
				return err
			}
			return s.printer(cmd).status("success", fmt.Sprintf("listener %d added on port %s via %s", rec.ID, rec.Port, rec.Interface), rec)
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("interface")

	return cmd
}

func newListenersEditCmd(s *rootState) *cobra.Command {
	var f listenerFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a listener",
		Long: `Change fields of a listener. Flags that are not given keep their current
value. The new port and interface are stored as given without further checks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			current, err := findRecord(c, id)
			if err != nil {
				return err
			}
			in := ledger.Input{Username: current.Username, Password: current.Password, Port: current.Port, Interface: current.Interface}
			if cmd.Flags().Changed("username") {
				in.Username = f.username
			}
			if cmd.Flags().Changed("password") {
				in.Password = f.password
			}
			if cmd.Flags().Changed("port") {
				in.Port = f.port
			}
			if cmd.Flags().Changed("interface") {
				in.Interface = f.iface
			}
			rec, err := c.Ledger.EditItem(id, in)
			if err != nil {
				return err
			}
			return s.printer(cmd).status("success", fmt.Sprintf("listener %d updated", rec.ID), rec)
		},
	}

	f.register(cmd)

	return cmd
}

func newListenersRemoveCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a listener and renumber the rest",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			if err := c.Ledger.RemoveItemByID(id); err != nil {
				return err
			}
			return s.printer(cmd).status("success", fmt.Sprintf("listener %d removed", id), map[string]int{"id": id})
		},
	}
}

func newListenersCommandCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "command",
		Short: "Print the relay command line built from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			rc, err := relayCommand(c)
			if err != nil {
				return err
			}
			line := rc.String()
			return s.printer(cmd).print(map[string]string{"command": line}, func(w io.Writer) {
				fmt.Fprintln(w, line)
			})
		},
	}
}

func newListenersInterfacesCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "interfaces",
		Short: "List network interfaces a listener can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			names, err := c.Interfaces.Interfaces(commandContext(cmd))
			if err != nil {
				return err
			}
			return printNames(s.printer(cmd), names)
		},
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, apperrors.Validation("listener id %q is not a positive integer", raw)
	}
	return id, nil
}

func findRecord(c *app.Components, id int) (ledger.Record, error) {
	records, err := c.Ledger.ListAll()
	if err != nil {
		return ledger.Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return ledger.Record{}, apperrors.NotFound("listener %d not found", id)
}

// relayCommand builds the relay command line. An empty ledger gives the bare
// binary; the launcher refuses to start that.
func relayCommand(c *app.Components) (relay.Command, error) {
	specs, err := c.Ledger.ToCommandFragments()
	if err != nil {
		return relay.Command{}, err
	}
	return relay.NewCommand(c.Config.RelayBin, specs), nil
}

// promptPassword reads a password with echo disabled when stdin is a
// terminal, and a single line otherwise.
func promptPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", apperrors.Validation("no password provided")
	}
	return line, nil
}

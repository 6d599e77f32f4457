package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRelayCmd(s *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Start, inspect and stop the relay process",
	}

	cmd.AddCommand(newRelayStartCmd(s))
	cmd.AddCommand(newRelayStatusCmd(s))
	cmd.AddCommand(newRelayStopCmd(s))

	return cmd
}

func newRelayStartCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the relay in a detached session with every ledger listener",
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
			res, err := c.Launcher.Start(commandContext(cmd), rc)
			if err != nil {
				return err
			}
			p := s.printer(cmd)
			if res.AlreadyRunning {
				return p.status("warning", "relay is already running", nil)
			}
			return p.status("success", fmt.Sprintf("relay started with %d listener(s)", rc.Listeners()), map[string]string{"command": rc.String()})
		},
	}
}

func newRelayStatusCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the relay is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			running, err := c.Launcher.IsRunning(commandContext(cmd))
			if err != nil {
				return err
			}
			p := s.printer(cmd)
			data := map[string]bool{"running": running}
			if !running {
				return p.status("warning", "relay is not running", data)
			}
			return p.status("success", "relay is running", data)
		},
	}
}

func newRelayStopCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop every running relay process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.components(cmd)
			if err != nil {
				return err
			}
			n, err := c.Launcher.StopAll(commandContext(cmd))
			if err != nil {
				return err
			}
			message := fmt.Sprintf("stopped %d relay process(es)", n)
			if n == 0 {
				message = "relay was not running"
			}
			return s.printer(cmd).status("success", message, map[string]int{"stopped": n})
		},
	}
}

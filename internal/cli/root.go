// Package cli is the bosunctl command tree. It drives the same tunnel store,
// listener ledger and relay launcher as the bosun service, directly on the
// local host.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"frameworks/api_tunnels/internal/app"
	"frameworks/api_tunnels/pkg/logging"
)

type rootState struct {
	cfgFile    string
	output     string
	verbose    bool
	noColor    bool
	wgDir      string
	ledgerPath string

	opts  app.Options
	comps *app.Components
}

// NewRootCmd returns the root command for bosunctl. opts is passed to
// app.Build; the zero value uses the real host tools.
func NewRootCmd(opts app.Options) *cobra.Command {
	s := &rootState{opts: opts}

	rootCmd := &cobra.Command{
		Use:           "bosunctl",
		Short:         "Manage WireGuard tunnels and relay listeners on this host",
		Long:          "bosunctl manages WireGuard tunnel configs, the relay listener ledger and the relay process without going through the bosun HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutput(s.output); err != nil {
				return err
			}
			if s.noColor || !isTerminal(cmd.OutOrStdout()) {
				color.NoColor = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.cfgFile, "config", "", "config file (default is $HOME/.bosun/config.yaml)")
	flags.StringVarP(&s.output, "output", "o", OutputText, "output format: text|json|yaml")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "log component activity to stderr")
	flags.BoolVar(&s.noColor, "no-color", false, "disable coloured output")
	flags.StringVar(&s.wgDir, "wireguard-dir", "", "tunnel config directory (overrides config)")
	flags.StringVar(&s.ledgerPath, "ledger", "", "listener ledger file (overrides config)")

	rootCmd.AddCommand(newTunnelsCmd(s))
	rootCmd.AddCommand(newListenersCmd(s))
	rootCmd.AddCommand(newRelayCmd(s))
	rootCmd.AddCommand(newVersionCmd(s))

	return rootCmd
}

func (s *rootState) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: s.output}
}

// components builds the object graph on first use, so commands that never
// touch the host (version, help) never load the config.
func (s *rootState) components(cmd *cobra.Command) (*app.Components, error) {
	if s.comps != nil {
		return s.comps, nil
	}

	path, explicit := s.cfgFile, s.cfgFile != ""
	if !explicit {
		if p, err := DefaultConfigPath(); err == nil {
			path = p
		}
	}
	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return nil, err
	}
	if s.wgDir != "" {
		cfg.WireGuardDir = s.wgDir
	}
	if s.ledgerPath != "" {
		cfg.LedgerPath = s.ledgerPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewDiscardLogger()
	if s.verbose {
		logger = logging.NewLogger()
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetLevel(logging.DebugLevel)
	}

	s.comps = app.Build(cfg, logger, s.opts)
	return s.comps, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

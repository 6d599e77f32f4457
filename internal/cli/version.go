package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"frameworks/api_tunnels/pkg/version"
)

func newVersionCmd(s *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print bosunctl version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			info.ComponentName = "bosunctl"
			return s.printer(cmd).print(info, func(w io.Writer) {
				fmt.Fprintln(w, info.String())
				fmt.Fprintf(w, " - component version: %s\n", info.ComponentVersion)
				fmt.Fprintf(w, " - built: %s\n", info.BuildDate)
			})
		},
	}
}

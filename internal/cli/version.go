package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is reported by the version command. The binary sets it from its
// ldflags-injected version.
var Version = "dev"

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			info := VersionInfo{Version: Version, Go: runtime.Version()}
			if formatter.Format == "json" {
				return formatter.Success(info)
			}
			fmt.Fprintf(formatter.Writer, "tikrana %s (%s)\n", info.Version, info.Go)
			return nil
		},
	}
}

// Command tikrana converts purchase-order workbooks into ERP import archives.
package main

import (
	"fmt"
	"os"

	"github.com/plenix/tikrana/internal/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cli.Version = version

	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures on stdout; stderr carries the
		// one-line reason for scripts.
		fmt.Fprintf(os.Stderr, "tikrana: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

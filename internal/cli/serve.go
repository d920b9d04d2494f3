package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/engine"
	"github.com/plenix/tikrana/internal/failure"
	"github.com/plenix/tikrana/internal/server"
)

// DefaultAddr is the listen address of the serve command.
const DefaultAddr = ":8080"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr      string
	MaxUpload int64
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the processing API over HTTP",
		Long: `Serve the processing API over HTTP until interrupted.

The configuration is read again for every request, so edits to the
configuration file take effect without a restart.

Routes:
  GET  /healthz
  GET  /api/app
  GET  /api/sources
  POST /api/sources/{name}/process   (multipart: file plus header fields)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&opts.MaxUpload, "max-upload", server.DefaultMaxUpload, "largest accepted upload in bytes")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()

	// Refuse to start on a broken configuration.
	if _, err := opts.loadApp(cmd.Context()); err != nil {
		return outputFailure(formatter, ExitCommandError, failure.Wrap(err, "Failed to load configuration"))
	}

	srv := server.New(
		func(ctx context.Context) (*config.AppConfig, error) { return opts.loadApp(ctx) },
		server.WithLogger(logger),
		server.WithEngine(engine.New(engine.WithLogger(logger))),
		server.WithMaxUpload(opts.MaxUpload),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := opts.stringSetting(cmd, "addr")
	formatter.VerboseLog("Listening on %s", addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "server stopped", err)
	}
	return nil
}

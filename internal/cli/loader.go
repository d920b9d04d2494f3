package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/plenix/tikrana/internal/config"
	"github.com/plenix/tikrana/internal/failure"
)

// Error codes for command-level failures. Processing failures use their
// failure category as the code instead.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Configuration could not be loaded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeSource      = "E006" // Unknown source name
	ErrCodeWriteFailed = "E007" // File write error
)

// loadApp resolves the application configuration named by --config.
func (o *RootOptions) loadApp(ctx context.Context) (*config.AppConfig, error) {
	cfg, err := config.Resolve(ctx, o.httpClient(), o.Config)
	if err != nil {
		return nil, err
	}
	o.Logger().Debug("configuration loaded", "location", o.Config, "sources", len(cfg.Sources))
	return cfg, nil
}

// loadSource resolves the configuration and looks up one of its sources.
// Failures are reported through formatter and returned as exit errors.
func (o *RootOptions) loadSource(cmd *cobra.Command, formatter *OutputFormatter, name string) (*config.AppConfig, *config.SourceConfig, error) {
	cfg, err := o.loadApp(cmd.Context())
	if err != nil {
		return nil, nil, outputFailure(formatter, ExitCommandError, failure.Wrap(err, "Failed to load configuration"))
	}
	source, ok := cfg.Source(name)
	if !ok {
		msg := fmt.Sprintf("unknown source %q (available: %v)", name, cfg.SourceNames())
		_ = formatter.Error(ErrCodeSource, msg, nil)
		return nil, nil, NewExitError(ExitCommandError, msg)
	}
	return cfg, source, nil
}

// readWorkbook reads the workbook argument of a command.
func readWorkbook(formatter *OutputFormatter, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("cannot read workbook %s: %v", path, err)
		code := ErrCodeGeneric
		if os.IsNotExist(err) {
			code = ErrCodeNotFound
			msg = fmt.Sprintf("workbook not found: %s", path)
		}
		_ = formatter.Error(code, msg, nil)
		return nil, NewExitError(ExitCommandError, msg)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(data), filepath.Base(path))
	return data, nil
}

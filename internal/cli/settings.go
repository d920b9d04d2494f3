package cli

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment settings: TIKRANA_CONFIG, TIKRANA_ADDR...
const envPrefix = "TIKRANA"

// defaultFetchTimeout bounds remote configuration downloads.
const defaultFetchTimeout = 30 * time.Second

// initialize loads .env and the settings layers, then resolves the global
// options and the logger. Flags beat environment variables, which beat the
// settings file.
func (o *RootOptions) initialize(cmd *cobra.Command) error {
	// Variables already present in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return WrapExitError(ExitCommandError, "failed to read .env", err)
	}

	v, err := loadSettings(cmd, o.Settings)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read settings", err)
	}
	o.settings = v
	o.Format = v.GetString("format")
	o.Verbose = v.GetBool("verbose")
	o.Config = v.GetString("config")

	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	if used := v.ConfigFileUsed(); used != "" {
		o.logger.Debug("settings loaded", "file", used)
	}
	return nil
}

func loadSettings(cmd *cobra.Command, file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("fetch-timeout", defaultFetchTimeout)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".tikrana")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "tikrana"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

// stringSetting returns the layered value of key, falling back to the flag
// of the same name when the command runs without the root command.
func (o *RootOptions) stringSetting(cmd *cobra.Command, key string) string {
	if o.settings != nil {
		return o.settings.GetString(key)
	}
	s, _ := cmd.Flags().GetString(key)
	return s
}

// httpClient returns the client used for remote configuration.
func (o *RootOptions) httpClient() *http.Client {
	timeout := defaultFetchTimeout
	if o.settings != nil {
		timeout = o.settings.GetDuration("fetch-timeout")
	}
	return &http.Client{Timeout: timeout}
}

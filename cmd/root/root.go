// Package root contains the root command for the application
package root

import (
	"errors"
	"fmt"
	"sync"

	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrNoContainer is returned by GetContainer before the root command ran.
var ErrNoContainer = errors.New("application container not initialized")

// GlobalFlags holds the persistent flags shared by every command. They
// override the configuration file and the environment.
type GlobalFlags struct {
	ConfigFile string
	DataDir    string
	LogLevel   string
	LogFormat  string
	AIEnabled  bool
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// AppContainer is the dependency container built before any subcommand
	// runs. Tests may set it directly.
	AppContainer *container.Container

	// Flags holds the parsed persistent flags.
	Flags = GlobalFlags{}

	initOnce sync.Once

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget-csv",
		Short: "Import bank CSV exports into a categorized household ledger.",
		Long: `budget-csv imports bank account exports of unknown layout (any encoding,
delimiter or column naming) into a single categorized ledger, learns the
categories you correct, and keeps per-account configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if AppContainer != nil {
				return nil
			}
			c, err := buildContainer(cmd.Flags())
			if err != nil {
				return err
			}
			AppContainer = c
			Log = c.GetLogger()
			logging.SetDefault(Log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer == nil {
				return
			}
			if err := AppContainer.Close(); err != nil {
				Log.WithError(err).Warn("Failed to close container")
			}
		},
	}
)

// Init registers the persistent flags. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		pf := Cmd.PersistentFlags()
		pf.StringVarP(&Flags.ConfigFile, "config", "c", "", "Configuration file (default: config.yaml in $HOME/.budget-csv, .budget-csv or .)")
		pf.StringVarP(&Flags.DataDir, "data-dir", "d", "", "Directory holding the ledger and the other data files")
		pf.StringVar(&Flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
		pf.StringVar(&Flags.LogFormat, "log-format", "", "Log format (text or json)")
		pf.BoolVar(&Flags.AIEnabled, "ai-enabled", false, "Use the Gemini model when no rule matches")
	})
}

// GetContainer returns the application container.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, ErrNoContainer
	}
	return AppContainer, nil
}

// GetLogger returns the logger of the running command.
func GetLogger() logging.Logger {
	return Log
}

func buildContainer(flags *pflag.FlagSet) (*container.Container, error) {
	cfg, err := config.InitializeConfigFromFile(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := ApplyFlagOverrides(flags, cfg); err != nil {
		return nil, err
	}
	return container.NewContainer(cfg)
}

// ApplyFlagOverrides copies the persistent flags the user set into cfg and
// validates the result.
func ApplyFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("data-dir") {
		cfg.Data.Directory = Flags.DataDir
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = Flags.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = Flags.LogFormat
	}
	if flags.Changed("ai-enabled") {
		cfg.AI.Enabled = Flags.AIEnabled
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Package cli provides the xsim command line.
package cli

import (
	"fmt"
	"log/slog"

	"xsim/internal/api"
	"xsim/internal/config"
	"xsim/internal/history"
	xlog "xsim/internal/log"
	"xsim/internal/prefs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	prefsPath  string
	dataDir    string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "xsim",
		Short: "X-ray baggage screening trainer",
		Long: `xsim trains security screeners on simulated dual-view X-ray images.

Bags cross a belt on the top and side views. Pause the belt, click the
threat, pick its category and confirm. Sessions are scored and submitted
to the training service.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ./.xsim.yaml or $XDG_CONFIG_HOME/xsim/config.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.prefsPath, "prefs", prefs.DefaultPath(), "preferences file")
	pf.StringVar(&opts.dataDir, "data-dir", history.DefaultDir(), "directory for the session history database")

	cmd.AddCommand(
		newTrainCmd(opts),
		newComposeCmd(opts),
		newFilterCmd(),
		newSummaryCmd(opts),
		newLoginCmd(opts),
	)
	return cmd
}

// setup loads the configuration and installs the process logger.
func (o *globalOptions) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	level, err := xlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger := xlog.New(cmd.ErrOrStderr(), level)
	xlog.SetLogger(logger)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func (o *globalOptions) prefs() *prefs.Prefs {
	return prefs.LoadFrom(o.prefsPath)
}

// client returns an API client carrying the cached token.
func (o *globalOptions) client(cfg *config.Config, p *prefs.Prefs, logger *slog.Logger) *api.Client {
	return api.New(cfg.APIURL, api.WithToken(p.Token()), api.WithLogger(logger))
}

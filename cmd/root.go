package cmd

import (
	"fmt"
	"os"

	"github.com/dayuer/chatpacer/internal/config"
	"github.com/dayuer/chatpacer/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time.
var Version = "dev"

var (
	configPath string
	envFile    string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "chatpacer",
	Short: "Channel history exporter and human-paced auto-responder",
	Long: `chatpacer talks to the Discord REST API with a user token.

It can export a channel's history to json, html, txt or csv, and it can
watch a channel and answer messages from a rule table at a human pace.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg.ApplyEnv()

		logCfg := logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development}
		if verbose {
			logCfg.Level = "debug"
		}
		base, err := logging.New(logCfg)
		if err != nil {
			return err
		}
		logger, _ = logging.WithRun(base, cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.chatpacer/config.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"coldcall-sim/backend/internal/config"
	"coldcall-sim/backend/internal/features/config/domain"
)

var (
	// cfgFile is the path to the app config file.
	cfgFile string
	// logLevel overrides the configured log level when set.
	logLevel string

	logger          = logrus.New()
	fs     afero.Fs = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coldcall",
	Short: "Practice real-estate cold calls against a simulated home-owner.",
	Long: `coldcall simulates a home-owner persona backed by a language model. Agents practise
their pitch over HTTP (serve) or in the terminal (chat), then get the call scored (analyze).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "app config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error); overrides the config file")

	rootCmd.AddCommand(serveCmd, chatCmd, analyzeCmd)
}

// loadConfig loads .env and the app config, then applies the log level.
func loadConfig() (config.AppConfigService, *domain.AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	svc := config.NewAppConfigService(fs, cfgFile, logger)
	cfg, err := svc.LoadAppConfig()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)
	return svc, cfg, nil
}

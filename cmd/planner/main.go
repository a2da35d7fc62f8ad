package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	version  = "dev"
	settings config.Settings
	rootCmd  = &cobra.Command{
		Use:   "planner",
		Short: "Household cash-flow and net-asset projections",
		Long: `planner projects a household's yearly cash flows, balances and net assets
from the current year through the end of life expectancy.

It also amortizes debts, schedules pensions and solves gross salary from net pay.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	config.SetDefaults(viper.GetViper())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/planner/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(amortizeCmd())
	rootCmd.AddCommand(pensionCmd())
	rootCmd.AddCommand(grossCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(exampleCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/planner", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return loadSettings()
}

func loadSettings() error {
	s, err := config.SettingsFrom(viper.GetViper())
	if err != nil {
		return err
	}
	if err := logger.Init(s.LogLevel, s.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	settings = s
	logger.Get().Debugw("configuration loaded", "file", viper.ConfigFileUsed())
	return nil
}

// newEngine builds an engine from the loaded settings.
func newEngine() *calculation.ProjectionEngine {
	ce := calculation.NewProjectionEngine()
	ce.Solver = settings.Solver
	ce.SetLogger(logger.Get())
	return ce
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "planner %s\n", version)
		},
	}
}

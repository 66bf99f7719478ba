package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/hsn/internal/cli"
	"github.com/aretw0/hsn/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hsn",
	Short: "HSN is a tariff code validation assistant",
	Long: `HSN validates Harmonized System of Nomenclature codes against a master
data file and serves the check as a CLI, an HTTP API, an MCP tool or a chat.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("data", "", "Master data file (overrides data.file)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (overrides log.format)")
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("data"); v != "" {
		cfg.Data.File = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, nil
}

// openApp loads configuration and builds the application. The caller must Close it.
func openApp(ctx context.Context, cmd *cobra.Command, mutate func(*config.Config)) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return cli.Build(ctx, cfg, logger)
}

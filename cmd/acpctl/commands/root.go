// Package commands implements the acpctl CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/northboundnetworks/acpgo/internal/acp/capability"
	"github.com/northboundnetworks/acpgo/internal/config"
	"github.com/northboundnetworks/acpgo/internal/metrics"
)

var (
	// outputFormat controls the output format for all commands (table or json).
	outputFormat string

	// keystoreDir overrides config.KeyStore.Dir when non-empty.
	keystoreDir string

	// configPath is the path to an optional YAML configuration file.
	configPath string

	// cfg is the loaded configuration, populated in PersistentPreRunE.
	cfg *config.Config

	// logger is the structured logger, populated in PersistentPreRunE.
	logger *slog.Logger

	// keys is the active KeyStore capability, populated in PersistentPreRunE.
	keys capability.KeyStore

	// metricsReg backs both the serve-metrics endpoint and the counters
	// encode/decode increment directly, so a single process's CLI
	// invocations and its metrics server always agree on the numbers.
	metricsReg *prometheus.Registry

	// collector is the shared Prometheus collector every command
	// increments through; populated in PersistentPreRunE.
	collector *metrics.Collector
)

// rootCmd is the top-level cobra command for acpctl.
var rootCmd = &cobra.Command{
	Use:   "acpctl",
	Short: "CLI for encoding, decoding, and inspecting ACP frames",
	Long:  "acpctl encodes and decodes ACP frames and manages session keys, operating directly against the local codec -- no daemon required.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		if keystoreDir != "" {
			cfg.KeyStore.Dir = keystoreDir
		}

		opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Log.Level)}
		var handler slog.Handler = slog.NewJSONHandler(os.Stderr, opts)
		if cfg.Log.Format == "text" {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		logger = slog.New(handler)

		if cfg.KeyStore.Dir == "" {
			keys = capability.NewMemoryKeyStore()
		} else {
			fks, err := capability.NewFileKeyStore(cfg.KeyStore.Dir)
			if err != nil {
				return fmt.Errorf("open file keystore: %w", err)
			}
			keys = fks
		}

		// Built once per process: the shell re-runs this hook for every
		// line, and a fresh registry would discard earlier counts.
		if metricsReg == nil {
			metricsReg = prometheus.NewRegistry()
			collector = metrics.NewCollector(metricsReg)
		}

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "output format: table, json")
	rootCmd.PersistentFlags().StringVar(&keystoreDir, "keystore-dir", "", "directory backing a file keystore (default: in-memory)")

	rootCmd.AddCommand(encodeCmd())
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(keygenCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(serveMetricsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(shellCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

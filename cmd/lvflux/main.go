// SPDX-License-Identifier: MIT

// Command lvflux drives media application, flux balance and variability
// analysis, production envelopes, phase detection and dropout validation
// from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/config"
	"github.com/katalvlaran/lvflux/solver"
)

var (
	// Global flags
	configPath   string
	modelPath    string
	profilesPath string
	metricsAddr  string
	verbose      bool

	cfg           *config.Config
	logger        *zap.Logger
	metrics       *solver.Metrics
	metricsServer *http.Server
)

var rootCmd = &cobra.Command{
	Use:   "lvflux",
	Short: "Constraint-based metabolic analysis",
	Long: `lvflux applies named media to a stoichiometric model and runs flux balance,
flux variability, production envelope, phase and dropout-validation analyses.

Models are YAML documents (see "lvflux apply --help" for writing one back out).
Results of envelope, phase and validation runs can be stored in a local SQLite
database and listed with "lvflux runs".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if modelPath != "" {
			cfg.Model = modelPath
		}
		if profilesPath != "" {
			cfg.Profiles = profilesPath
		}
		if metricsAddr != "" {
			cfg.Metrics.Addr = metricsAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = config.NewLogger(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cfg.Metrics.Addr != "" {
			startMetrics(cfg.Metrics.Addr)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = metricsServer.Shutdown(ctx)
			cancel()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// startMetrics registers the solver collectors and serves /metrics.
func startMetrics(addr string) {
	metrics = solver.NewMetrics(prometheus.DefaultRegisterer)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lvflux.yaml", "Configuration file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVarP(&modelPath, "model", "m", "", "Model YAML document (overrides config)")
	rootCmd.PersistentFlags().StringVar(&profilesPath, "profiles", "", "Media profile YAML document (default: built-in profiles)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	registerCommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

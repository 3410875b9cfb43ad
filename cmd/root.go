package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/slabmove/slabmove/balancer"
	"github.com/slabmove/slabmove/balancer/memcache"
)

var (
	// CLI flags for the control loop
	host        string  // memcached host:port to balance
	interval    float64 // seconds between poll ticks
	verbose     bool    // per-tick diagnostic output
	automove    bool    // actually transmit reassign commands
	window      int     // rolling history length / warm-up ticks
	ratio       float64 // max youngest/oldest smoothed-age ratio
	logLevel    string  // log verbosity level
	policyFile  string  // optional YAML policy override
	metricsAddr string  // optional Prometheus listen address
	dialTimeout float64 // connection establishment timeout in seconds
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "slabmove",
	Short: "Slab page rebalancing daemon for memcached",
}

// runCmd runs the rebalancing loop using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rebalancing loop against a memcached server",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		if verbose && level < logrus.DebugLevel {
			level = logrus.DebugLevel
		}
		logrus.SetLevel(level)

		policy := balancer.DefaultPolicy()
		if policyFile != "" {
			policy, err = balancer.LoadPolicy(policyFile)
			if err != nil {
				logrus.Fatalf("Invalid policy file: %v", err)
			}
		}
		// Flags win over the policy file only when set explicitly.
		if cmd.Flags().Changed("window") || policyFile == "" {
			policy.Window = window
		}
		if cmd.Flags().Changed("ratio") || policyFile == "" {
			policy.Ratio = ratio
		}
		if err := policy.Validate(); err != nil {
			logrus.Fatalf("Invalid policy: %v", err)
		}

		metrics := balancer.NewMetrics()
		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			go func() {
				if err := http.ListenAndServe(metricsAddr, mux); err != nil {
					logrus.Errorf("metrics listener failed: %v", err)
				}
			}()
		}

		dial := func() (balancer.StatsClient, error) {
			return memcache.Dial(host, time.Duration(dialTimeout*float64(time.Second)))
		}
		session := balancer.NewSession(balancer.SessionConfig{
			Interval: time.Duration(interval * float64(time.Second)),
			Automove: automove,
			Policy:   policy,
		}, dial, metrics)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logrus.Infof("Starting rebalancer against %s (interval=%gs, window=%d, ratio=%g, automove=%v)",
			host, interval, policy.Window, policy.Ratio, automove)
		session.Run(ctx)
		logrus.Info("Shutdown complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&host, "host", "localhost:11211", "memcached host:port to balance")
	runCmd.Flags().Float64Var(&interval, "interval", 1.0, "Seconds between poll ticks")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-tick diagnostics (implies --log debug)")
	runCmd.Flags().BoolVar(&automove, "automove", false, "Transmit page reassignments instead of only logging them")
	runCmd.Flags().IntVar(&window, "window", 30, "Rolling history length in ticks (also the warm-up period)")
	runCmd.Flags().Float64Var(&ratio, "ratio", 0.8, "Max youngest/oldest smoothed-age ratio before a move is proposed")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&policyFile, "policy-config", "", "YAML file overriding engine policy constants")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus metrics (disabled when empty)")
	runCmd.Flags().Float64Var(&dialTimeout, "connect-timeout", 5.0, "Connection establishment timeout in seconds")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}

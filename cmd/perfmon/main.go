package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/pflag"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/config"
)

var version = "dev" // Set by -ldflags during build

func main() {
	var (
		showVersion bool
		showHelp    bool
		debug       bool
		configPath  string
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	pflag.StringVarP(&configPath, "config", "c", "perfmon.yaml", "Path to config file")

	// Stop parsing at first non-flag argument (the subcommand)
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	if showVersion {
		fmt.Printf("perfmon version %s\n", version)
		os.Exit(0)
	}

	args := pflag.Args()
	if len(args) == 0 || showHelp {
		printHelp()
		os.Exit(0)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Release: version}); err != nil {
			slog.Warn("sentry init failed", "err", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err)
	}

	subcommand := args[0]
	switch subcommand {
	case "collect":
		err = runCollect(cfg, args[1:])
	case "backfill":
		err = runBackfill(cfg)
	case "dashboard":
		err = runDashboard(cfg)
	case "serve":
		err = runServe(cfg, args[1:])
	case "upload":
		err = runUpload(cfg, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", subcommand)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

// fatal reports err to Sentry when configured and terminates with a nonzero
// exit. Partial progress made before the failure is not rolled back.
func fatal(err error) {
	slog.Error("perfmon failed", "err", err)
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
	os.Exit(1)
}

func printHelp() {
	fmt.Print(`perfmon - web page performance history and dashboard

Usage: perfmon [flags] <subcommand> [args]

Subcommands:
  collect     Parse fresh report artifacts, append them to the history
              ledger, backfill report links and rebuild the dashboard
  backfill    Reconcile ledger entries missing a report link against the
              artifacts on disk
  dashboard   Rebuild the dashboard output tree from the ledger
  serve       Serve the dashboard output tree over HTTP
  upload      Push the dashboard output tree to S3-compatible storage

Flags:
`)
	pflag.PrintDefaults()
}

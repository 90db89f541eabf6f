package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/backfill"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/config"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/dashboard"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/history"
)

var tracer = otel.Tracer("perfmon")

// runCollect is the full pipeline: parse fresh artifacts, append them to the
// ledger, patch missing report links and rebuild the served output tree.
func runCollect(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("collect", pflag.ExitOnError)
	runID := fs.String("run-id", os.Getenv("RUN_ID"), "Identifier of the producing run")
	runNumber := fs.String("run-number", os.Getenv("RUN_NUMBER"), "Numeric run sequence")
	runURL := fs.String("run-url", os.Getenv("RUN_URL"), "Link to the producing run")
	fs.Parse(args)

	run := runContext(*runID, *runNumber, *runURL)
	repo := history.NewFileRepository(cfg.LedgerPath)

	ctx, span := tracer.Start(context.Background(), "collect")
	defer span.End()

	entries, err := history.Collect(cfg.ReportsDir, run)
	if err != nil {
		return err
	}
	slog.Info("collected artifacts", "entries", len(entries), "run_id", run.RunID)

	if len(entries) > 0 {
		if err := repo.Append(entries); err != nil {
			return err
		}
	}

	if _, err := runBackfillPass(ctx, repo, cfg.ReportsDir); err != nil {
		// Backfill is best-effort inside the collect pipeline; the entries
		// are already appended and the next pass will pick the links up.
		slog.Warn("backfill pass failed", "err", err)
	}

	return buildSite(ctx, repo, cfg)
}

// runBackfill is the standalone reconciliation pass. Unlike the collect
// pipeline it is strict: a malformed ledger aborts with a diagnostic and the
// file is left untouched.
func runBackfill(cfg *config.Config) error {
	repo := history.NewFileRepository(cfg.LedgerPath)
	ctx, span := tracer.Start(context.Background(), "backfill")
	defer span.End()

	changed, err := runBackfillPass(ctx, repo, cfg.ReportsDir)
	if err != nil {
		return err
	}
	slog.Info("backfill complete", "linked", changed)
	return nil
}

func runBackfillPass(ctx context.Context, repo history.Repository, reportsDir string) (int, error) {
	_, span := tracer.Start(ctx, "backfill.pass")
	defer span.End()
	return backfill.Run(repo, reportsDir)
}

// runDashboard rebuilds the output tree from the ledger alone.
func runDashboard(cfg *config.Config) error {
	repo := history.NewFileRepository(cfg.LedgerPath)
	ctx, span := tracer.Start(context.Background(), "dashboard")
	defer span.End()
	return buildSite(ctx, repo, cfg)
}

func buildSite(ctx context.Context, repo history.Repository, cfg *config.Config) error {
	_, span := tracer.Start(ctx, "dashboard.build")
	defer span.End()

	entries, err := repo.Load()
	if err != nil {
		return err
	}
	view := dashboard.Build(entries)
	if err := dashboard.WriteSite(cfg.OutputDir, cfg.ReportsDir, view); err != nil {
		return err
	}
	slog.Info("dashboard written", "dir", cfg.OutputDir, "rows", len(view.Rows), "series", len(view.Series))
	return nil
}

// runContext builds the run identity from opaque environment-supplied
// values. Absent or non-numeric values degrade to null, never an error.
func runContext(id, number, url string) history.RunContext {
	rc := history.RunContext{RunID: id}
	if n, err := strconv.Atoi(number); err == nil {
		rc.RunNumber = &n
	}
	if url != "" {
		rc.RunURL = &url
	}
	return rc
}

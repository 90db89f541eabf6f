package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/cleanup"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/config"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/storage"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/utils"
)

// runUpload pushes the built output tree to S3-compatible storage, either
// file by file or as a single zip archive.
func runUpload(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("upload", pflag.ExitOnError)
	prefix := fs.String("prefix", "dashboard/", "Key prefix inside the bucket")
	asZip := fs.Bool("zip", false, "Upload the output tree as one zip archive")
	fs.Parse(args)

	if _, err := os.Stat(cfg.OutputDir); err != nil {
		return fmt.Errorf("output dir %s: %w (run `perfmon dashboard` first)", cfg.OutputDir, err)
	}

	ctx := context.Background()
	svc, err := storage.NewService(ctx)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}

	if *asZip {
		return uploadZip(ctx, svc, cfg.OutputDir, *prefix)
	}

	n, err := svc.UploadDir(ctx, *prefix, cfg.OutputDir)
	if err != nil {
		return err
	}
	slog.Info("upload complete", "files", n, "prefix", *prefix)
	return nil
}

func uploadZip(ctx context.Context, svc *storage.Service, outputDir, prefix string) error {
	stamp := time.Now().UTC().Format("20060102-150405")
	zipPath := filepath.Join(os.TempDir(), cleanup.StagingPrefix+stamp+".zip")
	defer os.Remove(zipPath)

	if err := utils.ZipDirectory(outputDir, zipPath); err != nil {
		return fmt.Errorf("archive output tree: %w", err)
	}

	key := strings.TrimSuffix(prefix, "/") + ".zip"
	if err := svc.UploadFile(ctx, key, zipPath); err != nil {
		return err
	}
	slog.Info("upload complete", "key", key)
	return nil
}

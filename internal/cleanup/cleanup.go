// Package cleanup prunes stale upload staging files left behind in the
// system temp directory when an upload was interrupted.
package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StagingPrefix marks temp files created while staging an upload archive.
const StagingPrefix = "perfmon-upload-"

// Start prunes stale staging files immediately and then every interval.
// It runs until the process exits.
func Start(interval, maxAge time.Duration) {
	slog.Info("cleanup: staging file pruning scheduled", "interval", interval)
	pruneStagingFiles(maxAge)

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			pruneStagingFiles(maxAge)
		}
	}()
}

func pruneStagingFiles(maxAge time.Duration) {
	tmpDir := os.TempDir()
	now := time.Now()

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		slog.Warn("cleanup: cannot read temp dir", "err", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), StagingPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		fullPath := filepath.Join(tmpDir, entry.Name())
		if err := os.Remove(fullPath); err != nil {
			slog.Warn("cleanup: failed to remove staging file", "path", fullPath, "err", err)
		} else {
			slog.Info("cleanup: removed stale staging file", "path", fullPath)
		}
	}
}

// Package backfill reconciles ledger entries that are missing a report link
// against the HTML artifacts currently on disk.
package backfill

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/codec"
	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/history"
)

// IndexEntry links one HTML artifact to the identity of the measurement that
// produced it.
type IndexEntry struct {
	Page      string
	Preset    string
	FetchTime string
	ReportURL string
}

// fetchTimeOnly reads just the fetch time out of a measurement artifact.
type fetchTimeOnly struct {
	FetchTime string `json:"fetchTime"`
}

// BuildIndex scans reportsDir for HTML artifacts and pairs each with its JSON
// counterpart: ".report.html" maps to ".report.json", plain ".html" falls
// back to ".json". Artifacts whose counterpart is missing or unparseable are
// skipped. Index order follows directory-listing order; matching is
// first-wins, so that order is load-bearing.
func BuildIndex(reportsDir string) ([]IndexEntry, error) {
	files, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var index []IndexEntry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".html") {
			continue
		}

		jsonName := counterpart(name)
		data, err := os.ReadFile(filepath.Join(reportsDir, jsonName))
		if err != nil {
			slog.Debug("backfill: no JSON counterpart", "report", name)
			continue
		}
		var ft fetchTimeOnly
		if err := json.Unmarshal(data, &ft); err != nil {
			slog.Debug("backfill: unparseable counterpart", "report", name, "err", err)
			continue
		}

		dec := codec.Decode(name)
		index = append(index, IndexEntry{
			Page:      dec.Page,
			Preset:    dec.Preset,
			FetchTime: ft.FetchTime,
			ReportURL: name,
		})
	}
	return index, nil
}

func counterpart(htmlName string) string {
	if strings.HasSuffix(htmlName, ".report.html") {
		return strings.TrimSuffix(htmlName, ".report.html") + ".report.json"
	}
	return strings.TrimSuffix(htmlName, ".html") + ".json"
}

// Apply sets ReportURL on every entry that lacks one and whose
// (page, preset, fetchTime) triple exactly matches an index entry. The first
// matching index entry wins. Entries whose link is already set are never
// revisited, which makes repeated passes idempotent. The returned count is
// the number of entries changed; callers rewrite the ledger only when it is
// nonzero.
func Apply(entries []history.Entry, index []IndexEntry) int {
	changed := 0
	for i := range entries {
		e := &entries[i]
		if e.ReportURL != nil {
			continue
		}
		if e.Page == "" || e.Preset == "" || e.FetchTime == "" {
			continue
		}
		for _, idx := range index {
			if idx.Page == e.Page && idx.Preset == e.Preset && idx.FetchTime == e.FetchTime {
				url := idx.ReportURL
				e.ReportURL = &url
				changed++
				break
			}
		}
	}
	return changed
}

// Run loads the ledger, matches unlinked entries against the artifacts in
// reportsDir and rewrites the ledger only when something changed. Any load
// error, including a malformed ledger, aborts without touching the file.
func Run(repo history.Repository, reportsDir string) (int, error) {
	entries, err := repo.Load()
	if err != nil {
		return 0, err
	}
	index, err := BuildIndex(reportsDir)
	if err != nil {
		return 0, err
	}

	changed := Apply(entries, index)
	if changed == 0 {
		return 0, nil
	}
	if err := repo.Rewrite(entries); err != nil {
		return 0, err
	}
	return changed, nil
}

package history

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/codec"
)

// Lighthouse result shape, reduced to the fields collection reads. Category
// scores are pointers so an absent or null score stays distinguishable from
// zero.
type lighthouseResult struct {
	FetchTime  string `json:"fetchTime"`
	Categories struct {
		Performance   *category `json:"performance"`
		Accessibility *category `json:"accessibility"`
		BestPractices *category `json:"best-practices"`
		SEO           *category `json:"seo"`
	} `json:"categories"`
}

type category struct {
	Score *float64 `json:"score"`
}

// Collect scans reportsDir for JSON artifacts and parses each into an Entry.
// Artifacts that fail to parse, or whose category scores are entirely absent,
// are skipped without failing the batch. A missing directory means zero
// artifacts. Every returned entry carries the same run context.
func Collect(reportsDir string, run RunContext) ([]Entry, error) {
	files, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(reportsDir, name))
		if err != nil {
			slog.Warn("collect: skipping unreadable artifact", "file", name, "err", err)
			continue
		}

		var res lighthouseResult
		if err := json.Unmarshal(data, &res); err != nil {
			slog.Warn("collect: skipping malformed artifact", "file", name, "err", err)
			continue
		}

		m := Metrics{
			Performance:   score(res.Categories.Performance),
			Accessibility: score(res.Categories.Accessibility),
			BestPractices: score(res.Categories.BestPractices),
			SEO:           score(res.Categories.SEO),
		}
		if m.Empty() {
			slog.Warn("collect: skipping artifact without category scores", "file", name)
			continue
		}

		dec := codec.Decode(name)
		entries = append(entries, Entry{
			RunID:     run.RunID,
			RunNumber: run.RunNumber,
			RunURL:    run.RunURL,
			Page:      dec.Page,
			Preset:    dec.Preset,
			FetchTime: res.FetchTime,
			Metrics:   m,
			ReportURL: siblingReport(reportsDir, name),
		})
	}
	return entries, nil
}

func score(c *category) *float64 {
	if c == nil {
		return nil
	}
	return c.Score
}

// siblingReport returns the relative link to the rendered HTML report paired
// with the given JSON artifact, or nil when no such file exists on disk.
func siblingReport(reportsDir, jsonName string) *string {
	var htmlName string
	switch {
	case strings.HasSuffix(jsonName, ".report.json"):
		htmlName = strings.TrimSuffix(jsonName, ".report.json") + ".report.html"
	case strings.HasSuffix(jsonName, ".json"):
		htmlName = strings.TrimSuffix(jsonName, ".json") + ".html"
	default:
		return nil
	}
	if _, err := os.Stat(filepath.Join(reportsDir, htmlName)); err != nil {
		return nil
	}
	return &htmlName
}

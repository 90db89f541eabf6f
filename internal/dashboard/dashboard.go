// Package dashboard derives the table and trend views from the ledger and
// writes the served output tree. It never mutates the ledger.
package dashboard

import (
	"sort"
	"time"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/history"
)

// Threshold is the overlay line drawn on every trend chart, shared across
// all four metrics.
const Threshold = 90.0

// Row is one rendered table line, newest first.
type Row struct {
	Page      string
	Preset    string
	FetchTime string
	RunNumber int
	RunURL    string
	ReportURL string
	Scores    map[string]*float64
}

// Point is one trend sample: a timestamp label and the score scaled to 0-100.
type Point struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Series is the trend line for one (page, preset, metric) triple, ascending
// by fetch time.
type Series struct {
	Page   string  `json:"page"`
	Preset string  `json:"preset"`
	Metric string  `json:"metric"`
	Points []Point `json:"points"`
}

// View is the fully derived dashboard state. It is recomputable from the
// ledger at any time and is never persisted.
type View struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Threshold   float64   `json:"threshold"`
	Rows        []Row     `json:"-"`
	Series      []Series  `json:"series"`
}

// Build derives the dashboard view from ledger entries.
//
// The table is sorted by fetch time descending; entries whose fetch time is
// missing or unparseable sort as the oldest. Ties break by run number
// descending, with a missing run number counting as 0.
//
// Trend series group entries by exact (page, preset). For each metric only
// entries with a non-null score and a parseable fetch time participate,
// sorted ascending.
func Build(entries []history.Entry) View {
	v := View{
		GeneratedAt: time.Now().UTC(),
		Threshold:   Threshold,
		Rows:        buildRows(entries),
		Series:      buildSeries(entries),
	}
	return v
}

func buildRows(entries []history.Entry) []Row {
	sorted := make([]history.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, _ := sorted[i].FetchInstant()
		tj, _ := sorted[j].FetchInstant()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return runNumber(sorted[i]) > runNumber(sorted[j])
	})

	rows := make([]Row, 0, len(sorted))
	for _, e := range sorted {
		row := Row{
			Page:      e.Page,
			Preset:    e.Preset,
			FetchTime: e.FetchTime,
			RunNumber: runNumber(e),
			Scores: map[string]*float64{
				"performance":   e.Metrics.Performance,
				"accessibility": e.Metrics.Accessibility,
				"bestPractices": e.Metrics.BestPractices,
				"seo":           e.Metrics.SEO,
			},
		}
		if e.RunURL != nil {
			row.RunURL = *e.RunURL
		}
		if e.ReportURL != nil {
			row.ReportURL = *e.ReportURL
		}
		rows = append(rows, row)
	}
	return rows
}

func runNumber(e history.Entry) int {
	if e.RunNumber == nil {
		return 0
	}
	return *e.RunNumber
}

type groupKey struct {
	page   string
	preset string
}

type sample struct {
	at    time.Time
	entry history.Entry
}

func buildSeries(entries []history.Entry) []Series {
	groups := make(map[groupKey][]sample)
	var keys []groupKey
	for _, e := range entries {
		at, ok := e.FetchInstant()
		if !ok {
			continue
		}
		k := groupKey{page: e.Page, preset: e.Preset}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], sample{at: at, entry: e})
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].page != keys[j].page {
			return keys[i].page < keys[j].page
		}
		return keys[i].preset < keys[j].preset
	})

	var out []Series
	for _, k := range keys {
		samples := groups[k]
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].at.Before(samples[j].at)
		})

		for _, metric := range history.MetricNames {
			s := Series{Page: k.page, Preset: k.preset, Metric: metric}
			for _, sm := range samples {
				score, ok := sm.entry.Metrics.Score(metric)
				if !ok {
					continue
				}
				s.Points = append(s.Points, Point{
					Label: sm.at.UTC().Format("2006-01-02 15:04"),
					Score: score * 100,
				})
			}
			if len(s.Points) > 0 {
				out = append(out, s)
			}
		}
	}
	return out
}

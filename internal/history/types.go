// Package history owns the append-only ledger of measurement entries and the
// collection pass that turns raw report artifacts into canonical entries.
package history

import "time"

// Preset values a page can be measured under.
const (
	PresetMobile  = "mobile"
	PresetDesktop = "desktop"
)

// Metric names, in the order they are rendered.
var MetricNames = []string{"performance", "accessibility", "bestPractices", "seo"}

// Metrics holds the four category scores in [0,1]. Each is independently
// nullable: a nil field marshals as JSON null and means the audit did not
// produce a score for that category.
type Metrics struct {
	Performance   *float64 `json:"performance"`
	Accessibility *float64 `json:"accessibility"`
	BestPractices *float64 `json:"bestPractices"`
	SEO           *float64 `json:"seo"`
}

// Score returns the named metric and whether it is set.
func (m Metrics) Score(name string) (float64, bool) {
	var p *float64
	switch name {
	case "performance":
		p = m.Performance
	case "accessibility":
		p = m.Accessibility
	case "bestPractices":
		p = m.BestPractices
	case "seo":
		p = m.SEO
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Empty reports whether all four scores are absent.
func (m Metrics) Empty() bool {
	return m.Performance == nil && m.Accessibility == nil && m.BestPractices == nil && m.SEO == nil
}

// Entry is one canonical ledger record. Entries are never deleted and never
// mutated after append, except to set a previously-null ReportURL during
// backfill.
type Entry struct {
	RunID     string  `json:"runId"`
	RunNumber *int    `json:"runNumber"`
	RunURL    *string `json:"runUrl"`
	Page      string  `json:"page"`
	Preset    string  `json:"preset"`
	FetchTime string  `json:"fetchTime"`
	Metrics   Metrics `json:"metrics"`
	ReportURL *string `json:"reportUrl"`
}

// FetchInstant parses the entry's fetch time. ok is false when the field is
// empty or does not parse as an RFC 3339 instant.
func (e Entry) FetchInstant() (time.Time, bool) {
	if e.FetchTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, e.FetchTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RunContext identifies the run a collection pass belongs to. All values are
// supplied by the invoking environment and may be absent.
type RunContext struct {
	RunID     string
	RunNumber *int
	RunURL    *string
}

package backfill

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Partify-USA/partifyusa-performance-monitoring/internal/history"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildIndex_MissingDirectory(t *testing.T) {
	index, err := BuildIndex(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing reports dir must mean an empty index, got %v", err)
	}
	if len(index) != 0 {
		t.Errorf("got %d index entries, want 0", len(index))
	}
}

func TestBuildIndex_PairsReports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "example_com-mobile-ts.report.html", "<html></html>")
	writeFile(t, dir, "example_com-mobile-ts.report.json", `{"fetchTime": "2024-03-01T10:00:00.000Z"}`)
	writeFile(t, dir, "legacy_page-desktop-ts2.html", "<html></html>")
	writeFile(t, dir, "legacy_page-desktop-ts2.json", `{"fetchTime": "2024-03-02T10:00:00.000Z"}`)
	// An orphan report with no JSON counterpart is skipped.
	writeFile(t, dir, "orphan-mobile-ts3.report.html", "<html></html>")

	index, err := BuildIndex(dir)
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("got %d index entries, want 2", len(index))
	}

	want := []IndexEntry{
		{Page: "example com", Preset: "mobile", FetchTime: "2024-03-01T10:00:00.000Z", ReportURL: "example_com-mobile-ts.report.html"},
		{Page: "legacy page", Preset: "desktop", FetchTime: "2024-03-02T10:00:00.000Z", ReportURL: "legacy_page-desktop-ts2.html"},
	}
	if !reflect.DeepEqual(index, want) {
		t.Errorf("index:\n got %+v\nwant %+v", index, want)
	}
}

func TestBuildIndex_SkipsUnparseableCounterpart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p-mobile-ts.report.html", "<html></html>")
	writeFile(t, dir, "p-mobile-ts.report.json", "{broken")

	index, err := BuildIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(index) != 0 {
		t.Errorf("got %d index entries, want 0", len(index))
	}
}

func linked(url string) *string { return &url }

func TestApply(t *testing.T) {
	index := []IndexEntry{
		{Page: "home", Preset: "mobile", FetchTime: "t1", ReportURL: "first.html"},
		{Page: "home", Preset: "mobile", FetchTime: "t1", ReportURL: "second.html"},
		{Page: "about", Preset: "desktop", FetchTime: "t2", ReportURL: "about.html"},
	}

	entries := []history.Entry{
		// matched, first index entry wins
		{Page: "home", Preset: "mobile", FetchTime: "t1"},
		// already linked, untouched
		{Page: "about", Preset: "desktop", FetchTime: "t2", ReportURL: linked("x")},
		// no match
		{Page: "missing", Preset: "mobile", FetchTime: "t9"},
		// incomplete identity, skipped
		{Page: "", Preset: "mobile", FetchTime: "t1"},
	}

	changed := Apply(entries, index)
	if changed != 1 {
		t.Fatalf("changed: got %d, want 1", changed)
	}
	if entries[0].ReportURL == nil || *entries[0].ReportURL != "first.html" {
		t.Errorf("first match must win: got %v", entries[0].ReportURL)
	}
	if *entries[1].ReportURL != "x" {
		t.Errorf("already-linked entry must not be revisited: got %q", *entries[1].ReportURL)
	}
	if entries[2].ReportURL != nil || entries[3].ReportURL != nil {
		t.Error("unmatched entries must stay unlinked")
	}
}

func TestApply_Idempotent(t *testing.T) {
	index := []IndexEntry{{Page: "home", Preset: "mobile", FetchTime: "t1", ReportURL: "home.html"}}
	entries := []history.Entry{{Page: "home", Preset: "mobile", FetchTime: "t1"}}

	if changed := Apply(entries, index); changed != 1 {
		t.Fatalf("first pass: changed = %d, want 1", changed)
	}
	after := make([]history.Entry, len(entries))
	copy(after, entries)

	if changed := Apply(entries, index); changed != 0 {
		t.Fatalf("second pass: changed = %d, want 0", changed)
	}
	if !reflect.DeepEqual(entries, after) {
		t.Error("second pass must leave the ledger identical")
	}
}

func TestRun_RewritesOnlyOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "home-mobile-ts.report.html", "<html></html>")
	writeFile(t, dir, "home-mobile-ts.report.json", `{"fetchTime": "t1"}`)

	repo := &history.MemoryRepository{Entries: []history.Entry{
		{Page: "home", Preset: "mobile", FetchTime: "t1"},
	}}

	changed, err := Run(repo, dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed: got %d, want 1", changed)
	}
	if repo.Entries[0].ReportURL == nil || *repo.Entries[0].ReportURL != "home-mobile-ts.report.html" {
		t.Errorf("ledger not rewritten with the link: %+v", repo.Entries[0])
	}

	// Second run finds nothing to do.
	changed, err = Run(repo, dir)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 0 {
		t.Errorf("second run: changed = %d, want 0", changed)
	}
}

func TestRun_MalformedLedgerAborts(t *testing.T) {
	dir := t.TempDir()
	ledger := filepath.Join(dir, "history.json")
	if err := os.WriteFile(ledger, []byte(`{"oops": true}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(history.NewFileRepository(ledger), dir)
	if !errors.Is(err, history.ErrMalformedLedger) {
		t.Fatalf("got %v, want ErrMalformedLedger", err)
	}

	// The file must be left untouched.
	data, err := os.ReadFile(ledger)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"oops": true}` {
		t.Errorf("malformed ledger was modified: %s", data)
	}
}

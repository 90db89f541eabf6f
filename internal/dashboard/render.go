package dashboard

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// WriteSite renders the dashboard into outDir: index.html with the
// server-rendered table and an embedded JSON snapshot of the trend series,
// plus copies of the raw artifacts from reportsDir for deep links.
// An empty view produces a minimal "no data" page, not an error.
func WriteSite(outDir, reportsDir string, view View) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outDir, err)
	}

	jsonBytes, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode trend data: %w", err)
	}

	data := pageData{
		JSONData:    template.JS(jsonBytes),
		Rows:        view.Rows,
		Threshold:   view.Threshold,
		GeneratedAt: view.GeneratedAt.Format("2006-01-02 15:04 UTC"),
	}

	f, err := os.Create(filepath.Join(outDir, "index.html"))
	if err != nil {
		return fmt.Errorf("write index.html: %w", err)
	}
	if err := tmplIndex.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render index.html: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write index.html: %w", err)
	}

	return copyArtifacts(reportsDir, outDir)
}

type pageData struct {
	JSONData    template.JS
	Rows        []Row
	Threshold   float64
	GeneratedAt string
}

// copyArtifacts copies every regular file from reportsDir into outDir so the
// table's report links resolve. A missing reports directory copies nothing.
// A file that fails to copy is logged and skipped; already-copied files are
// not rolled back.
func copyArtifacts(reportsDir, outDir string) error {
	files, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(reportsDir, f.Name()), filepath.Join(outDir, f.Name())); err != nil {
			slog.Warn("dashboard: artifact copy failed", "file", f.Name(), "err", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

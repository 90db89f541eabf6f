package utils

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func TestZipDirectory(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(src, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "sub", "data.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "out.zip")
	if err := ZipDirectory(src, target); err != nil {
		t.Fatalf("ZipDirectory: %v", err)
	}

	r, err := zip.OpenReader(target)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer r.Close()

	names := map[string]bool{}
	for _, f := range r.File {
		names[f.Name] = true
	}
	for _, want := range []string{"index.html", "sub/", "sub/data.json"} {
		if !names[want] {
			t.Errorf("archive missing %q (have %v)", want, names)
		}
	}
}

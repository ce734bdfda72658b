package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/doppelscan/doppel/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "lib", "util.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# readme\n")
	writeFile(t, filepath.Join(dir, "vendor", "dep.go"), "package dep\n")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.js"), "var x\n")

	s := New(config.DefaultConfig())
	files, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		rel, _ := filepath.Rel(dir, f)
		got[rel] = true
	}

	if len(got) != 2 {
		t.Fatalf("ScanDir() = %v, want main.go and lib/util.py only", got)
	}
	if !got["main.go"] || !got[filepath.Join("lib", "util.py")] {
		t.Errorf("ScanDir() = %v, missing expected files", got)
	}
}

func TestScanDirGitignore(t *testing.T) {
	dir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, ".gitignore"), "generated/\n*.gen.go\n")
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "api.gen.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "generated", "schema.go"), "package generated\n")

	s := New(config.DefaultConfig())
	files, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "main.go" {
		t.Errorf("ScanDir() = %v, want only main.go", files)
	}
}

func TestScanDirConfigPatterns(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	writeFile(t, filepath.Join(dir, "legacy", "old.go"), "package legacy\n")

	cfg := config.DefaultConfig()
	cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, "legacy")

	s := New(cfg)
	files, err := s.ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir() error = %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "main.go" {
		t.Errorf("ScanDir() = %v, want only main.go", files)
	}
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	goFile := filepath.Join(dir, "main.go")
	txtFile := filepath.Join(dir, "notes.txt")
	writeFile(t, goFile, "package main\n")
	writeFile(t, txtFile, "notes\n")

	s := New(config.DefaultConfig())

	ok, err := s.ScanFile(goFile)
	if err != nil {
		t.Fatalf("ScanFile() error = %v", err)
	}
	if !ok {
		t.Error("ScanFile() = false for supported file")
	}

	ok, err = s.ScanFile(txtFile)
	if err != nil {
		t.Fatalf("ScanFile() error = %v", err)
	}
	if ok {
		t.Error("ScanFile() = true for unsupported extension")
	}

	if _, err := s.ScanFile(filepath.Join(dir, "absent.go")); err == nil {
		t.Error("ScanFile() on missing file expected error")
	}
}

func TestFilterBySize(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.go")
	big := filepath.Join(dir, "big.go")
	writeFile(t, small, "package main\n")
	writeFile(t, big, string(make([]byte, 2048)))

	files, skipped := FilterBySize([]string{small, big}, 1024)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(files) != 1 || files[0] != small {
		t.Errorf("files = %v, want [%s]", files, small)
	}

	files, skipped = FilterBySize([]string{small, big}, 0)
	if skipped != 0 || len(files) != 2 {
		t.Errorf("maxSize 0 should disable the filter, got %v skipped=%d", files, skipped)
	}
}

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/crxledger/internal/config"
)

func TestLoadFile_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CRXLEDGER_PROJECT_ROOT", "")
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Files.DownloadLog != "download-log.json" {
		t.Errorf("Files.DownloadLog = %q", cfg.Files.DownloadLog)
	}
	if cfg.CDN.AcceptFormat != "crx3,puff" {
		t.Errorf("CDN.AcceptFormat = %q", cfg.CDN.AcceptFormat)
	}
	if cfg.Scraper.BaseURL != "https://www.crx4chrome.com" {
		t.Errorf("Scraper.BaseURL = %q", cfg.Scraper.BaseURL)
	}
}

func TestLoadFile_ReadsYAMLAndEnv(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := "project_root: " + root + "\nfiles:\n  metadata: grammarly-sorted.json\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CRXLEDGER_LOG_LEVEL", "debug")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProjectRoot != root {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, root)
	}
	if cfg.Files.Metadata != "grammarly-sorted.json" {
		t.Errorf("Files.Metadata = %q", cfg.Files.Metadata)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from env", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_ProjectRootUnset(t *testing.T) {
	cfg := &config.Config{}
	if err := cfg.Validate(); !errors.Is(err, config.ErrProjectRootUnset) {
		t.Errorf("Validate() = %v, want ErrProjectRootUnset", err)
	}
}

func TestValidate_ProjectRootMissing(t *testing.T) {
	cfg := &config.Config{ProjectRoot: "/no/such/root"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing project root")
	}
}

func TestPaths(t *testing.T) {
	cfg := &config.Config{ProjectRoot: "/proj"}
	if got := cfg.Path("a.json"); got != filepath.Join("/proj", "a.json") {
		t.Errorf("Path = %q", got)
	}
	if got := cfg.Path("/abs/a.json"); got != "/abs/a.json" {
		t.Errorf("Path(abs) = %q", got)
	}
	if got := cfg.ExtensionsDir(); got != filepath.Join("/proj", ".data", "extensions") {
		t.Errorf("ExtensionsDir = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	in := &config.Config{ProjectRoot: root, DataDir: "archive", Log: config.LogConfig{Level: "warn"}}
	if err := config.Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.DataDir != "archive" || out.Log.Level != "warn" {
		t.Errorf("round trip lost values: %+v", out)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":8414" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.WorkspaceRoot != root {
		t.Errorf("workspace root = %q, want %q", cfg.WorkspaceRoot, root)
	}
	if !cfg.PersistContexts {
		t.Error("persist contexts should default to true")
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	root := t.TempDir()
	content := "listen_addr: \":9000\"\ndebounce_millis: 50\n"
	if err := os.WriteFile(filepath.Join(root, configFile), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.DebounceWindow() != 50*time.Millisecond {
		t.Errorf("debounce = %v", cfg.DebounceWindow())
	}
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, configFile), []byte("listen_addr: [oops"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(root); err == nil {
		t.Error("Load() expected error for malformed YAML")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	in := &Config{ListenAddr: ":7777", WorkspaceRoot: root, DebounceMillis: 250}
	if err := Save(root, in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	out, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if out.ListenAddr != ":7777" || out.DebounceMillis != 250 {
		t.Errorf("round trip = %+v", out)
	}
}

func TestDebounceWindow_Default(t *testing.T) {
	cfg := &Config{}
	if cfg.DebounceWindow() != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.DebounceWindow())
	}
}

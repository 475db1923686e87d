package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "niljs.yaml")
	content := "engine:\n  max_call_depth: 250\nconformance:\n  timeout: 3s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.Engine.MaxCallDepth != 250 {
		t.Errorf("max_call_depth = %d, want 250", opts.Engine.MaxCallDepth)
	}
	if !opts.Engine.Simplify {
		t.Errorf("simplify default lost")
	}
	if opts.Conformance.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", opts.Conformance.Timeout)
	}
	if opts.Conformance.Database != "conformance.db" {
		t.Errorf("database default lost: %q", opts.Conformance.Database)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

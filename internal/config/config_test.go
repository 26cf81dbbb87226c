package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write job file: %v", err)
	}
	return path
}

func TestLoadResolvesRelativeDir(t *testing.T) {
	path := writeJob(t, "command: [\"sleep\", \"5\"]\ndir: work\n")

	job, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "work")
	if job.Dir != want {
		t.Fatalf("dir = %q, want %q", job.Dir, want)
	}
	if job.Orphan {
		t.Fatal("orphan should default to false")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_VALUE", "expanded")
	path := writeJob(t, "command: [\"true\"]\nenv:\n  MARKER: $CONFIG_TEST_VALUE\n")

	job, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	env := job.Environ()
	if len(env) != 1 || env[0] != "MARKER=expanded" {
		t.Fatalf("environ = %v", env)
	}
}

func TestLoadRejectsMissingCommand(t *testing.T) {
	path := writeJob(t, "dir: /tmp\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for job without command")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeJob(t, "command: [\"true\"]\nrestart: always\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

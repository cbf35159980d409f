package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := `
[paths]
build_dir = "` + filepath.Join(base, "build") + `"
output_dir = "` + filepath.Join(base, "output") + `"
state_dir = "` + filepath.Join(base, "state") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[scraper]
topics = ["science"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestQueueStatusEmpty(t *testing.T) {
	configPath := writeTestConfig(t)
	out := runCommand(t, "--config", configPath, "queue", "status")
	if !strings.Contains(out, "total") {
		t.Errorf("output missing total row:\n%s", out)
	}
}

func TestQueueListEmpty(t *testing.T) {
	configPath := writeTestConfig(t)
	out := runCommand(t, "--config", configPath, "queue", "list")
	if !strings.Contains(out, "Queue is empty") {
		t.Errorf("output = %q", out)
	}
}

func TestQueueClear(t *testing.T) {
	configPath := writeTestConfig(t)
	out := runCommand(t, "--config", configPath, "queue", "clear")
	if !strings.Contains(out, "Queue cleared") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "ted2zim", "config.toml")
	out := runCommand(t, "config", "init", "--path", target)
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("sample config missing: %v", err)
	}
}

func TestRootRequiresValidConfig(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	// No topics and no playlist: the selection requirement must surface.
	if err := os.WriteFile(path, []byte("[scraper]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", path, "queue", "status"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected config validation error")
	}
}

package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present", "#!/bin/sh\nexit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  ", Optional: true},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command detail: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestCheckBinariesReportsVersion(t *testing.T) {
	stub := writeStub(t, t.TempDir(), "yt-dlp", "#!/bin/sh\necho 2026.09.01\necho extra\n")
	results := CheckBinaries(context.Background(), []Requirement{{Name: "yt-dlp", Command: stub, VersionArgs: []string{"--version"}}})
	if results[0].Version != "2026.09.01" {
		t.Fatalf("expected first output line as version, got %q", results[0].Version)
	}
}

func TestCheckBinariesVersionFailure(t *testing.T) {
	stub := writeStub(t, t.TempDir(), "ffmpeg", "#!/bin/sh\nexit 3\n")
	results := CheckBinaries(context.Background(), []Requirement{{Name: "FFmpeg", Command: stub, VersionArgs: []string{"-version"}}})
	if !results[0].Available {
		t.Fatal("binary exists and should count as available")
	}
	if results[0].Detail == "" {
		t.Fatal("expected version failure detail")
	}
}

package services_test

import (
	"errors"
	"strings"
	"testing"

	"aurora/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "ffmpeg", "combine", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ffmpeg", "combine", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHintMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrConfiguration, "llm", "init", "missing key", nil), "config"},
		{services.Wrap(services.ErrExternalTool, "ytdlp", "probe", "exit 1", nil), "yt-dlp"},
		{services.Wrap(services.ErrNotFound, "ytdlp", "probe", "gone", nil), "source link"},
		{errors.New("plain"), "retry later"},
	}
	for _, tc := range cases {
		if got := services.Hint(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("Hint(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
	if services.Hint(nil) != "" {
		t.Fatal("expected empty hint for nil")
	}
}

package messages

import (
	"strings"
	"testing"
)

func TestDefaultCatalogHasEveryKey(t *testing.T) {
	c := Default()
	for _, key := range requiredKeys {
		if got := c.Text(key); got == key || strings.TrimSpace(got) == "" {
			t.Fatalf("key %q not defined", key)
		}
	}
}

func TestTextSubstitutes(t *testing.T) {
	c := Default()
	if got := c.Text(ChatEcho, "text", "not a url"); got != "I received your message: 'not a url'" {
		t.Fatalf("unexpected echo %q", got)
	}
	if got := c.Text(ExportCaption, "count", "3"); got != "3 users" {
		t.Fatalf("unexpected caption %q", got)
	}
	if got := c.Text("no_such_key"); got != "no_such_key" {
		t.Fatalf("unknown keys should render as themselves, got %q", got)
	}
	if got := c.Text(ChatUnconfigured); got != "Error: API key not configured." {
		t.Fatalf("unexpected unconfigured text %q", got)
	}
}

func TestParseReportsMissingKeys(t *testing.T) {
	_, err := Parse([]byte("greeting: hi\n"))
	if err == nil || !strings.Contains(err.Error(), "help") {
		t.Fatalf("expected missing keys error, got %v", err)
	}
	if _, err := Parse([]byte("greeting: [unclosed")); err == nil {
		t.Fatal("expected decode error")
	}
}

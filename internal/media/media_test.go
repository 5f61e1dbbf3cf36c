package media_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"aurora/internal/media"
)

func sampleStreams() []media.Stream {
	return []media.Stream{
		{ID: "18", Kind: media.KindCombined, Ext: "mp4", Width: 640, Height: 360, Bitrate: 500},
		{ID: "43", Kind: media.KindCombined, Ext: "webm", Width: 640, Height: 360, Bitrate: 900},
		{ID: "137", Kind: media.KindVideo, Ext: "mp4", Width: 1920, Height: 1080, Bitrate: 4000},
		{ID: "248", Kind: media.KindVideo, Ext: "webm", Width: 1920, Height: 1080, Bitrate: 5000},
		{ID: "140", Kind: media.KindAudio, Ext: "m4a", Bitrate: 128},
		{ID: "251", Kind: media.KindAudio, Ext: "webm", Bitrate: 160},
		{ID: "sub-en", Kind: media.KindSubtitle, Ext: "vtt", Language: "en-US"},
		{ID: "auto-en", Kind: media.KindSubtitle, Ext: "srt", Language: "en", Auto: true},
		{ID: "auto-ru", Kind: media.KindSubtitle, Ext: "srt", Language: "ru", Auto: true},
	}
}

func TestParseTier(t *testing.T) {
	for input, want := range map[string]int{"720p": 720, "1080": 1080, " 144P ": 144} {
		got, err := media.ParseTier(input)
		if err != nil || got != want {
			t.Fatalf("ParseTier(%q) = %d, %v; want %d", input, got, err, want)
		}
	}
	for _, bad := range []string{"", "hd", "-5p", "0p"} {
		if _, err := media.ParseTier(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if media.TierLabel(360) != "360p" {
		t.Fatalf("unexpected tier label %q", media.TierLabel(360))
	}
}

func TestSelection(t *testing.T) {
	streams := sampleStreams()

	combined, ok := media.SelectCombined(streams, 360)
	if !ok || combined.ID != "18" {
		t.Fatalf("expected mp4 combined stream, got %+v (ok=%v)", combined, ok)
	}
	if _, ok := media.SelectCombined(streams, 1080); ok {
		t.Fatal("no combined 1080p stream should exist")
	}
	video, ok := media.SelectVideo(streams, 1080)
	if !ok || video.ID != "137" {
		t.Fatalf("expected mp4 video-only stream, got %+v", video)
	}
	audio, ok := media.BestAudio(streams)
	if !ok || audio.ID != "140" {
		t.Fatalf("expected m4a audio, got %+v", audio)
	}
	sub, ok := media.SelectSubtitle(streams, "en")
	if !ok || sub.ID != "sub-en" {
		t.Fatalf("expected uploaded english track, got %+v", sub)
	}
	sub, ok = media.SelectSubtitle(streams, "ru")
	if !ok || !sub.Auto {
		t.Fatalf("expected auto russian track, got %+v", sub)
	}
	if _, ok := media.SelectSubtitle(streams, "fa"); ok {
		t.Fatal("no persian track should exist")
	}
}

func TestPortraitResolutionUsesShortSide(t *testing.T) {
	streams := []media.Stream{{ID: "v", Kind: media.KindCombined, Ext: "mp4", Width: 720, Height: 1280}}
	if _, ok := media.SelectCombined(streams, 720); !ok {
		t.Fatal("portrait 720x1280 should satisfy 720p")
	}
}

func TestAvailabilityIsStable(t *testing.T) {
	streams := sampleStreams()
	offered := []string{"144p", "360p", "720p", "1080p"}

	first := media.AvailableTiers(streams, offered)
	second := media.AvailableTiers(streams, offered)
	if diff := cmp.Diff([]string{"360p", "1080p"}, first); diff != "" {
		t.Fatalf("tiers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated query differs:\n%s", diff)
	}
	langs := media.AvailableLanguages(streams, []string{"en", "ru", "fa"})
	if diff := cmp.Diff([]string{"en", "ru"}, langs); diff != "" {
		t.Fatalf("languages mismatch (-want +got):\n%s", diff)
	}
}

func TestLanguageHelpers(t *testing.T) {
	cases := map[string]string{"en-US": "en", "a.ru": "ru", "eng": "en", "per": "fa", "pt_BR": "pt", "xy": "xy", "xyz": ""}
	for input, want := range cases {
		if got := media.NormalizeLanguage(input); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", input, got, want)
		}
	}
	if media.LanguageName("en") != "English" || media.LanguageName("a.ru") != "Russian" {
		t.Fatal("unexpected display names")
	}
	if media.LanguageName("xx") != "XX" || media.LanguageName("") != "Unknown" {
		t.Fatal("unexpected fallback display names")
	}
	if !media.MatchLanguage("en-GB", "en") || media.MatchLanguage("ru", "en") || media.MatchLanguage("en", "") {
		t.Fatal("unexpected language matching")
	}
	if diff := cmp.Diff([]string{"en", "ru"}, media.NormalizeLanguages([]string{"EN", "english", "rus", ""})); diff != "" {
		t.Fatalf("NormalizeLanguages mismatch:\n%s", diff)
	}
}

func TestExtractText(t *testing.T) {
	srt := "\uFEFF1\r\n00:00:01,000 --> 00:00:02,500\r\nHello <i>there</i>\r\n\r\n" +
		"2\n00:00:02,500 --> 00:00:04,000\nHello there\nGeneral Kenobi\n\n" +
		"3\n00:00:04,000 --> 00:00:05,000\n{\\an8}You are a bold one\n"
	want := "Hello there\nGeneral Kenobi\nYou are a bold one"
	if got, err := media.ExtractText(srt); err != nil || got != want {
		t.Fatalf("ExtractText = %q, %v, want %q", got, err, want)
	}

	vtt := "WEBVTT\n\n00:01.000 --> 00:02.000\nshort timing\n"
	if got, err := media.ExtractText(vtt); err != nil || got != "short timing" {
		t.Fatalf("ExtractText(vtt) = %q, %v", got, err)
	}
}

func TestExtractTextRejectsOversizedLine(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:02,000\n" + strings.Repeat("a", 2*1024*1024) + "\n"
	got, err := media.ExtractText(srt)
	if err == nil {
		t.Fatalf("expected error for oversized cue, got %d bytes of text", len(got))
	}
	if got != "" {
		t.Fatal("expected no partial text")
	}
}

func TestReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.srt")
	if err := os.WriteFile(path, []byte("1\n00:00:01,000 --> 00:00:02,000\nline\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := media.ReadText(path)
	if err != nil || got != "line" {
		t.Fatalf("ReadText = %q, %v", got, err)
	}
	if _, err := media.ReadText(filepath.Join(t.TempDir(), "missing.srt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"aurora/internal/media"
	"aurora/internal/render"
	"aurora/internal/scratch"
)

const subtitleSRT = "1\n00:00:01,000 --> 00:00:02,000\nhello world\n\n2\n00:00:02,000 --> 00:00:03,000\nhello world\nsecond line\n"

type fakeSource struct {
	mu        sync.Mutex
	title     string
	streams   []media.Stream
	failKind  map[media.StreamKind]error
	calls     []media.Stream
	leavePart bool
	subtitle  string
}

func (s *fakeSource) URL() string             { return "https://youtu.be/abcdefgh" }
func (s *fakeSource) Title() string           { return s.title }
func (s *fakeSource) Streams() []media.Stream { return append([]media.Stream(nil), s.streams...) }

func (s *fakeSource) Materialize(_ context.Context, stream media.Stream, dest string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, stream)
	s.mu.Unlock()
	if s.leavePart {
		_ = os.WriteFile(dest+".part", []byte("partial"), 0o644)
	}
	if err := s.failKind[stream.Kind]; err != nil {
		return "", err
	}
	ext := stream.Ext
	content := []byte("media:" + stream.ID)
	if stream.Kind == media.KindSubtitle {
		ext = "srt"
		content = []byte(subtitleSRT)
		if s.subtitle != "" {
			content = []byte(s.subtitle)
		}
	}
	path := dest + "." + ext
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *fakeSource) callKinds() []media.StreamKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]media.StreamKind, 0, len(s.calls))
	for _, c := range s.calls {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

type fakeProvider struct {
	source  *fakeSource
	openErr error
	opens   int
}

func (p *fakeProvider) Open(context.Context, string) (media.Source, error) {
	p.opens++
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.source, nil
}

type fakeCombiner struct {
	err   error
	calls int
}

func (c *fakeCombiner) Combine(_ context.Context, video, audio, dest string) error {
	c.calls++
	for _, p := range []string{video, audio} {
		if _, err := os.Stat(p); err != nil {
			return err
		}
	}
	if c.err != nil {
		_ = os.WriteFile(dest+".partial", []byte("x"), 0o644)
		return c.err
	}
	return os.WriteFile(dest, []byte("combined"), 0o644)
}

type fakeRenderer struct {
	err  error
	docs []render.Document
}

func (r *fakeRenderer) Render(_ context.Context, doc render.Document, _ render.Format, dest string) error {
	r.docs = append(r.docs, doc)
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(dest, []byte("rendered"), 0o644)
}

type fakeTransmitter struct {
	err  error
	sent []Attachment
}

func (t *fakeTransmitter) Send(_ context.Context, a Attachment) error {
	if _, err := os.Stat(a.Path); err != nil {
		return errors.New("attachment missing at send time")
	}
	t.sent = append(t.sent, a)
	return t.err
}

func richStreams() []media.Stream {
	return []media.Stream{
		{ID: "18", Kind: media.KindCombined, Ext: "mp4", Width: 640, Height: 360},
		{ID: "137", Kind: media.KindVideo, Ext: "mp4", Width: 1920, Height: 1080},
		{ID: "140", Kind: media.KindAudio, Ext: "m4a", Bitrate: 128},
		{ID: "en", Kind: media.KindSubtitle, Ext: "srt", Language: "en"},
		{ID: "ru", Kind: media.KindSubtitle, Ext: "srt", Language: "ru", Auto: true},
	}
}

type harness struct {
	area     *scratch.Area
	source   *fakeSource
	provider *fakeProvider
	combiner *fakeCombiner
	renderer *fakeRenderer
	tx       *fakeTransmitter
	pipeline *Pipeline
}

func newHarness(t *testing.T, streams []media.Stream) *harness {
	t.Helper()
	area, err := scratch.NewArea(filepath.Join(t.TempDir(), "scratch"), nil)
	if err != nil {
		t.Fatalf("scratch area: %v", err)
	}
	h := &harness{
		area:     area,
		source:   &fakeSource{title: "Demo: clip", streams: streams, failKind: map[media.StreamKind]error{}},
		combiner: &fakeCombiner{},
		renderer: &fakeRenderer{},
		tx:       &fakeTransmitter{},
	}
	h.provider = &fakeProvider{source: h.source}
	h.pipeline = New(Config{
		Qualities:      []string{"144p", "360p", "720p", "1080p"},
		Languages:      []string{"en", "ru"},
		MaxUploadBytes: 50 << 20,
	}, h.provider, h.combiner, h.renderer, area, nil)
	return h
}

func (h *harness) requireEmpty(t *testing.T) {
	t.Helper()
	count, err := h.area.Count()
	if err != nil {
		t.Fatalf("count scratch: %v", err)
	}
	if count != 0 {
		entries, _ := os.ReadDir(h.area.Dir())
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected empty scratch area, found %v", names)
	}
}

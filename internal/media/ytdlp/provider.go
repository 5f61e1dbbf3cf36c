package ytdlp

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"aurora/internal/logging"
	"aurora/internal/media"
	"aurora/internal/services"
)

// DefaultCacheTTL bounds how long a probe result is reused for the same link.
const DefaultCacheTTL = 10 * time.Minute

var notFoundMarkers = []string{
	"video unavailable",
	"this video is unavailable",
	"private video",
	"unsupported url",
	"is not a valid url",
	"http error 404",
	"has been removed",
	"does not exist",
}

// Provider opens links through yt-dlp. Concurrent opens of the same link share
// one probe, and results are cached for a short time so a menu and the
// delivery that follows see the same stream list.
type Provider struct {
	backend backend
	logger  *slog.Logger
	ttl     time.Duration
	now     func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cachedInfo
}

type cachedInfo struct {
	info    videoInfo
	expires time.Time
}

// Option customizes a Provider.
type Option func(*Provider)

// WithCacheTTL overrides DefaultCacheTTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Provider) { p.ttl = ttl }
}

func withBackend(b backend) Option {
	return func(p *Provider) { p.backend = b }
}

func withClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New constructs a Provider for the yt-dlp binary (empty means PATH lookup).
func New(binary string, logger *slog.Logger, opts ...Option) *Provider {
	p := &Provider{
		backend: execBackend{binary: strings.TrimSpace(binary)},
		logger:  logging.NewComponentLogger(logger, "ytdlp"),
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		cache:   make(map[string]cachedInfo),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open probes url and returns its stream listing.
func (p *Provider) Open(ctx context.Context, url string) (media.Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, services.Wrap(services.ErrValidation, "ytdlp", "open", "empty url", nil)
	}
	if info, ok := p.cached(url); ok {
		return p.newSource(url, info), nil
	}

	value, err, shared := p.group.Do(url, func() (any, error) {
		started := p.now()
		data, err := p.backend.Probe(ctx, url)
		if err != nil {
			return nil, classify(ctx, "probe", err)
		}
		info, err := parseInfo(data)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "ytdlp", "probe", "unreadable info json", err)
		}
		p.store(url, info)
		p.logger.Debug("source probed",
			logging.String(logging.FieldEventType, "source_probed"),
			logging.String(logging.FieldSourceURL, url),
			logging.Int("formats", len(info.Formats)),
			logging.Duration("duration", p.now().Sub(started)),
		)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Debug("probe shared", logging.String(logging.FieldSourceURL, url))
	}
	return p.newSource(url, value.(videoInfo)), nil
}

func (p *Provider) cached(url string) (videoInfo, bool) {
	if p.ttl <= 0 {
		return videoInfo{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.cache[url]
	if !ok {
		return videoInfo{}, false
	}
	if !p.now().Before(entry.expires) {
		delete(p.cache, url)
		return videoInfo{}, false
	}
	return entry.info, true
}

func (p *Provider) store(url string, info videoInfo) {
	if p.ttl <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for key, entry := range p.cache {
		if !now.Before(entry.expires) {
			delete(p.cache, key)
		}
	}
	p.cache[url] = cachedInfo{info: info, expires: now.Add(p.ttl)}
}

func (p *Provider) newSource(url string, info videoInfo) *source {
	return &source{
		url:     url,
		title:   strings.TrimSpace(info.Title),
		streams: info.streams(),
		backend: p.backend,
		logger:  p.logger,
	}
}

type source struct {
	url     string
	title   string
	streams []media.Stream
	backend backend
	logger  *slog.Logger
}

func (s *source) URL() string   { return s.url }
func (s *source) Title() string { return s.title }

func (s *source) Streams() []media.Stream {
	return append([]media.Stream(nil), s.streams...)
}

// Materialize downloads stream next to dest and returns the written path.
// Subtitle tracks end up at dest + ".srt".
func (s *source) Materialize(ctx context.Context, stream media.Stream, dest string) (string, error) {
	output := dest + ".%(ext)s"
	if stream.Kind == media.KindSubtitle {
		if err := s.backend.Subtitles(ctx, s.url, stream.ID, stream.Auto, output); err != nil {
			return "", classify(ctx, "subtitles", err)
		}
		return settleSubtitle(dest, stream.ID)
	}
	if err := s.backend.Download(ctx, s.url, stream.ID, output); err != nil {
		return "", classify(ctx, "download", err)
	}
	return settleDownload(dest, stream.Ext)
}

func settleDownload(dest, ext string) (string, error) {
	if ext != "" {
		want := dest + "." + ext
		if _, err := os.Stat(want); err == nil {
			return want, nil
		}
	}
	matches, _ := filepath.Glob(dest + ".*")
	for _, m := range matches {
		if isPartial(m) {
			continue
		}
		return m, nil
	}
	return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "yt-dlp produced no file", nil)
}

func settleSubtitle(dest, language string) (string, error) {
	final := dest + ".srt"
	candidates := []string{dest + "." + language + ".srt"}
	if more, _ := filepath.Glob(dest + ".*.srt"); len(more) > 0 {
		candidates = append(candidates, more...)
	}
	candidates = append(candidates, final)
	for _, c := range candidates {
		if _, err := os.Stat(c); err != nil {
			continue
		}
		if c != final {
			if err := os.Rename(c, final); err != nil {
				return "", services.Wrap(services.ErrExternalTool, "ytdlp", "subtitles", "failed to move subtitle file", err)
			}
		}
		return final, nil
	}
	return "", services.Wrap(services.ErrExternalTool, "ytdlp", "subtitles", "yt-dlp produced no subtitle file", nil)
}

func isPartial(path string) bool {
	for _, suffix := range []string{".part", ".ytdl", ".temp", ".tmp"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return strings.Contains(filepath.Base(path), ".part-Frag")
}

func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "ytdlp", op, "yt-dlp timed out", err)
		}
		return ctxErr
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "requested format is not available") {
		return errors.Join(media.ErrNotAvailable, services.Wrap(services.ErrExternalTool, "ytdlp", op, "format not offered", err))
	}
	for _, marker := range notFoundMarkers {
		if strings.Contains(message, marker) {
			return services.Wrap(services.ErrNotFound, "ytdlp", op, "media not found", err)
		}
	}
	return services.Wrap(services.ErrExternalTool, "ytdlp", op, "yt-dlp failed", err)
}

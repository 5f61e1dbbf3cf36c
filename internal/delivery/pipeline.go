package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"aurora/internal/logging"
	"aurora/internal/media"
	"aurora/internal/render"
	"aurora/internal/scratch"
	"aurora/internal/services"
	"aurora/internal/session"
)

var errNoAudio = errors.New("no audio-only stream to combine with")

// Config limits what the pipeline offers and sends.
type Config struct {
	Qualities      []string
	Languages      []string
	MaxUploadBytes int64
}

// Pipeline turns a terminal menu choice into a transmitted artifact.
type Pipeline struct {
	cfg      Config
	provider media.Provider
	combiner media.Combiner
	renderer Renderer
	area     *scratch.Area
	logger   *slog.Logger
}

// New constructs a Pipeline.
func New(cfg Config, provider media.Provider, combiner media.Combiner, renderer Renderer, area *scratch.Area, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		provider: provider,
		combiner: combiner,
		renderer: renderer,
		area:     area,
		logger:   logging.NewComponentLogger(logger, "delivery"),
	}
}

// Inspect reports the configured tiers and languages the session's source
// actually offers.
func (p *Pipeline) Inspect(ctx context.Context, s session.Session) Inspection {
	if !s.HasSource() {
		return Inspection{Kind: KindMissingSource}
	}
	src, err := p.provider.Open(ctx, s.Source)
	if err != nil {
		kind := KindProviderError
		if errors.Is(err, media.ErrNotAvailable) {
			kind = KindNotAvailable
		}
		p.logFailure(ctx, "source inspection failed", kind, err)
		return Inspection{Kind: kind, Err: err}
	}
	streams := src.Streams()
	return Inspection{
		Kind:      KindDelivered,
		Title:     src.Title(),
		Qualities: media.AvailableTiers(streams, p.cfg.Qualities),
		Languages: media.AvailableLanguages(streams, p.cfg.Languages),
	}
}

// Deliver runs one delivery. It never returns an error: every collaborator
// failure is mapped onto the Outcome. Every artifact created along the way is
// removed before Deliver returns, whatever the result.
func (p *Pipeline) Deliver(ctx context.Context, s session.Session, req Request, tx Transmitter) (outcome Outcome) {
	outcome = Outcome{
		Request:  req,
		Quality:  req.Quality,
		Language: req.Language,
		Format:   req.Format,
	}
	if !s.HasSource() {
		outcome.Kind = KindMissingSource
		return outcome
	}

	requestID, _ := services.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	outcome.RequestID = requestID
	batch := p.area.NewBatch(s.UserID, requestID)
	defer func() {
		result := batch.Cleanup()
		outcome.Cleaned = result.Removed
		p.logOutcome(ctx, outcome)
	}()

	src, err := p.provider.Open(ctx, s.Source)
	if err != nil {
		return fail(outcome, materializeKind(err), err)
	}
	outcome.Title = src.Title()

	var attachment Attachment
	switch req.Kind {
	case RequestVideo:
		attachment, err = p.video(ctx, src, req, batch)
	case RequestAudio:
		attachment, err = p.audio(ctx, src, batch)
	case RequestSubtitles:
		attachment, err = p.subtitles(ctx, src, req, batch)
	default:
		err = &stepError{kind: KindProviderError, err: fmt.Errorf("unsupported request kind %d", req.Kind)}
	}
	if err != nil {
		var step *stepError
		if errors.As(err, &step) {
			return fail(outcome, step.kind, step.err)
		}
		return fail(outcome, KindProviderError, err)
	}

	info, err := os.Stat(attachment.Path)
	if err != nil {
		return fail(outcome, KindProviderError, err)
	}
	attachment.Size = info.Size()
	attachment.Caption = outcome.Title
	if p.cfg.MaxUploadBytes > 0 && attachment.Size > p.cfg.MaxUploadBytes {
		return fail(outcome, KindTransmitError, fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, attachment.Size, p.cfg.MaxUploadBytes))
	}
	if err := tx.Send(ctx, attachment); err != nil {
		return fail(outcome, KindTransmitError, err)
	}
	outcome.Kind = KindDelivered
	return outcome
}

type stepError struct {
	kind Kind
	err  error
}

func (e *stepError) Error() string { return e.kind.String() + ": " + e.err.Error() }

func (e *stepError) Unwrap() error { return e.err }

func fail(outcome Outcome, kind Kind, err error) Outcome {
	outcome.Kind = kind
	outcome.Err = err
	return outcome
}

func notAvailable(what string) error {
	return &stepError{kind: KindNotAvailable, err: fmt.Errorf("%s: %w", what, media.ErrNotAvailable)}
}

func materializeKind(err error) Kind {
	if errors.Is(err, media.ErrNotAvailable) {
		return KindNotAvailable
	}
	return KindProviderError
}

func (p *Pipeline) materialize(ctx context.Context, src media.Source, stream media.Stream, batch *scratch.Batch, role string) (string, error) {
	path, err := src.Materialize(ctx, stream, batch.Path(role, ""))
	if path != "" {
		batch.Track(path)
	}
	if err != nil {
		return "", &stepError{kind: materializeKind(err), err: err}
	}
	return path, nil
}

func (p *Pipeline) video(ctx context.Context, src media.Source, req Request, batch *scratch.Batch) (Attachment, error) {
	height, err := media.ParseTier(req.Quality)
	if err != nil {
		return Attachment{}, &stepError{kind: KindNotAvailable, err: err}
	}
	streams := src.Streams()
	name := fileName(src.Title(), req.Quality, "mp4")

	if combined, ok := media.SelectCombined(streams, height); ok {
		path, err := p.materialize(ctx, src, combined, batch, "video")
		if err != nil {
			return Attachment{}, err
		}
		return Attachment{Kind: AttachVideo, Path: path, FileName: fileName(src.Title(), req.Quality, extOf(path))}, nil
	}

	videoOnly, ok := media.SelectVideo(streams, height)
	if !ok {
		return Attachment{}, notAvailable(req.Quality)
	}
	audio, ok := media.BestAudio(streams)
	if !ok {
		return Attachment{}, &stepError{kind: KindProviderError, err: errNoAudio}
	}
	if p.combiner == nil {
		return Attachment{}, &stepError{kind: KindProviderError, err: services.Wrap(services.ErrConfiguration, "delivery", "combine", "no combiner configured", nil)}
	}
	videoPath, err := p.materialize(ctx, src, videoOnly, batch, "video-only")
	if err != nil {
		return Attachment{}, err
	}
	audioPath, err := p.materialize(ctx, src, audio, batch, "audio-only")
	if err != nil {
		return Attachment{}, err
	}
	dest := batch.Path("video", "mp4")
	if err := p.combiner.Combine(ctx, videoPath, audioPath, dest); err != nil {
		return Attachment{}, &stepError{kind: KindProviderError, err: err}
	}
	removeIntermediates(p.logger, videoPath, audioPath)
	return Attachment{Kind: AttachVideo, Path: dest, FileName: name}, nil
}

func (p *Pipeline) audio(ctx context.Context, src media.Source, batch *scratch.Batch) (Attachment, error) {
	stream, ok := media.BestAudio(src.Streams())
	if !ok {
		return Attachment{}, notAvailable("audio")
	}
	path, err := p.materialize(ctx, src, stream, batch, "audio")
	if err != nil {
		return Attachment{}, err
	}
	return Attachment{Kind: AttachAudio, Path: path, FileName: fileName(src.Title(), "", extOf(path))}, nil
}

func (p *Pipeline) subtitles(ctx context.Context, src media.Source, req Request, batch *scratch.Batch) (Attachment, error) {
	stream, ok := media.SelectSubtitle(src.Streams(), req.Language)
	if !ok {
		return Attachment{}, notAvailable("subtitles " + req.Language)
	}
	path, err := p.materialize(ctx, src, stream, batch, "subtitles")
	if err != nil {
		return Attachment{}, err
	}
	label := media.LanguageName(req.Language)
	if !req.Format.NeedsRendering() {
		return Attachment{Kind: AttachDocument, Path: path, FileName: fileName(src.Title(), label, "srt")}, nil
	}

	text, err := media.ReadText(path)
	if err != nil {
		return Attachment{}, &stepError{kind: KindProviderError, err: err}
	}
	if p.renderer == nil {
		return Attachment{}, &stepError{kind: KindRenderError, err: services.Wrap(services.ErrConfiguration, "delivery", "render", "no renderer configured", nil)}
	}
	dest := batch.Path("document", req.Format.Ext())
	doc := render.Document{Title: src.Title(), Body: text}
	if err := p.renderer.Render(ctx, doc, req.Format, dest); err != nil {
		return Attachment{}, &stepError{kind: KindRenderError, err: err}
	}
	return Attachment{Kind: AttachDocument, Path: dest, FileName: fileName(src.Title(), label, req.Format.Ext())}, nil
}

func removeIntermediates(logger *slog.Logger, paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "failed to remove intermediate stream", "intermediate_cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file is retried by batch cleanup"),
			)
		}
	}
}

func (p *Pipeline) logOutcome(ctx context.Context, outcome Outcome) {
	logger := logging.WithContext(ctx, p.logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldOutcome, outcome.Kind.String()),
		logging.String("request", outcome.Request.Kind.String()),
		logging.Int("artifacts_removed", outcome.Cleaned),
	}
	if outcome.Quality != "" {
		attrs = append(attrs, logging.String("quality", outcome.Quality))
	}
	if outcome.Language != "" {
		attrs = append(attrs, logging.String("language", outcome.Language), logging.String("format", string(outcome.Format)))
	}
	if !outcome.Kind.Failed() {
		attrs = append(attrs, logging.String(logging.FieldEventType, "delivery_finished"))
		logger.Info("delivery finished", logging.Args(attrs...)...)
		return
	}
	attrs = append(attrs,
		logging.Error(outcome.Err),
		logging.String(logging.FieldErrorHint, services.Hint(outcome.Err)),
		logging.String(logging.FieldImpact, "user was asked to retry later"),
	)
	logging.WarnWithContext(logger, "delivery failed", "delivery_failed", attrs...)
}

func (p *Pipeline) logFailure(ctx context.Context, msg string, kind Kind, err error) {
	if !kind.Failed() {
		return
	}
	logging.WarnWithContext(logging.WithContext(ctx, p.logger), msg, "inspection_failed",
		logging.String(logging.FieldOutcome, kind.String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.Hint(err)),
		logging.String(logging.FieldImpact, "menu not shown"),
	)
}

func extOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

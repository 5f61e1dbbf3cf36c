package ytdlp

import (
	"context"
	"strings"

	goytdlp "github.com/lrstanley/go-ytdlp"
)

// backend is the slice of yt-dlp the provider drives.
type backend interface {
	// Probe returns the single-video info JSON for url.
	Probe(ctx context.Context, url string) ([]byte, error)
	// Download fetches one format to the output template.
	Download(ctx context.Context, url, formatID, output string) error
	// Subtitles fetches one subtitle track, converted to srt, to the output template.
	Subtitles(ctx context.Context, url, language string, auto bool, output string) error
}

type execBackend struct {
	binary string
}

func (b execBackend) command() *goytdlp.Command {
	cmd := goytdlp.New().NoPlaylist().NoWarnings()
	if b.binary != "" {
		cmd = cmd.SetExecutable(b.binary)
	}
	return cmd
}

func (b execBackend) Probe(ctx context.Context, url string) ([]byte, error) {
	result, err := b.command().DumpSingleJSON().SkipDownload().Run(ctx, url)
	if err != nil {
		return nil, withStderr(err, result)
	}
	return []byte(result.Stdout), nil
}

func (b execBackend) Download(ctx context.Context, url, formatID, output string) error {
	result, err := b.command().
		Format(formatID).
		ForceOverwrites().
		Output(output).
		Run(ctx, url)
	return withStderr(err, result)
}

func (b execBackend) Subtitles(ctx context.Context, url, language string, auto bool, output string) error {
	cmd := b.command().SkipDownload().SubLangs(language).ConvertSubs("srt").Output(output)
	if auto {
		cmd = cmd.WriteAutoSubs()
	} else {
		cmd = cmd.WriteSubs()
	}
	result, err := cmd.Run(ctx, url)
	return withStderr(err, result)
}

// withStderr folds yt-dlp's stderr into the error so classification can see
// the reason the extractor gave.
func withStderr(err error, result *goytdlp.Result) error {
	if err == nil {
		return nil
	}
	if result == nil || strings.TrimSpace(result.Stderr) == "" {
		return err
	}
	return &toolError{err: err, stderr: strings.TrimSpace(result.Stderr)}
}

type toolError struct {
	err    error
	stderr string
}

func (e *toolError) Error() string { return e.err.Error() + ": " + e.stderr }

func (e *toolError) Unwrap() error { return e.err }

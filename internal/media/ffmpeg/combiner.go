package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"aurora/internal/logging"
	"aurora/internal/services"
)

// commandRunner executes a tool and discards its output on success.
type commandRunner func(ctx context.Context, name string, args ...string) error

// outputRunner executes a tool and returns its stdout.
type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Combiner muxes separately downloaded video and audio streams with
// stream copy. The result is probed before it replaces dest.
type Combiner struct {
	binary      string
	probeBinary string
	logger      *slog.Logger
	run         commandRunner
	output      outputRunner
}

// NewCombiner constructs a combiner for the given ffmpeg binary. ffprobe is
// expected next to it.
func NewCombiner(binary string, logger *slog.Logger) *Combiner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Combiner{
		binary:      binary,
		probeBinary: ProbeBinary(binary),
		logger:      logging.NewComponentLogger(logger, "ffmpeg"),
		run:         defaultCommandRunner,
		output:      defaultOutputRunner,
	}
}

// WithCommandRunner allows injecting custom runners for tests.
func (c *Combiner) WithCommandRunner(run commandRunner, output outputRunner) {
	if c == nil {
		return
	}
	if run != nil {
		c.run = run
	}
	if output != nil {
		c.output = output
	}
}

// ProbeBinary derives the ffprobe path that ships alongside an ffmpeg binary.
func ProbeBinary(ffmpegBinary string) string {
	dir, base := filepath.Split(ffmpegBinary)
	if strings.HasPrefix(base, "ffmpeg") {
		return dir + "ffprobe" + strings.TrimPrefix(base, "ffmpeg")
	}
	return "ffprobe"
}

// Combine writes dest from the first video stream of video and the first
// audio stream of audio. Inputs are left in place; the caller owns them.
func (c *Combiner) Combine(ctx context.Context, video, audio, dest string) error {
	if c == nil {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "combine", "combiner not initialized", nil)
	}
	if strings.TrimSpace(dest) == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "combine", "destination path is required", nil)
	}
	for _, input := range []string{video, audio} {
		if _, err := os.Stat(input); err != nil {
			return services.Wrap(services.ErrValidation, "ffmpeg", "combine", "input not found", err)
		}
	}

	ext := filepath.Ext(dest)
	tmpPath := strings.TrimSuffix(dest, ext) + ".partial" + ext
	args := buildArgs(video, audio, tmpPath)

	c.logger.Debug("executing ffmpeg",
		logging.String("video_path", video),
		logging.String("audio_path", audio),
		logging.String("output_path", dest),
	)
	if err := c.run(ctx, c.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "combine", "ffmpeg failed", err)
	}
	if err := c.verify(ctx, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "combine", "failed to move combined file", err)
	}

	c.logger.Info("streams combined",
		logging.String(logging.FieldEventType, "streams_combined"),
		logging.String("output_path", dest),
	)
	return nil
}

func (c *Combiner) verify(ctx context.Context, path string) error {
	result, err := inspect(ctx, c.output, c.probeBinary, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "verify", "ffprobe failed on combined output", err)
	}
	if result.VideoStreamCount() == 0 || result.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "verify",
			fmt.Sprintf("combined output has %d video and %d audio streams", result.VideoStreamCount(), result.AudioStreamCount()), nil)
	}
	return nil
}

func buildArgs(video, audio, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c", "copy",
		"-movflags", "+faststart",
		output,
	}
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func defaultOutputRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}

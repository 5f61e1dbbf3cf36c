// Package botrun wires the bot runtime: configuration, logging, preflight,
// storage, the Telegram poller and the background janitors.
package botrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"aurora/internal/bot"
	"aurora/internal/chat"
	"aurora/internal/config"
	"aurora/internal/delivery"
	"aurora/internal/deps"
	"aurora/internal/directory"
	"aurora/internal/logging"
	"aurora/internal/media/ffmpeg"
	"aurora/internal/media/ytdlp"
	"aurora/internal/messages"
	"aurora/internal/preflight"
	"aurora/internal/render"
	"aurora/internal/router"
	"aurora/internal/scratch"
	"aurora/internal/services/llm"
	"aurora/internal/session"
	"aurora/internal/telegram"
)

// ErrAlreadyRunning reports that another process holds the instance lock.
var ErrAlreadyRunning = errors.New("another aurora instance is already running")

// Options configures process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the bot and blocks until SIGINT/SIGTERM or a fatal error.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir)

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(logger, "failed to release instance lock", "lock_release_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale lock file remains until the next start"),
			)
		}
	}()

	if err := checkReadiness(ctx, cfg, logger); err != nil {
		return err
	}

	area, err := scratch.NewArea(cfg.Paths.ScratchDir, logger)
	if err != nil {
		return err
	}
	if swept := area.CleanStale(ctx, scratch.DefaultStaleAge); len(swept.Removed) > 0 {
		logger.Info("stale scratch artifacts removed",
			logging.Int("removed", len(swept.Removed)),
			logging.String(logging.FieldEventType, "scratch_startup_sweep"),
		)
	}

	users, err := directory.Open(cfg.DirectoryPath())
	if err != nil {
		logging.ErrorWithContext(logger, "open user directory", "directory_open_failed",
			logging.Error(err),
			logging.String("path", cfg.DirectoryPath()),
		)
		return err
	}
	defer users.Close()

	client, err := telegram.NewClient(cfg.Telegram.BaseURL, cfg.Telegram.Token, logger,
		telegram.WithPollTimeout(cfg.Telegram.PollTimeout))
	if err != nil {
		return err
	}

	sessions := session.NewStore()
	catalog := messages.Default()
	handler := bot.New(bot.Config{
		AdminIDs: cfg.Telegram.AdminIDs,
		Creator:  cfg.Telegram.Creator,
	}, bot.Deps{
		Sessions:  sessions,
		Router:    router.NewTable(cfg.Media.Qualities, cfg.Media.SubtitleLanguages),
		Pipeline:  newPipeline(cfg, area, logger),
		Chat:      chat.NewAgent(newCompleter(ctx, cfg, logger), cfg.LLM.SystemPrompt, catalog, logger),
		Directory: users,
		Scratch:   area,
		Out:       client,
		Messages:  catalog,
	}, logger)

	poller := telegram.NewPoller(client, telegram.PollerConfig{
		OffsetPath:     cfg.OffsetPath(),
		AllowedChatIDs: cfg.Telegram.AllowedChatIDs,
		MaxConcurrent:  cfg.Telegram.MaxConcurrent,
	}, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return poller.Run(groupCtx, handler) })
	group.Go(func() error {
		return sessions.RunJanitor(groupCtx, cfg.SessionIdleTTL(), cfg.SessionJanitorInterval(), logger)
	})
	group.Go(func() error { return area.RunSweeper(groupCtx, scratch.DefaultStaleAge, scratch.DefaultStaleAge) })

	logger.Info("aurora started",
		logging.String(logging.FieldEventType, "bot_started"),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("scratch_dir", cfg.Paths.ScratchDir),
		logging.Int("max_concurrent", cfg.Telegram.MaxConcurrent),
	)
	err = group.Wait()
	logger.Info("aurora shutting down", logging.String(logging.FieldEventType, "bot_stopped"))
	return err
}

func newPipeline(cfg *config.Config, area *scratch.Area, logger *slog.Logger) *delivery.Pipeline {
	return delivery.New(delivery.Config{
		Qualities:      cfg.Media.Qualities,
		Languages:      cfg.Media.SubtitleLanguages,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	},
		ytdlp.New(cfg.Media.YtdlpBinary, logger),
		ffmpeg.NewCombiner(cfg.Media.FFmpegBinary, logger),
		render.New(cfg.Render.PDFFontPath),
		area,
		logger,
	)
}

// newCompleter returns nil when no backend can be built, which makes the
// chat agent echo messages.
func newCompleter(ctx context.Context, cfg *config.Config, logger *slog.Logger) llm.Completer {
	backend, err := chat.NewBackend(ctx, cfg.GetLLM(), logger)
	if err != nil {
		logging.WarnWithContext(logger, "chat backend unavailable", "chat_backend_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the [llm] section (aurora config validate)"),
			logging.String(logging.FieldImpact, "chat messages are echoed back"),
		)
		return nil
	}
	if backend == nil {
		return nil
	}
	return backend
}

// checkReadiness fails on missing directories or binaries and only warns
// about the completion API.
func checkReadiness(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	statuses := preflight.CheckSystemDeps(ctx, cfg)
	logDependencySnapshot(logger, cfg, statuses)
	if missing := deps.Missing(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required binary %q: %s", missing[0].Command, missing[0].Detail)
	}
	if err := preflight.Err(preflight.RunAll(cfg)); err != nil {
		return err
	}
	if warning := cfg.PDFFontWarning(); warning != "" {
		logging.WarnWithContext(logger, "pdf font missing for configured languages", "pdf_font_missing",
			logging.String("detail", warning),
			logging.String(logging.FieldErrorHint, "set render.pdf_font_path to a UTF-8 TrueType font"),
			logging.String(logging.FieldImpact, "PDF subtitles in those languages fail with a render error"),
		)
	}
	if llmCfg := cfg.GetLLM(); llmCfg.APIKey != "" {
		if result := preflight.CheckLLM(ctx, "Chat LLM", llmCfg); !result.Passed {
			logging.WarnWithContext(logger, "chat LLM health check failed", "llm_health_failed",
				logging.String("detail", result.Detail),
				logging.String(logging.FieldErrorHint, "verify llm.api_key and network access"),
				logging.String(logging.FieldImpact, "chat replies fall back to apology messages"),
			)
		}
	}
	return nil
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config, statuses []deps.Status) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("llm_key_present", cfg.GetLLM().APIKey != ""),
		logging.String("llm_provider", cfg.LLM.Provider),
		logging.Int("admins", len(cfg.Telegram.AdminIDs)),
	}
	for _, s := range statuses {
		attrs = append(attrs,
			logging.Bool(strings.ToLower(s.Name)+"_available", s.Available),
			logging.String(strings.ToLower(s.Name)+"_version", s.Version),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"aurora/internal/logging"
)

// DefaultMaxConcurrent bounds how many chats are handled at once.
const DefaultMaxConcurrent = 16

// Handler processes one update. It runs on the update's chat lane.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, update Update)

// HandleUpdate calls f.
func (f HandlerFunc) HandleUpdate(ctx context.Context, update Update) { f(ctx, update) }

// UpdateSource supplies updates; *Client is the production implementation.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
}

// PollerConfig configures a Poller.
type PollerConfig struct {
	OffsetPath     string
	AllowedChatIDs []int64
	MaxConcurrent  int
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
}

// Poller long-polls an UpdateSource and dispatches updates to a Handler.
type Poller struct {
	source     UpdateSource
	offsetPath string
	allowed    map[int64]struct{}
	minBackoff time.Duration
	maxBackoff time.Duration
	lanes      *lanes
	logger     *slog.Logger
}

// NewPoller builds a poller over source.
func NewPoller(source UpdateSource, cfg PollerConfig, logger *slog.Logger) *Poller {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 2 * time.Second
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = max(15*time.Second, cfg.MinBackoff)
	}
	logger = logging.NewComponentLogger(logger, "telegram-poller")
	p := &Poller{
		source:     source,
		offsetPath: cfg.OffsetPath,
		minBackoff: cfg.MinBackoff,
		maxBackoff: cfg.MaxBackoff,
		lanes:      newLanes(cfg.MaxConcurrent, logger),
		logger:     logger,
	}
	if len(cfg.AllowedChatIDs) > 0 {
		p.allowed = make(map[int64]struct{}, len(cfg.AllowedChatIDs))
		for _, id := range cfg.AllowedChatIDs {
			p.allowed[id] = struct{}{}
		}
	}
	return p
}

// Run polls until ctx ends, then waits for in-flight handlers and returns nil.
// Poll failures are logged and retried with backoff; only a corrupt offset
// file is fatal.
func (p *Poller) Run(ctx context.Context, handler Handler) error {
	offset, err := LoadOffset(p.offsetPath)
	if err != nil {
		return err
	}
	p.logger.Info("telegram polling started",
		logging.Int64("offset", offset),
		logging.Int("allowed_chats", len(p.allowed)),
	)
	defer p.lanes.wait()

	backoff := p.minBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("telegram polling stopped", logging.Int64("offset", offset))
			return nil
		}
		updates, err := p.source.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logging.WarnWithContext(p.logger, "telegram poll failed", "telegram_poll_failed",
				logging.Error(err),
				logging.Duration("retry_in", backoff),
				logging.String(logging.FieldErrorHint, "check network access and the bot token"),
				logging.String(logging.FieldImpact, "incoming messages are delayed"),
			)
			if !sleepCtx(ctx, backoff) {
				continue
			}
			backoff = min(backoff*2, p.maxBackoff)
			continue
		}
		backoff = p.minBackoff

		next := offset
		for _, update := range updates {
			if update.UpdateID >= next {
				next = update.UpdateID + 1
			}
			p.dispatch(ctx, handler, update)
		}
		if next != offset {
			offset = next
			if err := SaveOffset(p.offsetPath, offset); err != nil {
				logging.WarnWithContext(p.logger, "telegram offset not saved", "telegram_offset_save_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "recent updates may be redelivered after restart"),
				)
			}
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, handler Handler, update Update) {
	chatID := update.ChatID()
	if chatID == 0 {
		p.logger.Debug("telegram update ignored", logging.Int64("update_id", update.UpdateID))
		return
	}
	if p.allowed != nil {
		if _, ok := p.allowed[chatID]; !ok {
			p.logger.Info("telegram message from unlisted chat ignored",
				logging.Int64(logging.FieldChatID, chatID),
				logging.Int64("update_id", update.UpdateID),
			)
			return
		}
	}
	p.lanes.enqueue(ctx, handler, update)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// lanes runs one goroutine per chat with queued work. Each lane drains its
// queue in order and exits when empty; a weighted semaphore caps how many
// handlers run at once.
type lanes struct {
	mu     sync.Mutex
	queues map[int64][]Update
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger *slog.Logger
}

func newLanes(limit int, logger *slog.Logger) *lanes {
	return &lanes{
		queues: make(map[int64][]Update),
		sem:    semaphore.NewWeighted(int64(limit)),
		logger: logger,
	}
}

func (l *lanes) enqueue(ctx context.Context, handler Handler, update Update) {
	chatID := update.ChatID()
	l.mu.Lock()
	queue, running := l.queues[chatID]
	l.queues[chatID] = append(queue, update)
	l.mu.Unlock()
	if running {
		return
	}
	l.wg.Add(1)
	go l.drain(ctx, handler, chatID)
}

func (l *lanes) drain(ctx context.Context, handler Handler, chatID int64) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		queue := l.queues[chatID]
		if len(queue) == 0 {
			delete(l.queues, chatID)
			l.mu.Unlock()
			return
		}
		update := queue[0]
		l.queues[chatID] = queue[1:]
		l.mu.Unlock()

		if err := l.sem.Acquire(ctx, 1); err != nil {
			l.mu.Lock()
			dropped := len(l.queues[chatID]) + 1
			delete(l.queues, chatID)
			l.mu.Unlock()
			l.logger.Info("telegram lane drained on shutdown",
				logging.Int64(logging.FieldChatID, chatID),
				logging.Int("dropped", dropped),
			)
			return
		}
		l.run(ctx, handler, update)
		l.sem.Release(1)
	}
}

func (l *lanes) run(ctx context.Context, handler Handler, update Update) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(l.logger, "telegram handler panicked", "telegram_handler_panic",
				logging.Int64(logging.FieldChatID, update.ChatID()),
				logging.Int64("update_id", update.UpdateID),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	handler.HandleUpdate(ctx, update)
}

func (l *lanes) wait() {
	l.wg.Wait()
}

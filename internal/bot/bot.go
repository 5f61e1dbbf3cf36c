package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"aurora/internal/delivery"
	"aurora/internal/directory"
	"aurora/internal/logging"
	"aurora/internal/messages"
	"aurora/internal/router"
	"aurora/internal/scratch"
	"aurora/internal/services"
	"aurora/internal/session"
	"aurora/internal/telegram"
)

// busyAfter is how long a message waits on the user's previous one before
// the user is told to hold on.
const busyAfter = 2 * time.Second

// Messenger is the outbound chat channel; *telegram.Client implements it.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *telegram.Keyboard) error
	SendDocument(ctx context.Context, chatID int64, file telegram.File) error
	SendVideo(ctx context.Context, chatID int64, file telegram.File) error
	SendAudio(ctx context.Context, chatID int64, file telegram.File) error
}

// Deliverer inspects and delivers media; *delivery.Pipeline implements it.
type Deliverer interface {
	Inspect(ctx context.Context, s session.Session) delivery.Inspection
	Deliver(ctx context.Context, s session.Session, req delivery.Request, tx delivery.Transmitter) delivery.Outcome
}

// Chatter answers free-form text; *chat.Agent implements it.
type Chatter interface {
	Reply(ctx context.Context, text string) string
}

// Directory records users and snapshots them; *directory.Store implements it.
type Directory interface {
	Upsert(ctx context.Context, user directory.User) error
	WriteCSV(ctx context.Context, w io.Writer) (int, error)
}

// Config holds the handler's policy settings.
type Config struct {
	AdminIDs []int64
	Creator  string
}

// Deps are the collaborators a Handler drives.
type Deps struct {
	Sessions  *session.Store
	Router    *router.Table
	Pipeline  Deliverer
	Chat      Chatter
	Directory Directory
	Scratch   *scratch.Area
	Out       Messenger
	Messages  *messages.Catalog
}

// Handler processes inbound updates.
type Handler struct {
	cfg      Config
	sessions *session.Store
	table    *router.Table
	pipeline Deliverer
	chat     Chatter
	users    Directory
	area     *scratch.Area
	out      Messenger
	text     *messages.Catalog
	logger   *slog.Logger
}

// New builds a Handler. A nil Router uses router.DefaultTable and a nil
// catalogue uses messages.Default.
func New(cfg Config, deps Deps, logger *slog.Logger) *Handler {
	if deps.Router == nil {
		deps.Router = router.DefaultTable()
	}
	if deps.Messages == nil {
		deps.Messages = messages.Default()
	}
	if strings.TrimSpace(cfg.Creator) == "" {
		cfg.Creator = "the Aurora maintainers"
	}
	return &Handler{
		cfg:      cfg,
		sessions: deps.Sessions,
		table:    deps.Router,
		pipeline: deps.Pipeline,
		chat:     deps.Chat,
		users:    deps.Directory,
		area:     deps.Scratch,
		out:      deps.Out,
		text:     deps.Messages,
		logger:   logging.NewComponentLogger(logger, "bot"),
	}
}

// inbound is one message with its resolved identities.
type inbound struct {
	userID int64
	chatID int64
	from   telegram.User
	text   string
}

// HandleUpdate processes one update. It never returns an error; failures
// are logged and, where useful, answered with a generic message.
func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	in := inbound{userID: msg.From.ID, chatID: msg.Chat.ID, from: *msg.From, text: msg.Text}
	ctx = services.WithUserID(ctx, in.userID)
	ctx = services.WithRequestID(ctx, uuid.NewString())

	h.recordUser(ctx, in.from)

	release, err := h.lockUser(ctx, in)
	if err != nil {
		return
	}
	defer release()

	if strings.HasPrefix(strings.TrimSpace(in.text), "/") {
		if h.command(ctx, in) {
			return
		}
	}
	h.route(ctx, in)
}

// lockUser waits for the user's previous message, telling the user once if
// that takes a while.
func (h *Handler) lockUser(ctx context.Context, in inbound) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, busyAfter)
	release, err := h.sessions.Lock(waitCtx, in.userID)
	cancel()
	if err == nil {
		return release, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	h.reply(ctx, in.chatID, h.text.Text(messages.Busy), nil)
	return h.sessions.Lock(ctx, in.userID)
}

func (h *Handler) recordUser(ctx context.Context, from telegram.User) {
	if h.users == nil {
		return
	}
	err := h.users.Upsert(ctx, directory.User{
		ID:        from.ID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.Username,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, h.logger), "user directory upsert failed", "directory_upsert_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the data_dir database (aurora doctor)"),
			logging.String(logging.FieldImpact, "user is missing from the export"),
		)
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, kb *telegram.Keyboard) {
	if err := h.out.SendMessage(ctx, chatID, text, kb); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logging.WarnWithContext(logging.WithContext(ctx, h.logger), "reply not sent", "reply_failed",
			logging.Int64(logging.FieldChatID, chatID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check telegram connectivity and the bot token"),
			logging.String(logging.FieldImpact, "user did not receive a reply"),
		)
	}
}

func (h *Handler) isAdmin(userID int64) bool {
	return slices.Contains(h.cfg.AdminIDs, userID)
}

func displayName(u telegram.User) string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return "there"
}

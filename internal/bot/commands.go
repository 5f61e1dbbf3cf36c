package bot

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"aurora/internal/logging"
	"aurora/internal/messages"
	"aurora/internal/services"
	"aurora/internal/telegram"
)

// parseCommand splits "/Export@aurora_bot now" into "export".
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word, _, _ := strings.Cut(text[1:], " ")
	word, _, _ = strings.Cut(word, "@")
	word = strings.ToLower(strings.TrimSpace(word))
	return word, word != ""
}

// command runs a slash command and reports whether text was one.
// Unknown commands fall through to routing.
func (h *Handler) command(ctx context.Context, in inbound) bool {
	name, ok := parseCommand(in.text)
	if !ok {
		return false
	}
	ctx = services.WithAction(ctx, "command_"+name)
	switch name {
	case "start":
		h.sessions.Clear(in.userID)
		h.reply(ctx, in.chatID, h.text.Text(messages.Greeting, "name", displayName(in.from)), telegram.RemoveKeyboard)
	case "help":
		h.reply(ctx, in.chatID, h.text.Text(messages.Help), nil)
	case "about", "creator":
		h.reply(ctx, in.chatID, h.text.Text(messages.About, "creator", h.cfg.Creator), nil)
	case "export":
		h.export(ctx, in)
	default:
		return false
	}
	logging.WithContext(ctx, h.logger).Debug("command handled", logging.String("command", name))
	return true
}

// export sends the directory snapshot as a CSV document. The file lives in
// a scratch batch and is removed whatever happens.
func (h *Handler) export(ctx context.Context, in inbound) {
	logger := logging.WithContext(ctx, h.logger)
	if !h.isAdmin(in.userID) {
		logger.Info("export refused", logging.String(logging.FieldOutcome, "denied"))
		h.reply(ctx, in.chatID, h.text.Text(messages.ExportDenied), nil)
		return
	}
	if h.users == nil || h.area == nil {
		logging.WarnWithContext(logger, "user export unavailable", "export_unavailable",
			logging.Bool("directory_configured", h.users != nil),
			logging.Bool("scratch_configured", h.area != nil),
			logging.String(logging.FieldErrorHint, "the handler was built without a user directory or scratch area"),
			logging.String(logging.FieldImpact, "admin did not receive the user list"),
		)
		h.reply(ctx, in.chatID, h.text.Text(messages.ExportFailed), nil)
		return
	}
	requestID, _ := services.RequestIDFromContext(ctx)
	batch := h.area.NewBatch(in.userID, requestID)
	defer batch.Cleanup()

	path := batch.Path("users", "csv")
	count, err := h.writeSnapshot(ctx, path)
	if err == nil {
		err = h.out.SendDocument(ctx, in.chatID, telegram.File{
			Path:     path,
			FileName: "aurora-users.csv",
			Caption:  h.text.Text(messages.ExportCaption, "count", strconv.Itoa(count)),
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "user export failed", "export_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Hint(err)),
			logging.String(logging.FieldImpact, "admin did not receive the user list"),
		)
		h.reply(ctx, in.chatID, h.text.Text(messages.ExportFailed), nil)
		return
	}
	logger.Info("user export sent",
		logging.Int("users", count),
		logging.String(logging.FieldOutcome, "delivered"),
	)
}

func (h *Handler) writeSnapshot(ctx context.Context, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	count, err := h.users.WriteCSV(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close snapshot: %w", closeErr)
	}
	return count, err
}

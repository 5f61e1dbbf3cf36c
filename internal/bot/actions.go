package bot

import (
	"context"
	"errors"

	"aurora/internal/delivery"
	"aurora/internal/logging"
	"aurora/internal/messages"
	"aurora/internal/router"
	"aurora/internal/services"
	"aurora/internal/session"
	"aurora/internal/telegram"
)

// route runs the intent state machine for plain text and executes the decision.
func (h *Handler) route(ctx context.Context, in inbound) {
	s := h.sessions.GetOrCreate(in.userID)
	d := h.table.RouteSession(s, in.text)
	ctx = services.WithAction(ctx, d.Action.String())
	logging.WithContext(ctx, h.logger).Debug("message routed",
		logging.String("state", s.State.String()),
		logging.String("next", d.Next.String()),
	)

	switch d.Action {
	case router.ActionChat:
		h.reply(ctx, in.chatID, h.chat.Reply(ctx, d.Text), nil)
	case router.ActionPresentOptions:
		h.presentOptions(ctx, in, d.Source)
	case router.ActionPresentQualities:
		h.presentQualities(ctx, in, s)
	case router.ActionPresentLanguages:
		h.presentLanguages(ctx, in, s)
	case router.ActionDeliverVideo:
		h.deliver(ctx, in, s, delivery.VideoRequest(d.Quality))
	case router.ActionDeliverAudio:
		h.deliver(ctx, in, s, delivery.AudioRequest())
	case router.ActionDeliverSubtitles:
		h.deliver(ctx, in, s, delivery.SubtitlesRequest(d.Language, d.Format))
	case router.ActionReset:
		h.sessions.SetState(in.userID, d.Next)
		if d.Next == session.SourceSelected {
			h.reply(ctx, in.chatID, h.text.Text(messages.BackToOptions), optionsKeyboard())
			return
		}
		h.reply(ctx, in.chatID, h.text.Text(messages.BackNoSource), telegram.RemoveKeyboard)
	case router.ActionMissingSource:
		h.sessions.Clear(in.userID)
		h.reply(ctx, in.chatID, h.text.Text(messages.MissingSource), telegram.RemoveKeyboard)
	}
}

// presentOptions selects a new source, replacing any previous one. A failed
// title lookup still shows the menu; the delivery step reports the fault.
func (h *Handler) presentOptions(ctx context.Context, in inbound, source string) {
	s := h.sessions.SetSource(in.userID, source)
	logging.WithContext(ctx, h.logger).Info("source selected", logging.String(logging.FieldSourceURL, source))
	title := source
	if insp := h.pipeline.Inspect(ctx, s); insp.Kind == delivery.KindDelivered && insp.Title != "" {
		title = insp.Title
	}
	h.reply(ctx, in.chatID, h.text.Text(messages.ChooseOption, "title", title), optionsKeyboard())
}

func (h *Handler) presentQualities(ctx context.Context, in inbound, s session.Session) {
	insp := h.pipeline.Inspect(ctx, s)
	if insp.Kind != delivery.KindDelivered {
		h.sessions.SetState(in.userID, session.SourceSelected)
		h.reply(ctx, in.chatID, h.text.Text(inspectionKey(insp.Kind)), optionsKeyboard())
		return
	}
	if len(insp.Qualities) == 0 {
		h.sessions.SetState(in.userID, session.SourceSelected)
		h.reply(ctx, in.chatID, h.text.Text(messages.NoQualities), optionsKeyboard())
		return
	}
	h.sessions.SetState(in.userID, session.AwaitingQualityChoice)
	h.reply(ctx, in.chatID, h.text.Text(messages.ChooseQuality), qualityKeyboard(insp.Qualities))
}

func (h *Handler) presentLanguages(ctx context.Context, in inbound, s session.Session) {
	insp := h.pipeline.Inspect(ctx, s)
	if insp.Kind != delivery.KindDelivered {
		h.sessions.SetState(in.userID, session.SourceSelected)
		h.reply(ctx, in.chatID, h.text.Text(inspectionKey(insp.Kind)), optionsKeyboard())
		return
	}
	if len(insp.Languages) == 0 {
		h.sessions.SetState(in.userID, session.SourceSelected)
		h.reply(ctx, in.chatID, h.text.Text(messages.NoLanguages), optionsKeyboard())
		return
	}
	h.sessions.SetState(in.userID, session.AwaitingLanguageChoice)
	h.reply(ctx, in.chatID, h.text.Text(messages.ChooseLanguage), languageKeyboard(insp.Languages))
}

// deliver runs a terminal action. The session returns to SourceSelected
// whatever the outcome.
func (h *Handler) deliver(ctx context.Context, in inbound, s session.Session, req delivery.Request) {
	h.reply(ctx, in.chatID, h.text.Text(messages.Preparing), nil)
	outcome := h.pipeline.Deliver(ctx, s, req, transmitter{out: h.out, chatID: in.chatID})
	if outcome.Kind == delivery.KindMissingSource {
		h.sessions.Clear(in.userID)
		h.reply(ctx, in.chatID, h.text.Text(messages.MissingSource), telegram.RemoveKeyboard)
		return
	}
	h.sessions.SetState(in.userID, session.SourceSelected)
	h.reply(ctx, in.chatID, h.text.Text(outcomeKey(outcome)), optionsKeyboard())
}

// outcomeKey maps a delivery outcome to its user-facing message.
func outcomeKey(o delivery.Outcome) string {
	switch o.Kind {
	case delivery.KindDelivered:
		return messages.Delivered
	case delivery.KindNotAvailable:
		return messages.NotAvailable
	case delivery.KindMissingSource:
		return messages.MissingSource
	case delivery.KindRenderError:
		return messages.RenderError
	case delivery.KindTransmitError:
		if errors.Is(o.Err, delivery.ErrTooLarge) {
			return messages.TooLarge
		}
		return messages.TransmitError
	default:
		return messages.ProviderError
	}
}

func inspectionKey(kind delivery.Kind) string {
	return outcomeKey(delivery.Outcome{Kind: kind})
}

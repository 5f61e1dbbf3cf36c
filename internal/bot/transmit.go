package bot

import (
	"context"

	"aurora/internal/delivery"
	"aurora/internal/telegram"
)

// transmitter sends delivery attachments to one chat.
type transmitter struct {
	out    Messenger
	chatID int64
}

func (t transmitter) Send(ctx context.Context, a delivery.Attachment) error {
	file := telegram.File{Path: a.Path, FileName: a.FileName, Caption: a.Caption}
	switch a.Kind {
	case delivery.AttachVideo:
		return t.out.SendVideo(ctx, t.chatID, file)
	case delivery.AttachAudio:
		return t.out.SendAudio(ctx, t.chatID, file)
	default:
		return t.out.SendDocument(ctx, t.chatID, file)
	}
}

package bot

import (
	"context"
	"os"
	"sync"
	"testing"

	"aurora/internal/delivery"
	"aurora/internal/directory"
	"aurora/internal/messages"
	"aurora/internal/router"
	"aurora/internal/scratch"
	"aurora/internal/session"
	"aurora/internal/telegram"
	"aurora/internal/testsupport"
)

type sentMessage struct {
	ChatID   int64
	Text     string
	Keyboard *telegram.Keyboard
}

type sentFile struct {
	Method  string
	ChatID  int64
	File    telegram.File
	Content string
}

type fakeMessenger struct {
	mu      sync.Mutex
	msgs    []sentMessage
	files   []sentFile
	fileErr error
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string, kb *telegram.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, sentMessage{ChatID: chatID, Text: text, Keyboard: kb})
	return nil
}

func (f *fakeMessenger) sendFile(method string, chatID int64, file telegram.File) error {
	data, _ := os.ReadFile(file.Path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fileErr != nil {
		return f.fileErr
	}
	f.files = append(f.files, sentFile{Method: method, ChatID: chatID, File: file, Content: string(data)})
	return nil
}

func (f *fakeMessenger) SendDocument(_ context.Context, chatID int64, file telegram.File) error {
	return f.sendFile("document", chatID, file)
}

func (f *fakeMessenger) SendVideo(_ context.Context, chatID int64, file telegram.File) error {
	return f.sendFile("video", chatID, file)
}

func (f *fakeMessenger) SendAudio(_ context.Context, chatID int64, file telegram.File) error {
	return f.sendFile("audio", chatID, file)
}

func (f *fakeMessenger) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		return sentMessage{}
	}
	return f.msgs[len(f.msgs)-1]
}

type fakeDeliverer struct {
	t          *testing.T
	mu         sync.Mutex
	inspection delivery.Inspection
	outcome    delivery.Outcome
	inspects   int
	requests   []delivery.Request
}

func (f *fakeDeliverer) Inspect(_ context.Context, s session.Session) delivery.Inspection {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspects++
	if !s.HasSource() {
		return delivery.Inspection{Kind: delivery.KindMissingSource}
	}
	return f.inspection
}

func (f *fakeDeliverer) Deliver(ctx context.Context, s session.Session, req delivery.Request, tx delivery.Transmitter) delivery.Outcome {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	outcome := f.outcome
	f.mu.Unlock()
	if !s.HasSource() {
		return delivery.Outcome{Kind: delivery.KindMissingSource, Request: req}
	}
	outcome.Request = req
	if outcome.Kind != delivery.KindDelivered {
		return outcome
	}
	kind := delivery.AttachDocument
	switch req.Kind {
	case delivery.RequestVideo:
		kind = delivery.AttachVideo
	case delivery.RequestAudio:
		kind = delivery.AttachAudio
	}
	path := testsupport.WriteArtifact(f.t, f.t.TempDir(), "artifact", 4)
	if err := tx.Send(ctx, delivery.Attachment{Kind: kind, Path: path, FileName: "clip", Caption: "Clip"}); err != nil {
		outcome.Kind = delivery.KindTransmitError
		outcome.Err = err
	}
	return outcome
}

func (f *fakeDeliverer) delivered() []delivery.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]delivery.Request(nil), f.requests...)
}

type echoChat struct{}

func (echoChat) Reply(_ context.Context, text string) string { return "echo: " + text }

type harness struct {
	handler  *Handler
	sessions *session.Store
	out      *fakeMessenger
	pipeline *fakeDeliverer
	users    *directory.Store
	area     *scratch.Area
	text     *messages.Catalog
	nextID   int64
}

func newHarness(t *testing.T, admins ...int64) *harness {
	t.Helper()
	h := &harness{
		sessions: session.NewStore(),
		out:      &fakeMessenger{},
		pipeline: &fakeDeliverer{
			t: t,
			inspection: delivery.Inspection{
				Kind:      delivery.KindDelivered,
				Title:     "Demo clip",
				Qualities: []string{"360p", "720p"},
				Languages: []string{"en"},
			},
			outcome: delivery.Outcome{Kind: delivery.KindDelivered, Title: "Demo clip"},
		},
		users: testsupport.MustOpenDirectory(t),
		area:  testsupport.MustScratchArea(t),
		text:  messages.Default(),
	}
	h.handler = New(Config{AdminIDs: admins, Creator: "@maker"}, Deps{
		Sessions:  h.sessions,
		Router:    router.DefaultTable(),
		Pipeline:  h.pipeline,
		Chat:      echoChat{},
		Directory: h.users,
		Scratch:   h.area,
		Out:       h.out,
	}, nil)
	return h
}

func (h *harness) send(userID int64, text string) sentMessage {
	h.nextID++
	h.handler.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: h.nextID,
		Message: &telegram.Message{
			MessageID: h.nextID,
			From:      &telegram.User{ID: userID, FirstName: "Ada", Username: "ada"},
			Chat:      telegram.Chat{ID: userID, Type: "private"},
			Text:      text,
		},
	})
	return h.out.last()
}

func keyboardLabels(kb *telegram.Keyboard) []string {
	if kb == nil {
		return nil
	}
	var labels []string
	for _, row := range kb.Rows {
		labels = append(labels, row...)
	}
	return labels
}

package telegram

import (
	"encoding/json"
	"fmt"
)

// Update is one entry from getUpdates. Only message updates are decoded.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// ChatID returns the chat the update belongs to, or 0 for non-message updates.
func (u Update) ChatID() int64 {
	if u.Message == nil {
		return 0
	}
	return u.Message.Chat.ID
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// User identifies the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat identifies where a message was sent.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Keyboard is a reply keyboard. A nil *Keyboard leaves the current keyboard
// alone; RemoveKeyboard hides it.
type Keyboard struct {
	Rows   [][]string
	Remove bool
}

// RemoveKeyboard hides any reply keyboard on the client.
var RemoveKeyboard = &Keyboard{Remove: true}

// NewKeyboard lays labels out in rows of perRow buttons, followed by any
// extra single-button rows.
func NewKeyboard(labels []string, perRow int, extra ...string) *Keyboard {
	if perRow <= 0 {
		perRow = 1
	}
	kb := &Keyboard{}
	for start := 0; start < len(labels); start += perRow {
		end := min(start+perRow, len(labels))
		kb.Rows = append(kb.Rows, append([]string(nil), labels[start:end]...))
	}
	for _, label := range extra {
		kb.Rows = append(kb.Rows, []string{label})
	}
	return kb
}

type keyboardButton struct {
	Text string `json:"text"`
}

type replyKeyboardMarkup struct {
	Keyboard       [][]keyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard"`
}

type replyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// MarshalJSON renders the reply_markup object.
func (k *Keyboard) MarshalJSON() ([]byte, error) {
	if k.Remove {
		return json.Marshal(replyKeyboardRemove{RemoveKeyboard: true})
	}
	markup := replyKeyboardMarkup{ResizeKeyboard: true}
	for _, row := range k.Rows {
		buttons := make([]keyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, keyboardButton{Text: label})
		}
		markup.Keyboard = append(markup.Keyboard, buttons)
	}
	return json.Marshal(markup)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
	Result      json.RawMessage `json:"result"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters,omitempty"`
}

// APIError is a non-ok Bot API reply.
type APIError struct {
	Method      string
	StatusCode  int
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = "unknown error"
	}
	if e.Code != 0 {
		return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, desc)
	}
	return fmt.Sprintf("telegram %s: status %d: %s", e.Method, e.StatusCode, desc)
}

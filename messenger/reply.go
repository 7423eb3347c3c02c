// Package messenger delivers outbound messages to chats.
package messenger

import "context"

// Button is an inline button carrying an opaque callback payload
type Button struct {
	Text string
	Data string
}

// Reply is an outbound text message with optional inline buttons and an optional
// persistent reply menu. Buttons and Menu are mutually exclusive on the wire;
// when both are set the inline buttons win.
type Reply struct {
	Text       string
	Buttons    [][]Button
	Menu       [][]string
	RemoveMenu bool
}

// Text builds a plain text reply
func Text(text string) Reply {
	return Reply{Text: text}
}

// WithText replaces the text and keeps the markup
func (r Reply) WithText(text string) Reply {
	r.Text = text
	return r
}

// WithButtons attaches one button per row
func (r Reply) WithButtons(buttons ...Button) Reply {
	rows := make([][]Button, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Button{b})
	}
	r.Buttons = rows
	return r
}

// WithButtonRow attaches all buttons in a single row
func (r Reply) WithButtonRow(buttons ...Button) Reply {
	r.Buttons = [][]Button{buttons}
	return r
}

// WithMenu attaches a persistent reply menu with one label per row
func (r Reply) WithMenu(labels ...string) Reply {
	rows := make([][]string, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []string{l})
	}
	r.Menu = rows
	return r
}

// WithoutMenu asks the client to hide any persistent menu
func (r Reply) WithoutMenu() Reply {
	r.RemoveMenu = true
	return r
}

// Sender delivers replies to a chat
type Sender interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
}

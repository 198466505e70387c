package server

import (
	"fmt"

	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/dynamo"
	"github.com/san-kum/cradle/internal/session"
)

// Client message types.
const (
	MsgPointerDown  = "pointer_down"
	MsgPointerMove  = "pointer_move"
	MsgPointerUp    = "pointer_up"
	MsgPointerLeave = "pointer_leave"
	MsgResize       = "resize"
	MsgCommand      = "command"
)

// Server message types.
const (
	MsgHello = "hello"
	MsgFrame = "frame"
	MsgError = "error"
)

// Message is what a browser sends.
type Message struct {
	Type    string              `json:"type"`
	X       float64             `json:"x,omitempty"`
	Y       float64             `json:"y,omitempty"`
	Width   float64             `json:"width,omitempty"`
	Height  float64             `json:"height,omitempty"`
	Command *config.CommandSpec `json:"command,omitempty"`
}

// Envelope is what the server sends back.
type Envelope struct {
	Type     string         `json:"type"`
	Session  string         `json:"session,omitempty"`
	Settings *config.Config `json:"settings,omitempty"`
	Frame    *session.Frame `json:"frame,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Event turns a message into input for the session loop. Errors raised while
// the event runs are reported through fail.
func (m Message) Event(fail func(error)) (session.Event, error) {
	switch m.Type {
	case MsgPointerDown:
		return func(s *session.Session) { s.PointerDown(m.X, m.Y) }, nil
	case MsgPointerMove:
		return func(s *session.Session) { s.PointerMove(m.X, m.Y) }, nil
	case MsgPointerUp:
		return func(s *session.Session) { s.PointerUp() }, nil
	case MsgPointerLeave:
		return func(s *session.Session) { s.PointerLeave() }, nil
	case MsgResize:
		return func(s *session.Session) {
			if err := s.Resize(m.Width, m.Height); err != nil {
				fail(err)
			}
		}, nil
	case MsgCommand:
		if m.Command == nil {
			return nil, fmt.Errorf("command message without command: %w", dynamo.ErrParameterBounds)
		}
		cmd, err := m.Command.Command()
		if err != nil {
			return nil, err
		}
		return func(s *session.Session) {
			if err := s.Apply(cmd); err != nil {
				fail(err)
			}
		}, nil
	default:
		return nil, fmt.Errorf("message type %q: %w", m.Type, dynamo.ErrInvalidState)
	}
}

// Package conversation keeps track of where each user is in a multi-step dialogue.
package conversation

import (
	"context"
	"errors"
)

var ErrStateBackend = errors.New("conversation state backend failure")

// Flow identifies a multi-step dialogue
type Flow string

// Step identifies the input a flow is waiting for
type Step string

// State is the progress of a single user through a flow together with the
// fields collected so far.
type State struct {
	Flow        Flow   `json:"flow"`
	Step        Step   `json:"step"`
	MeetingID   uint   `json:"meeting_id,omitempty"`
	FeedbackID  uint   `json:"feedback_id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Next returns a copy of the state moved to another step of the same flow
func (s State) Next(step Step) State {
	s.Step = step
	return s
}

// Store holds at most one active State per user. Setting a state replaces
// whatever the user had before.
type Store interface {
	Get(ctx context.Context, userID int64) (State, bool, error)
	Set(ctx context.Context, userID int64, state State) error
	Clear(ctx context.Context, userID int64) error
}

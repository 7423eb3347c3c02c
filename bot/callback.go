package bot

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

var ErrMalformedCallback = errors.New("malformed callback data")

// Action is the tag of an inline button
type Action string

const (
	ActionStart             Action = "start_bot"
	ActionRoleOrganizer     Action = "role_admin"
	ActionRoleStaff         Action = "role_guest"
	ActionMeetingMenu       Action = "meeting_management"
	ActionStaffMenu         Action = "employee_management"
	ActionCreateReminder    Action = "create_reminder"
	ActionCreateNote        Action = "create_note"
	ActionListMeetings      Action = "list_meeting"
	ActionDeleteMeeting     Action = "delete_meeting"
	ActionNoteMeeting       Action = "select_meeting_note"
	ActionReminderMeeting   Action = "select_meeting_reminder"
	ActionInviteMeeting     Action = "select_meeting"
	ActionInviteUser        Action = "select_user"
	ActionRespondInvitation Action = "respond_invitation"
	ActionRespondFeedback   Action = "respond_feedback"
	ActionRemoveStaff       Action = "delete_guest"
	ActionRestoreStaff      Action = "restore_guest"
	ActionViewInvitees      Action = "view_invited_users"
)

type payloadShape struct {
	ids      int
	response bool
}

var shapes = map[Action]payloadShape{
	ActionStart:             {},
	ActionRoleOrganizer:     {},
	ActionRoleStaff:         {},
	ActionMeetingMenu:       {},
	ActionStaffMenu:         {},
	ActionCreateReminder:    {},
	ActionCreateNote:        {},
	ActionListMeetings:      {},
	ActionDeleteMeeting:     {ids: 1},
	ActionNoteMeeting:       {ids: 1},
	ActionReminderMeeting:   {ids: 1},
	ActionInviteMeeting:     {ids: 1},
	ActionInviteUser:        {ids: 2},
	ActionRespondInvitation: {ids: 1, response: true},
	ActionRespondFeedback:   {ids: 1},
	ActionRemoveStaff:       {ids: 1},
	ActionRestoreStaff:      {ids: 1},
	ActionViewInvitees:      {ids: 1},
}

// longest tags first so "select_meeting_note_1" never matches "select_meeting"
var actionsByLength = func() []Action {
	actions := make([]Action, 0, len(shapes))
	for a := range shapes {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool {
		return len(actions[i]) > len(actions[j])
	})
	return actions
}()

// Callback is a decoded inline button payload.
// On the wire it is "<action>_<id>[_<id2>]" or "<action>_<id>_<response>".
type Callback struct {
	Action   Action
	ID       uint
	SecondID uint
	Response storage.InvitationResponse
}

func (c Callback) Encode() string {
	shape := shapes[c.Action]

	parts := []string{string(c.Action)}
	if shape.ids >= 1 {
		parts = append(parts, strconv.FormatUint(uint64(c.ID), 10))
	}
	if shape.ids >= 2 {
		parts = append(parts, strconv.FormatUint(uint64(c.SecondID), 10))
	}
	if shape.response {
		parts = append(parts, string(c.Response))
	}
	return strings.Join(parts, "_")
}

// DecodeCallback parses button data produced by Encode
func DecodeCallback(data string) (Callback, error) {
	for _, action := range actionsByLength {
		tag := string(action)
		if data != tag && !strings.HasPrefix(data, tag+"_") {
			continue
		}

		var args []string
		if rest := strings.TrimPrefix(data, tag); rest != "" {
			args = strings.Split(strings.TrimPrefix(rest, "_"), "_")
		}

		shape := shapes[action]
		want := shape.ids
		if shape.response {
			want++
		}
		if len(args) != want {
			return Callback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
		}

		cb := Callback{Action: action}
		ids := make([]uint, shape.ids)
		for i := 0; i < shape.ids; i++ {
			id, err := strconv.ParseUint(args[i], 10, 64)
			if err != nil {
				return Callback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
			}
			ids[i] = uint(id)
		}
		if shape.ids >= 1 {
			cb.ID = ids[0]
		}
		if shape.ids >= 2 {
			cb.SecondID = ids[1]
		}

		if shape.response {
			switch r := storage.InvitationResponse(args[len(args)-1]); r {
			case storage.ResponseAccepted, storage.ResponseDeclined:
				cb.Response = r
			default:
				return Callback{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
			}
		}

		return cb, nil
	}

	return Callback{}, fmt.Errorf("%w: unknown action in %q", ErrMalformedCallback, data)
}

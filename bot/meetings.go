package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

func (d *Dialogue) startCreateMeeting(ctx context.Context, req *request) error {
	if err := d.setState(ctx, req, conversation.State{Flow: FlowCreateMeeting, Step: StepAwaitTitle}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskTitle).WithoutMenu())
	return nil
}

func (d *Dialogue) enterTitle(ctx context.Context, req *request) error {
	title := strings.TrimSpace(req.Text)
	if title == "" {
		return invalid(msgEmptyTitle, nil)
	}

	state := req.state.Next(StepAwaitDescription)
	state.Title = title
	if err := d.setState(ctx, req, state); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskDescription))
	return nil
}

func (d *Dialogue) enterDescription(ctx context.Context, req *request) error {
	state := req.state.Next(StepAwaitScheduledTime)
	state.Description = strings.TrimSpace(req.Text)
	if err := d.setState(ctx, req, state); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskScheduledAt))
	return nil
}

func (d *Dialogue) enterScheduledTime(ctx context.Context, req *request) error {
	scheduledAt, err := time.ParseInLocation(dateTimeLayout, strings.TrimSpace(req.Text), d.loc)
	if err != nil {
		return invalid(msgBadDateTime, err)
	}

	meeting, err := d.storage.CreateMeeting(ctx, req.user.ID, req.state.Title, req.state.Description, scheduledAt)
	if err != nil {
		return err
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Meeting created", userAttrs(req.user), "meeting_id", meeting.ID, "scheduled_at", meeting.ScheduledAt)
	d.send(ctx, req.ChatID, meetingMenu.WithText(msgMeetingCreated))
	return nil
}

func (d *Dialogue) startDeleteMeeting(ctx context.Context, req *request) error {
	meetings, err := d.storage.ListMeetingsByCreator(ctx, req.user.ID)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoOwnMeetings))
		return nil
	}

	if err := d.setState(ctx, req, conversation.State{Flow: FlowDeleteMeeting, Step: StepAwaitChoice}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgChooseDelete).WithButtons(d.meetingButtons(meetings, ActionDeleteMeeting)...))
	return nil
}

func (d *Dialogue) deleteMeeting(ctx context.Context, req *request) error {
	meeting, err := d.meeting(ctx, req.callback.ID)
	if err != nil {
		return err
	}
	if meeting.CreatorID != req.user.ID {
		return ErrUnauthorized
	}

	if err := d.storage.DeleteMeeting(ctx, meeting.ID); err != nil {
		return notFound(err, msgMeetingMissing)
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Meeting deleted", userAttrs(req.user), "meeting_id", meeting.ID)
	d.send(ctx, req.ChatID, messenger.Text(msgMeetingDeleted))
	return nil
}

// listMeetings shows every meeting to organizers and accepted meetings to everyone else
func (d *Dialogue) listMeetings(ctx context.Context, req *request) error {
	var (
		meetings []storage.Meeting
		err      error
	)
	if req.user.IsOrganizer() {
		meetings, err = d.storage.ListMeetings(ctx)
	} else {
		meetings, err = d.storage.ListAcceptedMeetings(ctx, req.user.ID, time.Time{})
	}
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoMeetings))
		return nil
	}

	var sb strings.Builder
	sb.WriteString(msgMeetingList)
	for _, m := range meetings {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, msgMeetingEntry, m.Title, m.Description, d.formatTime(m.ScheduledAt))

		notes, err := d.storage.ListNotes(ctx, m.ID)
		if err != nil {
			return err
		}
		if len(notes) > 0 {
			sb.WriteString(msgMeetingNotes)
			for _, n := range notes {
				sb.WriteString("- " + n.Text + "\n")
			}
		}

		reminders, err := d.storage.ListReminders(ctx, m.ID)
		if err != nil {
			return err
		}
		if len(reminders) > 0 {
			sb.WriteString(msgMeetingAlerts)
			for _, r := range reminders {
				sb.WriteString("- " + d.formatTime(r.FireAt) + "\n")
			}
		}
	}

	d.send(ctx, req.ChatID, messenger.Text(strings.TrimRight(sb.String(), "\n")))
	return nil
}

// availableMeetings lists the meetings a user may attach notes and reminders to:
// all of them for organizers, upcoming accepted ones for staff.
func (d *Dialogue) availableMeetings(ctx context.Context, user *storage.User) ([]storage.Meeting, error) {
	if user.IsOrganizer() {
		return d.storage.ListMeetings(ctx)
	}
	return d.storage.ListAcceptedMeetings(ctx, user.ID, d.now())
}

// availableMeeting loads a meeting picked from a list built by availableMeetings.
// Staff lose access once the meeting leaves their list.
func (d *Dialogue) availableMeeting(ctx context.Context, user *storage.User, id uint) (*storage.Meeting, error) {
	meeting, err := d.meeting(ctx, id)
	if err != nil || user.IsOrganizer() {
		return meeting, err
	}

	meetings, err := d.availableMeetings(ctx, user)
	if err != nil {
		return nil, err
	}
	for _, m := range meetings {
		if m.ID == meeting.ID {
			return meeting, nil
		}
	}
	return nil, ErrUnauthorized
}

func (d *Dialogue) meeting(ctx context.Context, id uint) (*storage.Meeting, error) {
	meeting, err := d.storage.GetMeeting(ctx, id)
	if err != nil {
		return nil, notFound(err, msgMeetingMissing)
	}
	return meeting, nil
}

func (d *Dialogue) meetingButtons(meetings []storage.Meeting, action Action) []messenger.Button {
	buttons := make([]messenger.Button, 0, len(meetings))
	for _, m := range meetings {
		buttons = append(buttons, messenger.Button{
			Text: fmt.Sprintf("%s (%s)", m.Title, d.formatTime(m.ScheduledAt)),
			Data: Callback{Action: action, ID: m.ID}.Encode(),
		})
	}
	return buttons
}

package bot

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
)

// maxReminderMinutes is the largest offset a time.Duration can hold
const maxReminderMinutes = math.MaxInt64 / int64(time.Minute)

func (d *Dialogue) startReminder(ctx context.Context, req *request) error {
	meetings, err := d.availableMeetings(ctx, req.user)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoReminderMeetings))
		return nil
	}

	if err := d.setState(ctx, req, conversation.State{Flow: FlowCreateReminder, Step: StepAwaitMeetingChoice}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgChooseReminderMeeting).WithButtons(d.meetingButtons(meetings, ActionReminderMeeting)...))
	return nil
}

func (d *Dialogue) selectReminderMeeting(ctx context.Context, req *request) error {
	meeting, err := d.availableMeeting(ctx, req.user, req.callback.ID)
	if err != nil {
		return err
	}

	state := conversation.State{Flow: FlowCreateReminder, Step: StepAwaitMinutes, MeetingID: meeting.ID}
	if err := d.setState(ctx, req, state); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskMinutes))
	return nil
}

// enterMinutes schedules a reminder the given number of minutes before the meeting
func (d *Dialogue) enterMinutes(ctx context.Context, req *request) error {
	minutes, err := strconv.Atoi(strings.TrimSpace(req.Text))
	if err != nil {
		return invalid(msgBadMinutes, err)
	}
	if minutes < 0 || int64(minutes) > maxReminderMinutes {
		return invalid(msgBadMinutes, nil)
	}

	meeting, err := d.meeting(ctx, req.state.MeetingID)
	if err != nil {
		return err
	}

	fireAt := meeting.ScheduledAt.Add(-time.Duration(minutes) * time.Minute)
	reminder, err := d.storage.CreateReminder(ctx, meeting.ID, req.user.ID, fireAt)
	if err != nil {
		return err
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Reminder added", userAttrs(req.user), "meeting_id", meeting.ID, "reminder_id", reminder.ID, "fire_at", reminder.FireAt)
	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(msgReminderAdded, minutes)))
	return nil
}

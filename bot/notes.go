package bot

import (
	"context"
	"strings"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
)

func (d *Dialogue) startNote(ctx context.Context, req *request) error {
	meetings, err := d.availableMeetings(ctx, req.user)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoNoteMeetings))
		return nil
	}

	if err := d.setState(ctx, req, conversation.State{Flow: FlowCreateNote, Step: StepAwaitMeetingChoice}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgChooseNoteMeeting).WithButtons(d.meetingButtons(meetings, ActionNoteMeeting)...))
	return nil
}

func (d *Dialogue) selectNoteMeeting(ctx context.Context, req *request) error {
	meeting, err := d.availableMeeting(ctx, req.user, req.callback.ID)
	if err != nil {
		return err
	}

	state := conversation.State{Flow: FlowCreateNote, Step: StepAwaitText, MeetingID: meeting.ID}
	if err := d.setState(ctx, req, state); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskNote))
	return nil
}

// enterNote stores the text exactly as typed
func (d *Dialogue) enterNote(ctx context.Context, req *request) error {
	if strings.TrimSpace(req.Text) == "" {
		return invalid(msgEmptyNote, nil)
	}

	meeting, err := d.meeting(ctx, req.state.MeetingID)
	if err != nil {
		return err
	}

	note, err := d.storage.CreateNote(ctx, meeting.ID, req.user.ID, req.Text)
	if err != nil {
		return err
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Note added", userAttrs(req.user), "meeting_id", meeting.ID, "note_id", note.ID)
	d.send(ctx, req.ChatID, messenger.Text(msgNoteAdded))
	return nil
}

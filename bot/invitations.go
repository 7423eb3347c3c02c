package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

func (d *Dialogue) startInvite(ctx context.Context, req *request) error {
	meetings, err := d.storage.ListMeetingsByCreator(ctx, req.user.ID)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoInviteMeetings))
		return nil
	}

	if err := d.setState(ctx, req, conversation.State{Flow: FlowInvite, Step: StepAwaitMeetingChoice}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgChooseInviteMeeting).WithButtons(d.meetingButtons(meetings, ActionInviteMeeting)...))
	return nil
}

func (d *Dialogue) selectInviteMeeting(ctx context.Context, req *request) error {
	meeting, err := d.meeting(ctx, req.callback.ID)
	if err != nil {
		return err
	}

	staff, err := d.storage.ListStaff(ctx, false)
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoStaffToInvite))
		return nil
	}

	state := conversation.State{Flow: FlowInvite, Step: StepAwaitUserChoice, MeetingID: meeting.ID}
	if err := d.setState(ctx, req, state); err != nil {
		return err
	}

	buttons := make([]messenger.Button, 0, len(staff))
	for _, u := range staff {
		buttons = append(buttons, messenger.Button{
			Text: displayName(&u),
			Data: Callback{Action: ActionInviteUser, ID: u.ID, SecondID: meeting.ID}.Encode(),
		})
	}
	d.send(ctx, req.ChatID, messenger.Text(msgChooseInvitee).WithButtons(buttons...))
	return nil
}

// inviteUser creates a pending invitation and asks the invitee to answer it
func (d *Dialogue) inviteUser(ctx context.Context, req *request) error {
	meeting, err := d.meeting(ctx, req.callback.SecondID)
	if err != nil {
		return err
	}
	invitee, err := d.storage.GetUser(ctx, req.callback.ID)
	if err != nil {
		return notFound(err, msgUserNotFound)
	}
	if invitee.Deleted {
		return &NotFoundError{Message: msgUserNotFound}
	}

	invitation, err := d.storage.CreateInvitation(ctx, meeting.ID, invitee.ID)
	if err != nil {
		return err
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: User invited", userAttrs(req.user), "invitee_id", invitee.ID, "meeting_id", meeting.ID, "invitation_id", invitation.ID)

	d.send(ctx, invitee.TelegramID, messenger.Text(fmt.Sprintf(msgInvitation, meeting.Title)).WithButtonRow(
		messenger.Button{Text: "Accept", Data: Callback{Action: ActionRespondInvitation, ID: invitation.ID, Response: storage.ResponseAccepted}.Encode()},
		messenger.Button{Text: "Decline", Data: Callback{Action: ActionRespondInvitation, ID: invitation.ID, Response: storage.ResponseDeclined}.Encode()},
	))
	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(msgInvited, displayName(invitee), meeting.Title)))
	return nil
}

// respondInvitation records the invitee's answer. The invitee is notified only
// when the answer actually changes.
func (d *Dialogue) respondInvitation(ctx context.Context, req *request) error {
	invitation, err := d.storage.GetInvitation(ctx, req.callback.ID)
	if err != nil {
		return notFound(err, msgInvitationNotFound)
	}
	if invitation.UserID != req.user.ID {
		return ErrUnauthorized
	}

	meeting, err := d.meeting(ctx, invitation.MeetingID)
	if err != nil {
		return err
	}

	previous, err := d.storage.SetInvitationResponse(ctx, invitation.ID, req.callback.Response)
	if err != nil {
		return notFound(err, msgInvitationNotFound)
	}
	if previous == req.callback.Response {
		return nil
	}

	loggerFrom(ctx).Info("bot: Invitation answered", userAttrs(req.user), "invitation_id", invitation.ID, "response", req.callback.Response)

	text := msgInvitationDeclined
	if req.callback.Response == storage.ResponseAccepted {
		text = msgInvitationAccepted
	}
	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(text, meeting.Title)))
	return nil
}

func (d *Dialogue) startViewInvitees(ctx context.Context, req *request) error {
	meetings, err := d.storage.ListMeetings(ctx)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoMeetingsAvailable))
		return nil
	}

	d.send(ctx, req.ChatID, messenger.Text(msgChooseInviteesMeeting).WithButtons(d.meetingButtons(meetings, ActionViewInvitees)...))
	return nil
}

// viewInvitees lists staff who accepted an invitation to the meeting.
// Invitations of users that no longer exist or were removed are dropped on the way.
func (d *Dialogue) viewInvitees(ctx context.Context, req *request) error {
	meeting, err := d.meeting(ctx, req.callback.ID)
	if err != nil {
		return err
	}

	invitations, err := d.storage.ListAcceptedInvitations(ctx, meeting.ID)
	if err != nil {
		return err
	}

	var lines []string
	listed := make(map[uint]bool, len(invitations))
	for _, inv := range invitations {
		if listed[inv.UserID] {
			continue
		}
		invitee, err := d.storage.GetUser(ctx, inv.UserID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err != nil || invitee.Deleted {
			if err := d.storage.DeleteInvitation(ctx, inv.ID); err != nil {
				return err
			}
			loggerFrom(ctx).Info("bot: Stale invitation dropped", "invitation_id", inv.ID, "user_id", inv.UserID)
			continue
		}
		listed[inv.UserID] = true
		lines = append(lines, "- "+displayName(invitee))
	}

	if len(lines) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoInvitees))
		return nil
	}
	d.send(ctx, req.ChatID, messenger.Text(msgInviteeList+strings.Join(lines, "\n")))
	return nil
}

func displayName(u *storage.User) string {
	if u.Username != "" {
		return fmt.Sprintf("%s (@%s)", u.FirstName, u.Username)
	}
	return u.FirstName
}

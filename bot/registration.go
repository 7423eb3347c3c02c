package bot

import (
	"context"
	"errors"
	"fmt"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

// start greets the user and offers the registration button. Any flow in
// progress is abandoned.
func (d *Dialogue) start(ctx context.Context, req *request) error {
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(msgGreeting, req.FirstName)).WithButtons(startButton))
	return nil
}

// register finds or creates the user, shows their profile and either asks
// the role question or shows the main menu.
func (d *Dialogue) register(ctx context.Context, req *request) error {
	user, err := d.storage.FindUserByTelegramID(ctx, req.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = d.storage.CreateUser(ctx, req.UserID, req.Username, req.FirstName)
		if err != nil {
			return err
		}
		loggerFrom(ctx).Info("bot: User registered", userAttrs(user))
	} else if err != nil {
		return err
	}
	if user.Deleted {
		return ErrUserRemoved
	}

	username := user.Username
	if username == "" {
		username = "-"
	}
	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(msgProfile, user.FirstName, username, user.TelegramID)))

	if user.Role != storage.RoleUnset {
		d.send(ctx, req.ChatID, MainMenu(user.Role))
		return nil
	}

	if err := d.setState(ctx, req, conversation.State{Flow: FlowRegistration, Step: StepAwaitRole}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, roleQuestion())
	return nil
}

func (d *Dialogue) answerRole(ctx context.Context, req *request) error {
	role := storage.RoleStaff
	if req.callback.Action == ActionRoleOrganizer {
		role = storage.RoleOrganizer
	}

	set, err := d.storage.SetRoleOnce(ctx, req.user.ID, role)
	if err != nil {
		return err
	}
	if !set {
		d.send(ctx, req.ChatID, messenger.Text(msgRoleAlreadySet))
		return nil
	}

	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Role chosen", userAttrs(req.user), "role", role)
	d.send(ctx, req.ChatID, RoleAnnouncement(role))
	return nil
}

func (d *Dialogue) repeatRoleQuestion(ctx context.Context, req *request) error {
	if req.user.Role != storage.RoleUnset {
		if err := d.clearState(ctx, req); err != nil {
			return err
		}
		d.send(ctx, req.ChatID, MainMenu(req.user.Role))
		return nil
	}

	d.send(ctx, req.ChatID, roleQuestion())
	return nil
}

func (d *Dialogue) showMainMenu(ctx context.Context, req *request) error {
	d.send(ctx, req.ChatID, MainMenu(req.user.Role))
	return nil
}

func (d *Dialogue) showMeetingMenu(ctx context.Context, req *request) error {
	d.send(ctx, req.ChatID, meetingMenu)
	return nil
}

func (d *Dialogue) showStaffMenu(ctx context.Context, req *request) error {
	d.send(ctx, req.ChatID, staffManagementMenu)
	return nil
}

func roleQuestion() messenger.Reply {
	return messenger.Text(msgAskRole).WithButtonRow(
		messenger.Button{Text: "Yes", Data: Callback{Action: ActionRoleOrganizer}.Encode()},
		messenger.Button{Text: "No", Data: Callback{Action: ActionRoleStaff}.Encode()},
	)
}

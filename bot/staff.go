package bot

import (
	"context"
	"fmt"

	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

func (d *Dialogue) startRemoveStaff(ctx context.Context, req *request) error {
	return d.listStaff(ctx, req, false, ActionRemoveStaff, msgStaffList, msgNoStaff)
}

func (d *Dialogue) startRestoreStaff(ctx context.Context, req *request) error {
	return d.listStaff(ctx, req, true, ActionRestoreStaff, msgRemovedStaffList, msgNoRemovedStaff)
}

func (d *Dialogue) listStaff(ctx context.Context, req *request, deleted bool, action Action, header, empty string) error {
	staff, err := d.storage.ListStaff(ctx, deleted)
	if err != nil {
		return err
	}
	if len(staff) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(empty))
		return nil
	}

	buttons := make([]messenger.Button, 0, len(staff))
	for _, u := range staff {
		buttons = append(buttons, messenger.Button{
			Text: displayName(&u),
			Data: Callback{Action: action, ID: u.ID}.Encode(),
		})
	}
	d.send(ctx, req.ChatID, messenger.Text(header).WithButtons(buttons...))
	return nil
}

// removeStaff soft-deletes a staff member and tells them about it
func (d *Dialogue) removeStaff(ctx context.Context, req *request) error {
	user, err := d.storage.SetStaffDeleted(ctx, req.callback.ID, true)
	if err != nil {
		return notFound(err, msgAlreadyRemoved)
	}
	if err := d.states.Clear(ctx, user.TelegramID); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Staff member removed", userAttrs(req.user), "staff_id", user.ID)
	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(msgStaffRemoved, displayName(user))))
	d.send(ctx, user.TelegramID, messenger.Text(msgYouWereRemoved).WithoutMenu())
	return nil
}

func (d *Dialogue) restoreStaff(ctx context.Context, req *request) error {
	user, err := d.storage.SetStaffDeleted(ctx, req.callback.ID, false)
	if err != nil {
		return notFound(err, msgAlreadyRestored)
	}

	loggerFrom(ctx).Info("bot: Staff member restored", userAttrs(req.user), "staff_id", user.ID)
	d.send(ctx, req.ChatID, messenger.Text(fmt.Sprintf(msgStaffRestored, displayName(user))))
	d.send(ctx, user.TelegramID, MainMenu(storage.RoleStaff).WithText(msgYouWereRestored))
	return nil
}

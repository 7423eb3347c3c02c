package scheduler

import (
	"context"
	"log/slog"
	"time"

	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

type RoleStore interface {
	ListUsersWithChangedRole(ctx context.Context) ([]storage.User, error)
	ClearRoleChanged(ctx context.Context, userID uint, announced storage.Role) error
}

// RoleNotifier announces administrative role changes to the affected users
type RoleNotifier struct {
	store    RoleStore
	sender   messenger.Sender
	announce func(role storage.Role) messenger.Reply
	interval time.Duration
}

func NewRoleNotifier(store RoleStore, sender messenger.Sender, announce func(role storage.Role) messenger.Reply, interval time.Duration) *RoleNotifier {
	return &RoleNotifier{
		store:    store,
		sender:   sender,
		announce: announce,
		interval: interval,
	}
}

func (n *RoleNotifier) Run(ctx context.Context) error {
	slog.Info("scheduler: Role notifier started", "interval", n.interval)
	every(ctx, "roles", n.interval, n.Notify)
	return nil
}

// Notify announces every pending role change once. The flag stays raised when
// the announcement cannot be delivered so the next cycle tries again.
func (n *RoleNotifier) Notify(ctx context.Context) (int, error) {
	users, err := n.store.ListUsersWithChangedRole(ctx)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return notified, err
		}

		if err := n.sender.Send(ctx, user.TelegramID, n.announce(user.Role)); err != nil {
			slog.Warn("scheduler: Role change not announced", "user_id", user.ID, "role", user.Role, "error", err)
			continue
		}
		if err := n.store.ClearRoleChanged(ctx, user.ID, user.Role); err != nil {
			return notified, err
		}

		slog.Info("scheduler: Role change announced", "user_id", user.ID, "role", user.Role)
		notified++
	}
	return notified, nil
}

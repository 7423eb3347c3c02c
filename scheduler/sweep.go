package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type MeetingSweeper interface {
	DeleteMeetingsBefore(ctx context.Context, t time.Time) (int, error)
}

// Sweep removes meetings scheduled before now together with their notes,
// reminders and invitations.
func Sweep(ctx context.Context, store MeetingSweeper, now time.Time) (int, error) {
	deleted, err := store.DeleteMeetingsBefore(ctx, now)
	if err != nil {
		slog.Error("scheduler: Meeting sweep failed", "deleted", deleted, "error", err)
		return deleted, err
	}

	slog.Info("scheduler: Past meetings swept", "deleted", deleted, "before", now)
	return deleted, nil
}

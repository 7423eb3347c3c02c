package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

// ReminderStore is the part of the storage the reminder dispatcher needs
type ReminderStore interface {
	DueReminders(ctx context.Context, now time.Time) ([]storage.Reminder, error)
	GetMeeting(ctx context.Context, id uint) (*storage.Meeting, error)
	GetUser(ctx context.Context, id uint) (*storage.User, error)
	DeleteReminder(ctx context.Context, id uint) error
	RecordReminderFailure(ctx context.Context, id uint, maxAttempts int) (bool, error)
}

// ReminderDispatcher delivers due reminders and deletes them once delivered
type ReminderDispatcher struct {
	store       ReminderStore
	sender      messenger.Sender
	text        func(meetingTitle string) messenger.Reply
	interval    time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewReminderDispatcher(
	store ReminderStore,
	sender messenger.Sender,
	text func(meetingTitle string) messenger.Reply,
	interval time.Duration,
	maxAttempts int,
	opts ...Option,
) *ReminderDispatcher {
	o := buildOptions(opts)

	return &ReminderDispatcher{
		store:       store,
		sender:      sender,
		text:        text,
		interval:    interval,
		maxAttempts: maxAttempts,
		now:         o.now,
	}
}

// Run dispatches reminders every interval until ctx is cancelled
func (d *ReminderDispatcher) Run(ctx context.Context) error {
	slog.Info("scheduler: Reminder dispatcher started", "interval", d.interval, "max_attempts", d.maxAttempts)
	every(ctx, "reminders", d.interval, d.Dispatch)
	return nil
}

// Dispatch runs a single cycle and returns the number of delivered reminders
func (d *ReminderDispatcher) Dispatch(ctx context.Context) (int, error) {
	due, err := d.store.DueReminders(ctx, d.now())
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, reminder := range due {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}

		ok, err := d.deliver(ctx, reminder)
		if err != nil {
			return delivered, err
		}
		if ok {
			delivered++
		}
	}
	return delivered, nil
}

func (d *ReminderDispatcher) deliver(ctx context.Context, reminder storage.Reminder) (bool, error) {
	log := slog.With("reminder_id", reminder.ID, "meeting_id", reminder.MeetingID, "user_id", reminder.UserID)

	meeting, err := d.store.GetMeeting(ctx, reminder.MeetingID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, d.fail(ctx, log, reminder, err)
	}
	if err != nil {
		return false, err
	}

	user, err := d.store.GetUser(ctx, reminder.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, d.fail(ctx, log, reminder, err)
	}
	if err != nil {
		return false, err
	}
	if user.Deleted {
		return false, d.fail(ctx, log, reminder, errors.New("user has been removed"))
	}

	if err := d.sender.Send(ctx, user.TelegramID, d.text(meeting.Title)); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, d.fail(ctx, log, reminder, err)
	}

	if err := d.store.DeleteReminder(ctx, reminder.ID); err != nil {
		log.Error("scheduler: Delivered reminder not deleted, it may be sent again", "error", err)
		return true, err
	}

	log.Debug("scheduler: Reminder delivered")
	return true, nil
}

// fail counts a failed attempt. Only storage errors are returned.
func (d *ReminderDispatcher) fail(ctx context.Context, log *slog.Logger, reminder storage.Reminder, cause error) error {
	deadLettered, err := d.store.RecordReminderFailure(ctx, reminder.ID, d.maxAttempts)
	if err != nil {
		return err
	}

	if deadLettered {
		log.Warn("scheduler: Reminder dead-lettered", "attempts", reminder.Attempts+1, "error", cause)
		return nil
	}
	log.Info("scheduler: Reminder delivery failed, will retry", "attempts", reminder.Attempts+1, "error", cause)
	return nil
}

package storage

import (
	"context"
	"log/slog"
	"time"
)

// CreateReminder schedules a reminder for a user about a meeting
func (s *Storage) CreateReminder(ctx context.Context, meetingID, userID uint, fireAt time.Time) (*Reminder, error) {
	reminder := Reminder{
		MeetingID: meetingID,
		UserID:    userID,
		FireAt:    fireAt.UTC(),
	}

	result := s.db.WithContext(ctx).Create(&reminder)
	if result.Error != nil {
		slog.Error("storage: Failed to create reminder", "error", result.Error, "meeting_id", meetingID, "user_id", userID)
		return nil, translate("failed to create reminder", result.Error)
	}
	return &reminder, nil
}

// ListReminders returns the reminders of a meeting ordered by fire time
func (s *Storage) ListReminders(ctx context.Context, meetingID uint) ([]Reminder, error) {
	var reminders []Reminder
	result := s.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("fire_at, id").Find(&reminders)
	if result.Error != nil {
		return nil, translate("failed to list reminders", result.Error)
	}
	return reminders, nil
}

// DueReminders returns live reminders whose fire time is not after now
func (s *Storage) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	var reminders []Reminder
	result := s.db.WithContext(ctx).
		Where("fire_at <= ? AND dead_lettered = ?", now.UTC(), false).
		Order("fire_at, id").
		Find(&reminders)
	if result.Error != nil {
		return nil, translate("failed to list due reminders", result.Error)
	}
	return reminders, nil
}

func (s *Storage) DeleteReminder(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Reminder{}, id)
	if result.Error != nil {
		slog.Error("storage: Failed to delete reminder", "error", result.Error, "reminder_id", id)
		return translate("failed to delete reminder", result.Error)
	}
	return nil
}

// RecordReminderFailure counts a failed delivery attempt and dead-letters the
// reminder once maxAttempts is reached. It reports whether the reminder was dead-lettered.
func (s *Storage) RecordReminderFailure(ctx context.Context, id uint, maxAttempts int) (bool, error) {
	var reminder Reminder
	result := s.db.WithContext(ctx).First(&reminder, id)
	if result.Error != nil {
		return false, translate("failed to get reminder", result.Error)
	}

	attempts := reminder.Attempts + 1
	deadLettered := maxAttempts > 0 && attempts >= maxAttempts

	result = s.db.WithContext(ctx).Model(&reminder).Updates(map[string]any{
		"attempts":      attempts,
		"dead_lettered": deadLettered,
	})
	if result.Error != nil {
		slog.Error("storage: Failed to record reminder failure", "error", result.Error, "reminder_id", id)
		return false, translate("failed to record reminder failure", result.Error)
	}
	return deadLettered, nil
}

package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// CreateMeeting stores a meeting and flags its creator as a meeting creator
func (s *Storage) CreateMeeting(ctx context.Context, creatorID uint, title, description string, scheduledAt time.Time) (*Meeting, error) {
	meeting := Meeting{
		Title:       title,
		Description: description,
		ScheduledAt: scheduledAt.UTC(),
		CreatorID:   creatorID,
	}

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&meeting).Error; err != nil {
			return err
		}
		return tx.Model(&User{}).Where("id = ?", creatorID).Update("is_meeting_creator", true).Error
	})
	if err != nil {
		slog.Error("storage: Failed to create meeting", "error", err, "creator_id", creatorID, "title", title)
		return nil, translate("failed to create meeting", err)
	}
	return &meeting, nil
}

// GetMeeting retrieves a meeting by ID
func (s *Storage) GetMeeting(ctx context.Context, id uint) (*Meeting, error) {
	var meeting Meeting
	result := s.db.WithContext(ctx).First(&meeting, id)
	if result.Error != nil {
		return nil, translate("failed to get meeting", result.Error)
	}
	return &meeting, nil
}

// ListMeetings returns every meeting ordered by schedule
func (s *Storage) ListMeetings(ctx context.Context) ([]Meeting, error) {
	var meetings []Meeting
	result := s.db.WithContext(ctx).Order("scheduled_at, id").Find(&meetings)
	if result.Error != nil {
		return nil, translate("failed to list meetings", result.Error)
	}
	return meetings, nil
}

// ListMeetingsByCreator returns meetings created by the given user
func (s *Storage) ListMeetingsByCreator(ctx context.Context, creatorID uint) ([]Meeting, error) {
	var meetings []Meeting
	result := s.db.WithContext(ctx).Where("creator_id = ?", creatorID).Order("scheduled_at, id").Find(&meetings)
	if result.Error != nil {
		return nil, translate("failed to list meetings by creator", result.Error)
	}
	return meetings, nil
}

// ListAcceptedMeetings returns meetings the user accepted an invitation to.
// A non-zero from drops meetings scheduled before it.
func (s *Storage) ListAcceptedMeetings(ctx context.Context, userID uint, from time.Time) ([]Meeting, error) {
	accepted := s.db.Model(&Invitation{}).
		Select("meeting_id").
		Where("user_id = ? AND response = ?", userID, ResponseAccepted)

	query := s.db.WithContext(ctx).Where("id IN (?)", accepted)
	if !from.IsZero() {
		query = query.Where("scheduled_at >= ?", from.UTC())
	}

	var meetings []Meeting
	result := query.Order("scheduled_at, id").Find(&meetings)
	if result.Error != nil {
		return nil, translate("failed to list accepted meetings", result.Error)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting together with its notes, reminders and invitations
func (s *Storage) DeleteMeeting(ctx context.Context, id uint) error {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		return deleteMeeting(tx, id)
	})
	if err != nil {
		slog.Error("storage: Failed to delete meeting", "error", err, "meeting_id", id)
		return translate("failed to delete meeting", err)
	}
	return nil
}

// DeleteMeetingsBefore removes meetings scheduled before t and their dependents.
// Every meeting is removed in its own transaction so a failure never leaves orphans.
func (s *Storage) DeleteMeetingsBefore(ctx context.Context, t time.Time) (int, error) {
	var ids []uint
	result := s.db.WithContext(ctx).Model(&Meeting{}).Where("scheduled_at < ?", t.UTC()).Pluck("id", &ids)
	if result.Error != nil {
		return 0, translate("failed to find past meetings", result.Error)
	}

	deleted := 0
	for _, id := range ids {
		err := s.DeleteMeeting(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func deleteMeeting(tx *gorm.DB, id uint) error {
	for _, dependent := range []any{&Note{}, &Reminder{}, &Invitation{}} {
		if err := tx.Where("meeting_id = ?", id).Delete(dependent).Error; err != nil {
			return err
		}
	}

	result := tx.Delete(&Meeting{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

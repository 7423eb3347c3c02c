package storage

import (
	"context"
	"log/slog"
)

// CreateNote attaches a note to a meeting. The text is stored as given.
func (s *Storage) CreateNote(ctx context.Context, meetingID, userID uint, text string) (*Note, error) {
	note := Note{
		MeetingID: meetingID,
		UserID:    userID,
		Text:      text,
	}

	result := s.db.WithContext(ctx).Create(&note)
	if result.Error != nil {
		slog.Error("storage: Failed to create note", "error", result.Error, "meeting_id", meetingID, "user_id", userID)
		return nil, translate("failed to create note", result.Error)
	}
	return &note, nil
}

func (s *Storage) ListNotes(ctx context.Context, meetingID uint) ([]Note, error) {
	var notes []Note
	result := s.db.WithContext(ctx).Where("meeting_id = ?", meetingID).Order("created_at, id").Find(&notes)
	if result.Error != nil {
		return nil, translate("failed to list notes", result.Error)
	}
	return notes, nil
}

package storage

import (
	"context"
	"log/slog"
)

func (s *Storage) CreateFeedback(ctx context.Context, userID uint, message string) (*Feedback, error) {
	feedback := Feedback{
		UserID:  userID,
		Message: message,
	}

	result := s.db.WithContext(ctx).Create(&feedback)
	if result.Error != nil {
		slog.Error("storage: Failed to create feedback", "error", result.Error, "user_id", userID)
		return nil, translate("failed to create feedback", result.Error)
	}
	return &feedback, nil
}

func (s *Storage) GetFeedback(ctx context.Context, id uint) (*Feedback, error) {
	var feedback Feedback
	result := s.db.WithContext(ctx).First(&feedback, id)
	if result.Error != nil {
		return nil, translate("failed to get feedback", result.Error)
	}
	return &feedback, nil
}

// ListUnansweredFeedback returns questions still waiting for an answer
func (s *Storage) ListUnansweredFeedback(ctx context.Context) ([]Feedback, error) {
	var feedback []Feedback
	result := s.db.WithContext(ctx).Where("answered = ?", false).Order("id").Find(&feedback)
	if result.Error != nil {
		return nil, translate("failed to list unanswered feedback", result.Error)
	}
	return feedback, nil
}

// MarkFeedbackAnswered flips the answered flag. Only the first caller gets true.
func (s *Storage) MarkFeedbackAnswered(ctx context.Context, id uint) (bool, error) {
	result := s.db.WithContext(ctx).Model(&Feedback{}).
		Where("id = ? AND answered = ?", id, false).
		Update("answered", true)
	if result.Error != nil {
		slog.Error("storage: Failed to mark feedback answered", "error", result.Error, "feedback_id", id)
		return false, translate("failed to mark feedback answered", result.Error)
	}
	return result.RowsAffected == 1, nil
}

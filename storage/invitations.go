package storage

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
)

// CreateInvitation invites a user to a meeting with a pending response
func (s *Storage) CreateInvitation(ctx context.Context, meetingID, userID uint) (*Invitation, error) {
	invitation := Invitation{
		MeetingID: meetingID,
		UserID:    userID,
		Response:  ResponsePending,
	}

	result := s.db.WithContext(ctx).Create(&invitation)
	if result.Error != nil {
		slog.Error("storage: Failed to create invitation", "error", result.Error, "meeting_id", meetingID, "user_id", userID)
		return nil, translate("failed to create invitation", result.Error)
	}
	return &invitation, nil
}

func (s *Storage) GetInvitation(ctx context.Context, id uint) (*Invitation, error) {
	var invitation Invitation
	result := s.db.WithContext(ctx).First(&invitation, id)
	if result.Error != nil {
		return nil, translate("failed to get invitation", result.Error)
	}
	return &invitation, nil
}

// SetInvitationResponse stores the invitee's answer, the last answer wins.
// It returns the response that was stored before.
func (s *Storage) SetInvitationResponse(ctx context.Context, id uint, response InvitationResponse) (InvitationResponse, error) {
	var previous InvitationResponse

	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var invitation Invitation
		if err := tx.First(&invitation, id).Error; err != nil {
			return err
		}
		previous = invitation.Response
		return tx.Model(&invitation).Update("response", response).Error
	})
	if err != nil {
		slog.Error("storage: Failed to set invitation response", "error", err, "invitation_id", id, "response", response)
		return "", translate("failed to set invitation response", err)
	}
	return previous, nil
}

// ListAcceptedInvitations returns accepted invitations of a meeting
func (s *Storage) ListAcceptedInvitations(ctx context.Context, meetingID uint) ([]Invitation, error) {
	var invitations []Invitation
	result := s.db.WithContext(ctx).
		Where("meeting_id = ? AND response = ?", meetingID, ResponseAccepted).
		Order("id").
		Find(&invitations)
	if result.Error != nil {
		return nil, translate("failed to list accepted invitations", result.Error)
	}
	return invitations, nil
}

func (s *Storage) DeleteInvitation(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Invitation{}, id)
	if result.Error != nil {
		slog.Error("storage: Failed to delete invitation", "error", result.Error, "invitation_id", id)
		return translate("failed to delete invitation", result.Error)
	}
	return nil
}

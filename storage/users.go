package storage

import (
	"context"
	"log/slog"
)

// FindUserByTelegramID retrieves a user by their Telegram ID
func (s *Storage) FindUserByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user)
	if result.Error != nil {
		return nil, translate("failed to find user", result.Error)
	}
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *Storage) GetUser(ctx context.Context, id uint) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		return nil, translate("failed to get user", result.Error)
	}
	return &user, nil
}

// CreateUser registers a new user with an unset role
func (s *Storage) CreateUser(ctx context.Context, telegramID int64, username, firstName string) (*User, error) {
	user := User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
	}

	result := s.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		slog.Error("storage: Failed to create user", "error", result.Error, "telegram_id", telegramID)
		return nil, translate("failed to create user", result.Error)
	}
	return &user, nil
}

// SetRoleOnce sets the role of a user whose role is still unset.
// It reports false when the role had already been chosen.
func (s *Storage) SetRoleOnce(ctx context.Context, userID uint, role Role) (bool, error) {
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND role = ?", userID, RoleUnset).
		Update("role", role)
	if result.Error != nil {
		slog.Error("storage: Failed to set role", "error", result.Error, "user_id", userID, "role", role)
		return false, translate("failed to set role", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AssignRole is the administrative role change. It raises the role-changed flag
// so the running bot announces the new role.
func (s *Storage) AssignRole(ctx context.Context, telegramID int64, role Role) error {
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]any{"role": role, "role_changed": true})
	if result.Error != nil {
		slog.Error("storage: Failed to assign role", "error", result.Error, "telegram_id", telegramID, "role", role)
		return translate("failed to assign role", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("failed to assign role", ErrNotFound)
	}
	return nil
}

// ListUsersWithChangedRole returns users whose role change was not announced yet
func (s *Storage) ListUsersWithChangedRole(ctx context.Context) ([]User, error) {
	var users []User
	result := s.db.WithContext(ctx).Where("role_changed = ?", true).Find(&users)
	if result.Error != nil {
		return nil, translate("failed to list users with changed role", result.Error)
	}
	return users, nil
}

// ClearRoleChanged lowers the flag only while the user still has the announced
// role. A newer assignment keeps it raised.
func (s *Storage) ClearRoleChanged(ctx context.Context, userID uint, announced Role) error {
	result := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND role = ?", userID, announced).
		Update("role_changed", false)
	if result.Error != nil {
		slog.Error("storage: Failed to clear role change flag", "error", result.Error, "user_id", userID)
		return translate("failed to clear role change flag", result.Error)
	}
	return nil
}

// ListOrganizers returns all organizers that were not removed
func (s *Storage) ListOrganizers(ctx context.Context) ([]User, error) {
	var users []User
	result := s.db.WithContext(ctx).
		Where("role = ? AND deleted = ?", RoleOrganizer, false).
		Order("id").
		Find(&users)
	if result.Error != nil {
		return nil, translate("failed to list organizers", result.Error)
	}
	return users, nil
}

// ListStaff returns staff members filtered by their removal flag
func (s *Storage) ListStaff(ctx context.Context, deleted bool) ([]User, error) {
	var users []User
	result := s.db.WithContext(ctx).
		Where("role = ? AND deleted = ?", RoleStaff, deleted).
		Order("id").
		Find(&users)
	if result.Error != nil {
		return nil, translate("failed to list staff", result.Error)
	}
	return users, nil
}

// SetStaffDeleted flips the removal flag of a staff member.
// ErrNotFound is returned when no staff member is in the opposite state.
func (s *Storage) SetStaffDeleted(ctx context.Context, userID uint, deleted bool) (*User, error) {
	var user User
	result := s.db.WithContext(ctx).
		Where("id = ? AND role = ? AND deleted = ?", userID, RoleStaff, !deleted).
		First(&user)
	if result.Error != nil {
		return nil, translate("failed to find staff member", result.Error)
	}

	result = s.db.WithContext(ctx).Model(&user).Update("deleted", deleted)
	if result.Error != nil {
		slog.Error("storage: Failed to update staff member", "error", result.Error, "user_id", userID, "deleted", deleted)
		return nil, translate("failed to update staff member", result.Error)
	}
	user.Deleted = deleted
	return &user, nil
}

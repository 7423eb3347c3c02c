package storage

import "time"

// Role is the access level of a bot user
type Role string

const (
	RoleUnset     Role = ""
	RoleOrganizer Role = "organizer"
	RoleStaff     Role = "staff"
)

// ParseRole converts user input into a known role
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOrganizer, RoleStaff:
		return Role(s), true
	}
	return RoleUnset, false
}

// InvitationResponse is the invitee's answer to an invitation
type InvitationResponse string

const (
	ResponsePending  InvitationResponse = "pending"
	ResponseAccepted InvitationResponse = "accepted"
	ResponseDeclined InvitationResponse = "declined"
)

// User represents a Telegram user known to the bot
type User struct {
	ID               uint  `gorm:"primaryKey"`
	TelegramID       int64 `gorm:"uniqueIndex"`
	Username         string
	FirstName        string
	Role             Role `gorm:"index"`
	Deleted          bool `gorm:"not null;default:false"`
	IsMeetingCreator bool `gorm:"not null;default:false"`
	RoleChanged      bool `gorm:"not null;default:false;index"`
}

func (u *User) IsOrganizer() bool {
	return u != nil && u.Role == RoleOrganizer
}

// Meeting is a scheduled meeting created by an organizer
type Meeting struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	CreatedAt   time.Time
	ScheduledAt time.Time `gorm:"index"`
	CreatorID   uint      `gorm:"index"`
}

// Invitation links a staff member to a meeting
type Invitation struct {
	ID        uint               `gorm:"primaryKey"`
	MeetingID uint               `gorm:"index;not null"`
	UserID    uint               `gorm:"index;not null"`
	Response  InvitationResponse `gorm:"not null;default:pending"`
}

// Reminder is a pending notification about a meeting for one user
type Reminder struct {
	ID           uint      `gorm:"primaryKey"`
	MeetingID    uint      `gorm:"index;not null"`
	UserID       uint      `gorm:"index;not null"`
	FireAt       time.Time `gorm:"index;not null"`
	Attempts     int       `gorm:"not null;default:0"`
	DeadLettered bool      `gorm:"not null;default:false"`
}

// Note is a free-form text attached to a meeting
type Note struct {
	ID        uint   `gorm:"primaryKey"`
	MeetingID uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	Text      string `gorm:"not null"`
	CreatedAt time.Time
}

// Feedback is a question sent by a staff member to the organizers
type Feedback struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index;not null"`
	Message  string `gorm:"not null"`
	Answered bool   `gorm:"not null;default:false;index"`
}

// Feedback would otherwise be pluralized to "feedbacks"
func (Feedback) TableName() string {
	return "feedback"
}

package consent

import (
	"time"
)

// Event types recorded for consent OTP rows.
const (
	EventIssued        = "issued"
	EventReissued      = "reissued"
	EventAttemptFailed = "attempt_failed"
	EventBlocked       = "blocked"
	EventVerified      = "verified"
)

// ConsentOtpEvent is an audit snapshot of a ConsentOtp row at the moment a
// state change happened, mirroring the OTP fields.
type ConsentOtpEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	OtpID        uint           `gorm:"not null;index" json:"otp_id"`
	AssignmentID uint           `gorm:"not null;index" json:"assignment_id"`
	Code         string         `gorm:"column:code;type:varchar(6);not null" json:"-"`
	Method       DeliveryMethod `gorm:"type:varchar(20);not null" json:"method"`

	IsVerified    bool       `json:"is_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	AttemptsCount int        `json:"attempts_count"`
	MaxAttempts   int        `json:"max_attempts"`
	IsBlocked     bool       `json:"is_blocked"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`

	RequestedByID uint `gorm:"not null" json:"requested_by_id"`

	EventType string    `gorm:"type:varchar(50);not null;index" json:"event_type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// SnapshotOtp builds an audit event row from the current state of o.
func SnapshotOtp(o *ConsentOtp, eventType string) *ConsentOtpEvent {
	return &ConsentOtpEvent{
		OtpID:         o.ID,
		AssignmentID:  o.AssignmentID,
		Code:          o.Code,
		Method:        o.Method,
		IsVerified:    o.IsVerified,
		VerifiedAt:    o.VerifiedAt,
		AttemptsCount: o.AttemptsCount,
		MaxAttempts:   o.MaxAttempts,
		IsBlocked:     o.IsBlocked,
		LastAttemptAt: o.LastAttemptAt,
		ExpiresAt:     o.ExpiresAt,
		RequestedByID: o.RequestedByID,
		EventType:     eventType,
	}
}

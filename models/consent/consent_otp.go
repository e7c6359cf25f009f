package consent

import (
	"time"
)

// DeliveryMethod is the channel the consent code is delivered over.
type DeliveryMethod string

const (
	MethodSMS       DeliveryMethod = "sms"
	MethodEmail     DeliveryMethod = "email"
	MethodSMSEmail  DeliveryMethod = "sms_email"
	MethodInPerson  DeliveryMethod = "in_person"
	MethodPhoneCall DeliveryMethod = "phone_call"
)

// KnownMethod reports whether m is one of the supported delivery channels.
func KnownMethod(m DeliveryMethod) bool {
	switch m {
	case MethodSMS, MethodEmail, MethodSMSEmail, MethodInPerson, MethodPhoneCall:
		return true
	}
	return false
}

// ConsentOtp is one issued consent code for a secondary doctor assignment.
// At most one row per assignment may be active (not expired, not verified,
// not blocked) at a time.
type ConsentOtp struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	AssignmentID uint           `gorm:"not null;index" json:"assignment_id"`
	Code         string         `gorm:"column:code;type:varchar(6);not null" json:"-"`
	Method       DeliveryMethod `gorm:"type:varchar(20);not null" json:"method"`

	IsVerified    bool       `gorm:"default:false" json:"is_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	AttemptsCount int        `gorm:"default:0" json:"attempts_count"`
	MaxAttempts   int        `gorm:"default:3" json:"max_attempts"`
	IsBlocked     bool       `gorm:"default:false" json:"is_blocked"`
	LastAttemptAt *time.Time `gorm:"index" json:"last_attempt_at,omitempty"`
	ExpiresAt     time.Time  `gorm:"not null" json:"expires_at"`

	RequestedByID uint   `gorm:"not null;index" json:"requested_by_id"`
	CustomMessage string `gorm:"type:text" json:"custom_message,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsExpired checks if the code's validity window has passed.
func (o *ConsentOtp) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsActive checks if the code can still be verified (not used, not expired,
// not blocked). This is the dedup predicate for issuance.
func (o *ConsentOtp) IsActive() bool {
	return !o.IsVerified && !o.IsExpired() && !o.IsBlocked
}

// CanAttempt checks if another verification attempt is allowed.
func (o *ConsentOtp) CanAttempt() bool {
	return !o.IsVerified && !o.IsExpired() && !o.IsBlocked && o.AttemptsCount < o.MaxAttempts
}

// RemainingAttempts returns how many verification attempts are left.
func (o *ConsentOtp) RemainingAttempts() int {
	remaining := o.MaxAttempts - o.AttemptsCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingValidity returns the time left until expiry, floored at zero.
func (o *ConsentOtp) RemainingValidity() time.Duration {
	remaining := time.Until(o.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RegisterFailedAttempt increments the attempt counter and blocks the record
// permanently once the cap is reached. Blocking and the final increment land
// in the same update so the two are never persisted apart.
func (o *ConsentOtp) RegisterFailedAttempt() {
	now := time.Now()
	o.AttemptsCount++
	o.LastAttemptAt = &now

	if o.AttemptsCount >= o.MaxAttempts {
		o.IsBlocked = true
	}
}

// MarkVerified records a successful verification. Verified is a terminal
// state; callers must not mutate the row afterwards.
func (o *ConsentOtp) MarkVerified(at time.Time) {
	o.IsVerified = true
	o.VerifiedAt = &at
}

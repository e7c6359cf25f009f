package consent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func activeOtp() *ConsentOtp {
	return &ConsentOtp{
		AssignmentID: 1,
		Code:         "654321",
		Method:       MethodSMS,
		MaxAttempts:  3,
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
}

func TestKnownMethod(t *testing.T) {
	for _, m := range []DeliveryMethod{MethodSMS, MethodEmail, MethodSMSEmail, MethodInPerson, MethodPhoneCall} {
		assert.True(t, KnownMethod(m), string(m))
	}
	assert.False(t, KnownMethod(DeliveryMethod("fax")))
	assert.False(t, KnownMethod(DeliveryMethod("")))
}

func TestIsActive(t *testing.T) {
	o := activeOtp()
	assert.True(t, o.IsActive())

	expired := activeOtp()
	expired.ExpiresAt = time.Now().Add(-time.Second)
	assert.False(t, expired.IsActive())

	verified := activeOtp()
	verified.MarkVerified(time.Now())
	assert.False(t, verified.IsActive())

	blocked := activeOtp()
	blocked.IsBlocked = true
	assert.False(t, blocked.IsActive())
}

func TestRegisterFailedAttempt(t *testing.T) {
	o := activeOtp()

	o.RegisterFailedAttempt()
	assert.Equal(t, 1, o.AttemptsCount)
	assert.False(t, o.IsBlocked)
	assert.NotNil(t, o.LastAttemptAt)
	assert.Equal(t, 2, o.RemainingAttempts())

	o.RegisterFailedAttempt()
	assert.False(t, o.IsBlocked)

	// The attempt that reaches the cap blocks in the same mutation.
	o.RegisterFailedAttempt()
	assert.Equal(t, 3, o.AttemptsCount)
	assert.True(t, o.IsBlocked)
	assert.Equal(t, 0, o.RemainingAttempts())
	assert.False(t, o.CanAttempt())
}

func TestRemainingValidity(t *testing.T) {
	o := activeOtp()
	assert.Greater(t, o.RemainingValidity(), 9*time.Minute)

	o.ExpiresAt = time.Now().Add(-time.Hour)
	assert.Equal(t, time.Duration(0), o.RemainingValidity())
}

func TestSnapshotOtp(t *testing.T) {
	o := activeOtp()
	o.ID = 42
	o.RegisterFailedAttempt()

	ev := SnapshotOtp(o, EventAttemptFailed)
	assert.Equal(t, uint(42), ev.OtpID)
	assert.Equal(t, o.AssignmentID, ev.AssignmentID)
	assert.Equal(t, o.Code, ev.Code)
	assert.Equal(t, o.AttemptsCount, ev.AttemptsCount)
	assert.Equal(t, EventAttemptFailed, ev.EventType)
}

package storage

import (
	"testing"
	"time"

	"clinic-portal/models/assignment"
	"clinic-portal/models/consent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAssignment(t *testing.T, m *MemoryStore) uint {
	t.Helper()
	a := &assignment.SecondaryDoctorAssignment{
		PatientID:         1,
		PrimaryDoctorID:   2,
		SecondaryDoctorID: 3,
		RequiresConsent:   true,
		ConsentStatus:     assignment.ConsentStatusPending,
		IsActive:          true,
	}
	require.NoError(t, m.CreateAssignment(a))
	return a.ID
}

func TestMemoryStore_AssignmentRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	id := seedAssignment(t, m)

	a, err := m.AssignmentByID(id)
	require.NoError(t, err)
	assert.Equal(t, uint(1), a.PatientID)

	// Mutating the returned copy must not leak into the store.
	a.IsActive = false
	again, err := m.AssignmentByID(id)
	require.NoError(t, err)
	assert.True(t, again.IsActive)

	_, err = m.AssignmentByID(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_AssignmentsForUser(t *testing.T) {
	m := NewMemoryStore()
	seedAssignment(t, m)
	seedAssignment(t, m)

	for _, userID := range []uint{1, 2, 3} {
		list, err := m.AssignmentsForUser(userID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	}

	list, err := m.AssignmentsForUser(42)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_ActiveOtpSelection(t *testing.T) {
	m := NewMemoryStore()
	id := seedAssignment(t, m)

	expired := &consent.ConsentOtp{
		AssignmentID: id,
		Code:         "111111",
		Method:       consent.MethodSMS,
		MaxAttempts:  3,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	require.NoError(t, m.CreateOtp(expired))

	_, err := m.ActiveOtpByAssignment(id)
	assert.ErrorIs(t, err, ErrNotFound)

	active := &consent.ConsentOtp{
		AssignmentID: id,
		Code:         "222222",
		Method:       consent.MethodSMS,
		MaxAttempts:  3,
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
	require.NoError(t, m.CreateOtp(active))

	got, err := m.ActiveOtpByAssignment(id)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	// Blocking removes the record from the active set.
	got.IsBlocked = true
	require.NoError(t, m.SaveOtp(got))
	_, err = m.ActiveOtpByAssignment(id)
	assert.ErrorIs(t, err, ErrNotFound)

	// But the latest lookup still sees it.
	latest, err := m.LatestOtpByAssignment(id)
	require.NoError(t, err)
	assert.Equal(t, active.ID, latest.ID)
}

func TestMemoryStore_TransactionSerializes(t *testing.T) {
	m := NewMemoryStore()
	id := seedAssignment(t, m)

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = m.Transaction(func(tx Store) error {
				if _, err := tx.ActiveOtpByAssignment(id); err == nil {
					return nil
				}
				return tx.CreateOtp(&consent.ConsentOtp{
					AssignmentID: id,
					Code:         "333333",
					Method:       consent.MethodSMS,
					MaxAttempts:  3,
					ExpiresAt:    time.Now().Add(10 * time.Minute),
				})
			})
		}()
	}
	<-done
	<-done

	// The check-then-create pair ran under the transaction lock, so only
	// one active code exists.
	otp, err := m.ActiveOtpByAssignment(id)
	require.NoError(t, err)
	assert.Equal(t, uint(1), otp.ID)
}

package consent

import (
	"errors"
	"fmt"
	"time"

	"clinic-portal/logger"
	assignmentModel "clinic-portal/models/assignment"
	consentModel "clinic-portal/models/consent"
	"clinic-portal/storage"
)

const (
	// CodeValidity is how long an issued consent code can be verified.
	CodeValidity = 10 * time.Minute

	// DefaultMaxAttempts is the per-code verification attempt cap.
	DefaultMaxAttempts = 3
)

// Notifier delivers an issued code to the patient. Delivery is best-effort;
// the engine logs failures and moves on.
type Notifier interface {
	SendConsentCode(method consentModel.DeliveryMethod, phone, email, code, customMessage string) error
}

// Service is the consent workflow engine. It owns issuance of consent codes,
// single-active-code deduplication, verification with attempt limiting, and
// the atomic grant transition on the assignment.
type Service struct {
	store    storage.Store
	notifier Notifier
}

// NewConsentService builds the engine over a store and a notifier.
func NewConsentService(store storage.Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// IssuanceResult reports the code record issuance produced or reused.
type IssuanceResult struct {
	Otp    *consentModel.ConsentOtp
	Reused bool
}

// VerificationResult reports the outcome of a verification call. On
// ErrInvalidCode the Otp field still carries the updated attempt state.
type VerificationResult struct {
	Otp        *consentModel.ConsentOtp
	Assignment *assignmentModel.SecondaryDoctorAssignment
}

// RequestConsent issues a consent code for the assignment, or returns the
// already-active one. Preconditions are checked in a fixed order and each
// failure maps to its own sentinel error.
func (s *Service) RequestConsent(assignmentID, actorUserID uint, method consentModel.DeliveryMethod, customMessage string) (*IssuanceResult, error) {
	a, err := s.store.AssignmentByID(assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !a.CanBeManagedBy(actorUserID) {
		return nil, ErrAssignmentNotFound
	}
	if !a.RequiresConsent {
		return nil, ErrConsentNotRequired
	}
	if a.ConsentStatus == assignmentModel.ConsentStatusGranted {
		return nil, ErrConsentAlreadyGranted
	}
	if !a.IsActive {
		return nil, ErrAssignmentInactive
	}
	if !consentModel.KnownMethod(method) {
		return nil, ErrUnknownMethod
	}

	var result IssuanceResult

	// The dedup check and the insert share one transaction so two racing
	// issuance calls cannot both mint a code for the same assignment.
	err = s.store.Transaction(func(tx storage.Store) error {
		existing, err := tx.ActiveOtpByAssignment(assignmentID)
		if err == nil {
			result.Otp = existing
			result.Reused = true
			return tx.CreateOtpEvent(consentModel.SnapshotOtp(existing, consentModel.EventReissued))
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		code, err := GenerateConsentCode()
		if err != nil {
			return err
		}

		otp := &consentModel.ConsentOtp{
			AssignmentID:  assignmentID,
			Code:          code,
			Method:        method,
			MaxAttempts:   DefaultMaxAttempts,
			ExpiresAt:     time.Now().Add(CodeValidity),
			RequestedByID: actorUserID,
			CustomMessage: customMessage,
		}
		if err := tx.CreateOtp(otp); err != nil {
			return err
		}
		result.Otp = otp
		return tx.CreateOtpEvent(consentModel.SnapshotOtp(otp, consentModel.EventIssued))
	})
	if err != nil {
		return nil, err
	}

	// Notification is fire-and-forget; a delivery failure never unwinds
	// the issued code.
	if !result.Reused {
		s.dispatchCode(a, result.Otp)
	}

	return &result, nil
}

func (s *Service) dispatchCode(a *assignmentModel.SecondaryDoctorAssignment, otp *consentModel.ConsentOtp) {
	if s.notifier == nil {
		return
	}

	patient, err := s.store.UserByID(a.PatientID)
	if err != nil {
		logger.Error(fmt.Sprintf("Consent code issued but patient %d could not be loaded for delivery", a.PatientID), err)
		return
	}

	if err := s.notifier.SendConsentCode(otp.Method, patient.Phone, patient.ContactEmail(), otp.Code, otp.CustomMessage); err != nil {
		logger.Error(fmt.Sprintf("Failed to deliver consent code for assignment %d", a.ID), err)
	}
}

// VerifyConsent checks a submitted code against the latest one issued for
// the assignment. A correct code flips the code record and the assignment's
// consent fields in a single transaction; a wrong code burns an attempt and
// may block the record permanently.
func (s *Service) VerifyConsent(assignmentID uint, submittedCode string) (*VerificationResult, error) {
	otp, err := s.store.LatestOtpByAssignment(assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOtpNotFound
		}
		return nil, err
	}

	// Ordering matters: expiry and terminal states are reported without
	// consuming an attempt.
	if otp.IsExpired() {
		return &VerificationResult{Otp: otp}, ErrOtpExpired
	}
	if otp.IsVerified {
		return &VerificationResult{Otp: otp}, ErrOtpAlreadyVerified
	}
	if otp.IsBlocked || otp.AttemptsCount >= otp.MaxAttempts {
		return &VerificationResult{Otp: otp}, ErrMaxAttemptsExceeded
	}

	if submittedCode != otp.Code {
		wasBlocked := otp.IsBlocked
		otp.RegisterFailedAttempt()

		err := s.store.Transaction(func(tx storage.Store) error {
			if err := tx.SaveOtp(otp); err != nil {
				return err
			}
			eventType := consentModel.EventAttemptFailed
			if otp.IsBlocked && !wasBlocked {
				eventType = consentModel.EventBlocked
			}
			return tx.CreateOtpEvent(consentModel.SnapshotOtp(otp, eventType))
		})
		if err != nil {
			return nil, err
		}
		return &VerificationResult{Otp: otp}, ErrInvalidCode
	}

	var result VerificationResult

	// The grant is the one place true atomicity is required: a verified
	// code with an ungranted assignment (or the reverse) must never be
	// observable.
	err = s.store.Transaction(func(tx storage.Store) error {
		a, err := tx.AssignmentByID(assignmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		otp.MarkVerified(now)
		if err := tx.SaveOtp(otp); err != nil {
			return err
		}

		a.GrantAccess(now)
		if err := tx.SaveAssignment(a); err != nil {
			return err
		}

		result.Otp = otp
		result.Assignment = a
		return tx.CreateOtpEvent(consentModel.SnapshotOtp(otp, consentModel.EventVerified))
	})
	if err != nil {
		return nil, err
	}

	logger.Success(fmt.Sprintf("Patient consent granted for assignment %d", assignmentID))
	return &result, nil
}

// Status returns the latest consent code state for an assignment, for the
// doctors attached to it. The code value itself is never exposed.
func (s *Service) Status(assignmentID, actorUserID uint) (*consentModel.ConsentOtp, error) {
	a, err := s.store.AssignmentByID(assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if !a.CanBeManagedBy(actorUserID) {
		return nil, ErrAssignmentNotFound
	}

	otp, err := s.store.LatestOtpByAssignment(assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrOtpNotFound
		}
		return nil, err
	}
	return otp, nil
}

package consent

import "errors"

// Typed outcomes of the consent workflow. Controllers translate these into
// HTTP statuses and machine-checkable reason codes; the engine never retries
// any of them.
var (
	// ErrAssignmentNotFound covers both a missing assignment and an actor
	// who is not attached to it, so callers cannot probe for existence.
	ErrAssignmentNotFound    = errors.New("assignment not found or access denied")
	ErrConsentNotRequired    = errors.New("assignment does not require patient consent")
	ErrConsentAlreadyGranted = errors.New("patient consent already granted")
	ErrAssignmentInactive    = errors.New("assignment is not active")
	ErrUnknownMethod         = errors.New("unknown delivery method")

	ErrOtpNotFound         = errors.New("no consent code found for assignment")
	ErrOtpExpired          = errors.New("consent code has expired")
	ErrOtpAlreadyVerified  = errors.New("consent code already verified")
	ErrMaxAttemptsExceeded = errors.New("maximum verification attempts exceeded")
	ErrInvalidCode         = errors.New("invalid consent code")
)

// ReasonForError maps a workflow error to its wire-level reason code.
func ReasonForError(err error) string {
	switch {
	case errors.Is(err, ErrAssignmentNotFound):
		return "not_found_or_forbidden"
	case errors.Is(err, ErrConsentNotRequired):
		return "consent_not_required"
	case errors.Is(err, ErrConsentAlreadyGranted):
		return "already_granted"
	case errors.Is(err, ErrAssignmentInactive):
		return "assignment_inactive"
	case errors.Is(err, ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, ErrOtpNotFound):
		return "otp_not_found"
	case errors.Is(err, ErrOtpExpired):
		return "otp_expired"
	case errors.Is(err, ErrOtpAlreadyVerified):
		return "otp_already_verified"
	case errors.Is(err, ErrMaxAttemptsExceeded):
		return "max_attempts_exceeded"
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	default:
		return "internal_error"
	}
}

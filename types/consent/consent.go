package consent

// RequestConsentRequest is the payload for issuing a consent code.
type RequestConsentRequest struct {
	AssignmentID  uint   `json:"assignment_id" validate:"required"`
	Method        string `json:"method" validate:"required,oneof=sms email sms_email in_person phone_call"`
	CustomMessage string `json:"custom_message" validate:"omitempty,max=500"`
}

// VerifyConsentRequest is the payload for verifying a consent code.
type VerifyConsentRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Code         string `json:"code" validate:"required,len=6,numeric"`
}

// ConsentStatusRequest asks for the state of the latest code on an assignment.
type ConsentStatusRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
}

// IssuanceResponse describes an issued (or deduplicated) consent code.
// The code itself is never included.
type IssuanceResponse struct {
	OtpID             uint   `json:"otp_id"`
	AssignmentID      uint   `json:"assignment_id"`
	Method            string `json:"method"`
	Reused            bool   `json:"reused"`
	ExpiresAt         string `json:"expires_at"`
	ExpiresInSeconds  int    `json:"expires_in_seconds"`
	RemainingAttempts int    `json:"remaining_attempts"`
}

// VerificationResponse describes the outcome of a verification call.
type VerificationResponse struct {
	AssignmentID      uint   `json:"assignment_id"`
	Verified          bool   `json:"verified"`
	VerifiedAt        string `json:"verified_at,omitempty"`
	ConsentStatus     string `json:"consent_status"`
	AccessGranted     bool   `json:"access_granted"`
	RemainingAttempts *int   `json:"remaining_attempts,omitempty"`
	IsBlocked         *bool  `json:"is_blocked,omitempty"`
}

// StatusResponse reports the state of the latest consent code without
// revealing its value.
type StatusResponse struct {
	AssignmentID      uint   `json:"assignment_id"`
	HasActiveCode     bool   `json:"has_active_code"`
	IsVerified        bool   `json:"is_verified"`
	IsBlocked         bool   `json:"is_blocked"`
	IsExpired         bool   `json:"is_expired"`
	ExpiresAt         string `json:"expires_at,omitempty"`
	RemainingAttempts int    `json:"remaining_attempts"`
	Message           string `json:"message"`
}

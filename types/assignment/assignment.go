package assignment

// CreateAssignmentRequest is the payload for assigning a secondary doctor to
// a patient.
type CreateAssignmentRequest struct {
	PatientID         uint   `json:"patient_id" validate:"required"`
	SecondaryDoctorID uint   `json:"secondary_doctor_id" validate:"required"`
	Specialty         string `json:"specialty" validate:"omitempty,max=100"`
	Notes             string `json:"notes" validate:"omitempty,max=2000"`
	// WaiveConsent skips the patient consent flow; only callers holding an
	// admin permission may set it.
	WaiveConsent bool `json:"waive_consent"`
}

// DeactivateAssignmentRequest marks an assignment inactive.
type DeactivateAssignmentRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
}

// AssignmentResponse is the public shape of an assignment.
type AssignmentResponse struct {
	ID                uint   `json:"id"`
	PatientID         uint   `json:"patient_id"`
	PrimaryDoctorID   uint   `json:"primary_doctor_id"`
	SecondaryDoctorID uint   `json:"secondary_doctor_id"`
	Specialty         string `json:"specialty"`
	Notes             string `json:"notes,omitempty"`
	RequiresConsent   bool   `json:"requires_consent"`
	ConsentStatus     string `json:"consent_status"`
	AccessGranted     bool   `json:"access_granted"`
	AccessGrantedAt   string `json:"access_granted_at,omitempty"`
	IsActive          bool   `json:"is_active"`
	CreatedAt         string `json:"created_at"`
}

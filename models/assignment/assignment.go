package assignment

import (
	"time"
)

// ConsentStatus tracks the patient's authorization of a secondary doctor.
type ConsentStatus string

const (
	ConsentStatusPending ConsentStatus = "pending"
	ConsentStatusGranted ConsentStatus = "granted"
)

// SecondaryDoctorAssignment links a secondary doctor to a patient's record.
// Access to the record stays locked until the patient confirms consent via
// the one-time code flow.
type SecondaryDoctorAssignment struct {
	ID                uint `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID         uint `gorm:"not null;index" json:"patient_id"`
	PrimaryDoctorID   uint `gorm:"not null;index" json:"primary_doctor_id"`
	SecondaryDoctorID uint `gorm:"not null;index" json:"secondary_doctor_id"`

	Specialty string `gorm:"type:varchar(100)" json:"specialty"`
	Notes     string `gorm:"type:text" json:"notes"`

	RequiresConsent bool          `gorm:"default:true" json:"requires_consent"`
	ConsentStatus   ConsentStatus `gorm:"type:varchar(20);default:'pending'" json:"consent_status"`
	AccessGranted   bool          `gorm:"default:false" json:"access_granted"`
	AccessGrantedAt *time.Time    `json:"access_granted_at,omitempty"`
	IsActive        bool          `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CanBeManagedBy reports whether the given user may issue or inspect consent
// codes for this assignment. Only the doctor who created the assignment and
// the assigned secondary doctor qualify.
func (a *SecondaryDoctorAssignment) CanBeManagedBy(userID uint) bool {
	return userID == a.PrimaryDoctorID || userID == a.SecondaryDoctorID
}

// GrantAccess flips the consent fields to their granted state.
func (a *SecondaryDoctorAssignment) GrantAccess(at time.Time) {
	a.ConsentStatus = ConsentStatusGranted
	a.AccessGranted = true
	a.AccessGrantedAt = &at
}

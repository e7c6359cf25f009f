package storage

import (
	"errors"

	"clinic-portal/models/assignment"
	"clinic-portal/models/consent"
	"clinic-portal/models/user"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary the consent engine and controllers work
// against. The production implementation is GORM/Postgres; tests use the
// in-memory variant.
type Store interface {
	// Assignments
	AssignmentByID(id uint) (*assignment.SecondaryDoctorAssignment, error)
	AssignmentsForUser(userID uint) ([]assignment.SecondaryDoctorAssignment, error)
	CreateAssignment(a *assignment.SecondaryDoctorAssignment) error
	SaveAssignment(a *assignment.SecondaryDoctorAssignment) error

	// Consent OTPs
	ActiveOtpByAssignment(assignmentID uint) (*consent.ConsentOtp, error)
	LatestOtpByAssignment(assignmentID uint) (*consent.ConsentOtp, error)
	CreateOtp(o *consent.ConsentOtp) error
	SaveOtp(o *consent.ConsentOtp) error
	CreateOtpEvent(ev *consent.ConsentOtpEvent) error

	// Users
	UserByID(id uint) (*user.User, error)
	UserByUuid(uuid string) (*user.User, error)
	CreateUser(u *user.User) error

	// Transaction runs fn against a store whose writes commit together or
	// not at all. The consent grant (OTP verified + assignment granted)
	// depends on this guarantee.
	Transaction(fn func(Store) error) error
}

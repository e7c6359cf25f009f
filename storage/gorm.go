package storage

import (
	"errors"
	"fmt"
	"time"

	"clinic-portal/models/assignment"
	"clinic-portal/models/consent"
	"clinic-portal/models/user"

	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) AssignmentByID(id uint) (*assignment.SecondaryDoctorAssignment, error) {
	var a assignment.SecondaryDoctorAssignment
	if err := s.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

func (s *GormStore) AssignmentsForUser(userID uint) ([]assignment.SecondaryDoctorAssignment, error) {
	var list []assignment.SecondaryDoctorAssignment
	err := s.db.
		Where("patient_id = ? OR primary_doctor_id = ? OR secondary_doctor_id = ?", userID, userID, userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

func (s *GormStore) CreateAssignment(a *assignment.SecondaryDoctorAssignment) error {
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (s *GormStore) SaveAssignment(a *assignment.SecondaryDoctorAssignment) error {
	if err := s.db.Save(a).Error; err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

func (s *GormStore) ActiveOtpByAssignment(assignmentID uint) (*consent.ConsentOtp, error) {
	var o consent.ConsentOtp
	err := s.db.
		Where("assignment_id = ? AND is_verified = false AND is_blocked = false AND expires_at > ?",
			assignmentID, time.Now()).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find active consent otp: %w", err)
	}
	return &o, nil
}

func (s *GormStore) LatestOtpByAssignment(assignmentID uint) (*consent.ConsentOtp, error) {
	var o consent.ConsentOtp
	err := s.db.
		Where("assignment_id = ?", assignmentID).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find latest consent otp: %w", err)
	}
	return &o, nil
}

func (s *GormStore) CreateOtp(o *consent.ConsentOtp) error {
	if err := s.db.Create(o).Error; err != nil {
		return fmt.Errorf("create consent otp: %w", err)
	}
	return nil
}

func (s *GormStore) SaveOtp(o *consent.ConsentOtp) error {
	if err := s.db.Save(o).Error; err != nil {
		return fmt.Errorf("save consent otp: %w", err)
	}
	return nil
}

func (s *GormStore) CreateOtpEvent(ev *consent.ConsentOtpEvent) error {
	if err := s.db.Create(ev).Error; err != nil {
		return fmt.Errorf("create consent otp event: %w", err)
	}
	return nil
}

func (s *GormStore) UserByID(id uint) (*user.User, error) {
	var u user.User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *GormStore) UserByUuid(uuid string) (*user.User, error) {
	var u user.User
	if err := s.db.Where("uuid = ?", uuid).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by uuid: %w", err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(u *user.User) error {
	if err := s.db.Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Transaction delegates to gorm's transaction support; fn receives a Store
// bound to the transactional handle.
func (s *GormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

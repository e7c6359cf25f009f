package storage

import (
	"sort"
	"sync"
	"time"

	"clinic-portal/models/assignment"
	"clinic-portal/models/consent"
	"clinic-portal/models/user"
)

// MemoryStore holds all data in memory. It backs the test suite and local
// runs without Postgres. Reads hand out copies so callers never alias the
// stored rows.
type MemoryStore struct {
	mu sync.RWMutex
	// txMu serializes Transaction bodies; the memory variant cannot roll
	// back, it only guarantees that no other writer interleaves.
	txMu sync.Mutex

	assignments map[uint]*assignment.SecondaryDoctorAssignment
	otps        map[uint]*consent.ConsentOtp
	otpEvents   []consent.ConsentOtpEvent
	users       map[uint]*user.User

	assignmentCounter uint
	otpCounter        uint
	userCounter       uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[uint]*assignment.SecondaryDoctorAssignment),
		otps:        make(map[uint]*consent.ConsentOtp),
		users:       make(map[uint]*user.User),
	}
}

func (m *MemoryStore) AssignmentByID(id uint) (*assignment.SecondaryDoctorAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) AssignmentsForUser(userID uint) ([]assignment.SecondaryDoctorAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []assignment.SecondaryDoctorAssignment
	for _, a := range m.assignments {
		if a.PatientID == userID || a.PrimaryDoctorID == userID || a.SecondaryDoctorID == userID {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (m *MemoryStore) CreateAssignment(a *assignment.SecondaryDoctorAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assignmentCounter++
	a.ID = m.assignmentCounter
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m *MemoryStore) SaveAssignment(a *assignment.SecondaryDoctorAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assignments[a.ID]; !ok {
		return ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m *MemoryStore) ActiveOtpByAssignment(assignmentID uint) (*consent.ConsentOtp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *consent.ConsentOtp
	for _, o := range m.otps {
		if o.AssignmentID != assignmentID || !o.IsActive() {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryStore) LatestOtpByAssignment(assignmentID uint) (*consent.ConsentOtp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *consent.ConsentOtp
	for _, o := range m.otps {
		if o.AssignmentID != assignmentID {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) || (o.CreatedAt.Equal(latest.CreatedAt) && o.ID > latest.ID) {
			latest = o
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryStore) CreateOtp(o *consent.ConsentOtp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.otpCounter++
	o.ID = m.otpCounter
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	m.otps[o.ID] = &cp
	return nil
}

func (m *MemoryStore) SaveOtp(o *consent.ConsentOtp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.otps[o.ID]; !ok {
		return ErrNotFound
	}
	o.UpdatedAt = time.Now()
	cp := *o
	m.otps[o.ID] = &cp
	return nil
}

func (m *MemoryStore) CreateOtpEvent(ev *consent.ConsentOtpEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev.ID = uint(len(m.otpEvents) + 1)
	ev.CreatedAt = time.Now()
	m.otpEvents = append(m.otpEvents, *ev)
	return nil
}

// OtpEvents returns a snapshot of all recorded audit events.
func (m *MemoryStore) OtpEvents() []consent.ConsentOtpEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]consent.ConsentOtpEvent, len(m.otpEvents))
	copy(out, m.otpEvents)
	return out
}

func (m *MemoryStore) UserByID(id uint) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) UserByUuid(uuid string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Uuid == uuid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userCounter++
	u.ID = m.userCounter
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// Transaction serializes fn against all other transactions. Writes are
// applied immediately; the in-memory store does not support rollback.
func (m *MemoryStore) Transaction(fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

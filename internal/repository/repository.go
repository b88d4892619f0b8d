package repository

import (
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a row does not exist or is soft-deleted.
	ErrNotFound = errors.New("repository: not found")

	// ErrConflict is returned on uniqueness violations, e.g. a second
	// membership for the same (user, practice) pair.
	ErrConflict = errors.New("repository: conflict")
)

// Repositories bundles every store behind one injection point.
type Repositories struct {
	Owners         OwnersRepository
	Users          UsersRepository
	Practices      PracticesRepository
	Memberships    MembershipsRepository
	Supervisors    SupervisorsRepository
	Therapists     TherapistsRepository
	Patients       PatientsRepository
	Sessions       SessionNotesRepository
	AuthSessions   AuthSessionsRepository
	PasswordResets PasswordResetsRepository
}

// NewPostgres wires every repository against one *sql.DB.
func NewPostgres(db *sql.DB) *Repositories {
	return &Repositories{
		Owners:         NewPostgresOwners(db),
		Users:          NewPostgresUsers(db),
		Practices:      NewPostgresPractices(db),
		Memberships:    NewPostgresMemberships(db),
		Supervisors:    NewPostgresSupervisors(db),
		Therapists:     NewPostgresTherapists(db),
		Patients:       NewPostgresPatients(db),
		Sessions:       NewPostgresSessionNotes(db),
		AuthSessions:   NewPostgresAuthSessions(db),
		PasswordResets: NewPostgresPasswordResets(db),
	}
}

// NewMemory wires every in-memory repository. Intended for tests.
func NewMemory() *Repositories {
	return &Repositories{
		Owners:         NewMemoryOwners(),
		Users:          NewMemoryUsers(),
		Practices:      NewMemoryPractices(),
		Memberships:    NewMemoryMemberships(),
		Supervisors:    NewMemorySupervisors(),
		Therapists:     NewMemoryTherapists(),
		Patients:       NewMemoryPatients(),
		Sessions:       NewMemorySessionNotes(),
		AuthSessions:   NewMemoryAuthSessions(),
		PasswordResets: NewMemoryPasswordResets(),
	}
}

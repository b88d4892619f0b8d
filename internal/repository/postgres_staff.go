package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PostgresSupervisors struct {
	db *sql.DB
}

func NewPostgresSupervisors(db *sql.DB) *PostgresSupervisors {
	return &PostgresSupervisors{db: db}
}

var _ SupervisorsRepository = (*PostgresSupervisors)(nil)

const supervisorColumns = `id, user_id, practice_id, email,
	COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''),
	COALESCE(license_number,''), COALESCE(license_state,''), license_expiry,
	specialty, is_deleted, created_at, updated_at`

func scanSupervisor(row interface{ Scan(...any) error }) (*Supervisor, error) {
	var s Supervisor
	var expiry sql.NullTime
	var specialty []byte
	err := row.Scan(
		&s.ID, &s.UserID, &s.PracticeID, &s.Email,
		&s.FirstName, &s.LastName, &s.Phone,
		&s.LicenseNumber, &s.LicenseState, &expiry,
		&specialty, &s.IsDeleted, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan supervisor: %w", err)
	}
	if expiry.Valid {
		s.LicenseExpiry = &expiry.Time
	}
	if len(specialty) > 0 {
		if err := json.Unmarshal(specialty, &s.Specialty); err != nil {
			return nil, fmt.Errorf("failed to decode supervisor specialty: %w", err)
		}
	}
	return &s, nil
}

func encodeSpecialty(specialty []string) ([]byte, error) {
	if specialty == nil {
		return nil, nil
	}
	return json.Marshal(specialty)
}

func (r *PostgresSupervisors) Create(ctx context.Context, s *Supervisor) error {
	specialty, err := encodeSpecialty(s.Specialty)
	if err != nil {
		return fmt.Errorf("failed to encode specialty: %w", err)
	}

	query := `
		INSERT INTO supervisors (
			id, user_id, practice_id, email, first_name, last_name, phone,
			license_number, license_state, license_expiry, specialty
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.PracticeID, s.Email, s.FirstName, s.LastName, s.Phone,
		s.LicenseNumber, s.LicenseState, s.LicenseExpiry, specialty,
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	return nil
}

func (r *PostgresSupervisors) GetByID(ctx context.Context, id string) (*Supervisor, error) {
	query := `SELECT ` + supervisorColumns + ` FROM supervisors WHERE id = $1 AND NOT is_deleted`
	return scanSupervisor(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresSupervisors) GetByUserAndPractice(ctx context.Context, userID, practiceID string) (*Supervisor, error) {
	query := `
		SELECT ` + supervisorColumns + `
		  FROM supervisors
		 WHERE user_id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	return scanSupervisor(r.db.QueryRowContext(ctx, query, userID, practiceID))
}

func (r *PostgresSupervisors) ListByPractice(ctx context.Context, practiceID string) ([]*Supervisor, error) {
	query := `
		SELECT ` + supervisorColumns + `
		  FROM supervisors
		 WHERE practice_id = $1 AND NOT is_deleted
		 ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, practiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supervisors: %w", err)
	}
	defer rows.Close()

	var supervisors []*Supervisor
	for rows.Next() {
		s, err := scanSupervisor(rows)
		if err != nil {
			return nil, err
		}
		supervisors = append(supervisors, s)
	}
	return supervisors, rows.Err()
}

func (r *PostgresSupervisors) Update(ctx context.Context, s *Supervisor) error {
	specialty, err := encodeSpecialty(s.Specialty)
	if err != nil {
		return fmt.Errorf("failed to encode specialty: %w", err)
	}

	query := `
		UPDATE supervisors
		   SET first_name = $2, last_name = $3, phone = $4,
		       license_number = $5, license_state = $6, license_expiry = $7,
		       specialty = $8, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.FirstName, s.LastName, s.Phone,
		s.LicenseNumber, s.LicenseState, s.LicenseExpiry, specialty,
	)
	if err != nil {
		return fmt.Errorf("failed to update supervisor: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresSupervisors) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE supervisors SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete supervisor: %w", err)
	}
	return requireRow(res)
}

type PostgresTherapists struct {
	db *sql.DB
}

func NewPostgresTherapists(db *sql.DB) *PostgresTherapists {
	return &PostgresTherapists{db: db}
}

var _ TherapistsRepository = (*PostgresTherapists)(nil)

const therapistColumns = `id, user_id, practice_id, COALESCE(supervisor_id,''), email,
	COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''),
	COALESCE(license_number,''), COALESCE(license_state,''), license_expiry,
	specialty, is_deleted, created_at, updated_at`

func scanTherapist(row interface{ Scan(...any) error }) (*Therapist, error) {
	var t Therapist
	var expiry sql.NullTime
	var specialty []byte
	err := row.Scan(
		&t.ID, &t.UserID, &t.PracticeID, &t.SupervisorID, &t.Email,
		&t.FirstName, &t.LastName, &t.Phone,
		&t.LicenseNumber, &t.LicenseState, &expiry,
		&specialty, &t.IsDeleted, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan therapist: %w", err)
	}
	if expiry.Valid {
		t.LicenseExpiry = &expiry.Time
	}
	if len(specialty) > 0 {
		if err := json.Unmarshal(specialty, &t.Specialty); err != nil {
			return nil, fmt.Errorf("failed to decode therapist specialty: %w", err)
		}
	}
	return &t, nil
}

func (r *PostgresTherapists) Create(ctx context.Context, t *Therapist) error {
	specialty, err := encodeSpecialty(t.Specialty)
	if err != nil {
		return fmt.Errorf("failed to encode specialty: %w", err)
	}

	query := `
		INSERT INTO therapists (
			id, user_id, practice_id, supervisor_id, email, first_name, last_name, phone,
			license_number, license_state, license_expiry, specialty
		) VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.PracticeID, t.SupervisorID, t.Email, t.FirstName, t.LastName, t.Phone,
		t.LicenseNumber, t.LicenseState, t.LicenseExpiry, specialty,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create therapist: %w", err)
	}
	return nil
}

func (r *PostgresTherapists) GetByID(ctx context.Context, id string) (*Therapist, error) {
	query := `SELECT ` + therapistColumns + ` FROM therapists WHERE id = $1 AND NOT is_deleted`
	return scanTherapist(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresTherapists) GetByUserAndPractice(ctx context.Context, userID, practiceID string) (*Therapist, error) {
	query := `
		SELECT ` + therapistColumns + `
		  FROM therapists
		 WHERE user_id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	return scanTherapist(r.db.QueryRowContext(ctx, query, userID, practiceID))
}

func (r *PostgresTherapists) ListByPractice(ctx context.Context, practiceID string) ([]*Therapist, error) {
	query := `
		SELECT ` + therapistColumns + `
		  FROM therapists
		 WHERE practice_id = $1 AND NOT is_deleted
		 ORDER BY created_at
	`
	return r.queryTherapists(ctx, query, practiceID)
}

func (r *PostgresTherapists) ListBySupervisor(ctx context.Context, supervisorID, practiceID string) ([]*Therapist, error) {
	query := `
		SELECT ` + therapistColumns + `
		  FROM therapists
		 WHERE supervisor_id = $1 AND practice_id = $2 AND NOT is_deleted
		 ORDER BY created_at
	`
	return r.queryTherapists(ctx, query, supervisorID, practiceID)
}

func (r *PostgresTherapists) queryTherapists(ctx context.Context, query string, args ...any) ([]*Therapist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list therapists: %w", err)
	}
	defer rows.Close()

	var therapists []*Therapist
	for rows.Next() {
		t, err := scanTherapist(rows)
		if err != nil {
			return nil, err
		}
		therapists = append(therapists, t)
	}
	return therapists, rows.Err()
}

func (r *PostgresTherapists) Update(ctx context.Context, t *Therapist) error {
	specialty, err := encodeSpecialty(t.Specialty)
	if err != nil {
		return fmt.Errorf("failed to encode specialty: %w", err)
	}

	query := `
		UPDATE therapists
		   SET first_name = $2, last_name = $3, phone = $4,
		       license_number = $5, license_state = $6, license_expiry = $7,
		       specialty = $8, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.FirstName, t.LastName, t.Phone,
		t.LicenseNumber, t.LicenseState, t.LicenseExpiry, specialty,
	)
	if err != nil {
		return fmt.Errorf("failed to update therapist: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresTherapists) AssignSupervisor(ctx context.Context, therapistID, practiceID, supervisorID string) error {
	query := `
		UPDATE therapists
		   SET supervisor_id = NULLIF($3,''), updated_at = now()
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, therapistID, practiceID, supervisorID)
	if err != nil {
		return fmt.Errorf("failed to assign supervisor: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresTherapists) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE therapists SET is_deleted = TRUE, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete therapist: %w", err)
	}
	return requireRow(res)
}

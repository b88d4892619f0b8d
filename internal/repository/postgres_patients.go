package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresPatients struct {
	db *sql.DB
}

func NewPostgresPatients(db *sql.DB) *PostgresPatients {
	return &PostgresPatients{db: db}
}

var _ PatientsRepository = (*PostgresPatients)(nil)

const patientColumns = `id, practice_id, COALESCE(therapist_id,''),
	COALESCE(first_name,''), COALESCE(last_name,''),
	COALESCE(email,''), COALESCE(phone,''), COALESCE(gender,''), dob,
	address, emergency_contact,
	COALESCE(created_by,''), COALESCE(updated_by,''),
	is_deleted, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*Patient, error) {
	var p Patient
	var dob sql.NullTime
	var address, contact []byte
	err := row.Scan(
		&p.ID, &p.PracticeID, &p.TherapistID,
		&p.FirstName, &p.LastName,
		&p.Email, &p.Phone, &p.Gender, &dob,
		&address, &contact,
		&p.CreatedBy, &p.UpdatedBy,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}
	if dob.Valid {
		p.DOB = &dob.Time
	}
	p.Address = address
	p.EmergencyContact = contact
	return &p, nil
}

func (r *PostgresPatients) Create(ctx context.Context, p *Patient) error {
	query := `
		INSERT INTO patients (
			id, practice_id, therapist_id, first_name, last_name, email, phone,
			gender, dob, address, emergency_contact, created_by, updated_by
		) VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.PracticeID, p.TherapistID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.Gender, p.DOB, []byte(p.Address), []byte(p.EmergencyContact), p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *PostgresPatients) GetByID(ctx context.Context, id, practiceID string) (*Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		  FROM patients
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	return scanPatient(r.db.QueryRowContext(ctx, query, id, practiceID))
}

func (r *PostgresPatients) ListByPractice(ctx context.Context, practiceID string) ([]*Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		  FROM patients
		 WHERE practice_id = $1 AND NOT is_deleted
		 ORDER BY created_at
	`
	return r.queryPatients(ctx, query, practiceID)
}

func (r *PostgresPatients) ListByTherapist(ctx context.Context, therapistID, practiceID string) ([]*Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		  FROM patients
		 WHERE therapist_id = $1 AND practice_id = $2 AND NOT is_deleted
		 ORDER BY created_at
	`
	return r.queryPatients(ctx, query, therapistID, practiceID)
}

func (r *PostgresPatients) queryPatients(ctx context.Context, query string, args ...any) ([]*Patient, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *PostgresPatients) Update(ctx context.Context, p *Patient) error {
	query := `
		UPDATE patients
		   SET first_name = $3, last_name = $4, email = $5, phone = $6,
		       gender = $7, dob = $8, address = $9, emergency_contact = $10,
		       updated_by = $11, updated_at = now()
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.PracticeID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.Gender, p.DOB, []byte(p.Address), []byte(p.EmergencyContact), p.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresPatients) AssignTherapist(ctx context.Context, patientID, practiceID, therapistID, updatedBy string) error {
	query := `
		UPDATE patients
		   SET therapist_id = NULLIF($3,''), updated_by = $4, updated_at = now()
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, patientID, practiceID, therapistID, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to assign therapist: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresPatients) SoftDelete(ctx context.Context, id, practiceID, deletedBy string) error {
	query := `
		UPDATE patients
		   SET is_deleted = TRUE, updated_by = $3, updated_at = now()
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, id, practiceID, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return requireRow(res)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresMemberships struct {
	db *sql.DB
}

func NewPostgresMemberships(db *sql.DB) *PostgresMemberships {
	return &PostgresMemberships{db: db}
}

var _ MembershipsRepository = (*PostgresMemberships)(nil)

const membershipColumns = `id, user_id, practice_id, role, status,
	email, first_name, last_name, phone,
	COALESCE(created_by,''), COALESCE(updated_by,''),
	is_deleted, created_at, updated_at`

func scanMembership(row interface{ Scan(...any) error }) (*Membership, error) {
	var m Membership
	err := row.Scan(
		&m.ID, &m.UserID, &m.PracticeID, &m.Role, &m.Status,
		&m.Email, &m.FirstName, &m.LastName, &m.Phone,
		&m.CreatedBy, &m.UpdatedBy,
		&m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan membership: %w", err)
	}
	return &m, nil
}

func (r *PostgresMemberships) Create(ctx context.Context, m *Membership) error {
	query := `
		INSERT INTO user_practice_roles (
			id, user_id, practice_id, role, status,
			email, first_name, last_name, phone, created_by, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, m.PracticeID, m.Role, m.Status,
		m.Email, m.FirstName, m.LastName, m.Phone, m.CreatedBy, m.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *PostgresMemberships) GetByID(ctx context.Context, id string) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM user_practice_roles WHERE id = $1 AND NOT is_deleted`
	return scanMembership(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresMemberships) GetByUserAndPractice(ctx context.Context, userID, practiceID string) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		  FROM user_practice_roles
		 WHERE user_id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	return scanMembership(r.db.QueryRowContext(ctx, query, userID, practiceID))
}

func (r *PostgresMemberships) ListByUser(ctx context.Context, userID string) ([]*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		  FROM user_practice_roles
		 WHERE user_id = $1 AND NOT is_deleted
		 ORDER BY created_at
	`
	return r.queryMemberships(ctx, query, userID)
}

func (r *PostgresMemberships) ListByPractice(ctx context.Context, practiceID, role, status string) ([]*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		  FROM user_practice_roles
		 WHERE practice_id = $1
		   AND ($2 = '' OR role = $2)
		   AND ($3 = '' OR status = $3)
		   AND NOT is_deleted
		 ORDER BY created_at
	`
	return r.queryMemberships(ctx, query, practiceID, role, status)
}

func (r *PostgresMemberships) queryMemberships(ctx context.Context, query string, args ...any) ([]*Membership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *PostgresMemberships) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	query := `
		UPDATE user_practice_roles
		   SET status = $2, updated_by = $3, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, id, status, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresMemberships) Update(ctx context.Context, m *Membership) error {
	query := `
		UPDATE user_practice_roles
		   SET role = $2, status = $3, email = $4, first_name = $5, last_name = $6,
		       phone = $7, updated_by = $8, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		m.ID, m.Role, m.Status, m.Email, m.FirstName, m.LastName, m.Phone, m.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresMemberships) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `
		UPDATE user_practice_roles
		   SET is_deleted = TRUE, updated_by = $2, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return requireRow(res)
}

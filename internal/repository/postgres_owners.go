package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresOwners struct {
	db *sql.DB
}

func NewPostgresOwners(db *sql.DB) *PostgresOwners {
	return &PostgresOwners{db: db}
}

var _ OwnersRepository = (*PostgresOwners)(nil)

const ownerColumns = `id, email, password_hash,
	COALESCE(first_name,''), COALESCE(last_name,''),
	COALESCE(created_by,''), COALESCE(updated_by,''),
	is_deleted, created_at, updated_at`

func scanOwner(row interface{ Scan(...any) error }) (*Owner, error) {
	var o Owner
	err := row.Scan(
		&o.ID, &o.Email, &o.PasswordHash,
		&o.FirstName, &o.LastName,
		&o.CreatedBy, &o.UpdatedBy,
		&o.IsDeleted, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan owner: %w", err)
	}
	return &o, nil
}

func (r *PostgresOwners) Create(ctx context.Context, o *Owner) error {
	query := `
		INSERT INTO owners (id, email, password_hash, first_name, last_name, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.Email, o.PasswordHash, o.FirstName, o.LastName, o.CreatedBy, o.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}
	return nil
}

func (r *PostgresOwners) GetByID(ctx context.Context, id string) (*Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE id = $1 AND NOT is_deleted`
	return scanOwner(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresOwners) GetByEmail(ctx context.Context, email string) (*Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE email = $1 AND NOT is_deleted`
	return scanOwner(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresOwners) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners WHERE NOT is_deleted`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count owners: %w", err)
	}
	return n, nil
}

func (r *PostgresOwners) List(ctx context.Context) ([]*Owner, error) {
	query := `SELECT ` + ownerColumns + ` FROM owners WHERE NOT is_deleted ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []*Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

func (r *PostgresOwners) Update(ctx context.Context, o *Owner) error {
	query := `
		UPDATE owners
		   SET email = $2, first_name = $3, last_name = $4, updated_by = $5, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, o.ID, o.Email, o.FirstName, o.LastName, o.UpdatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to update owner: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresOwners) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE owners SET password_hash = $2, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update owner password: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresOwners) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `UPDATE owners SET is_deleted = TRUE, updated_by = $2, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete owner: %w", err)
	}
	return requireRow(res)
}

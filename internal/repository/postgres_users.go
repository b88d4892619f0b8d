package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

var _ UsersRepository = (*PostgresUsers)(nil)

const userColumns = `id, email, password_hash,
	COALESCE(first_name,''), COALESCE(last_name,''), COALESCE(phone,''),
	COALESCE(created_by,''), COALESCE(updated_by,''),
	is_deleted, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Phone,
		&u.CreatedBy, &u.UpdatedBy,
		&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUsers) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.CreatedBy, u.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUsers) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND NOT is_deleted`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND NOT is_deleted`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresUsers) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		   SET first_name = $2, last_name = $3, phone = $4, updated_by = $5, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, u.ID, u.FirstName, u.LastName, u.Phone, u.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresUsers) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `UPDATE users SET is_deleted = TRUE, updated_by = $2, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res)
}

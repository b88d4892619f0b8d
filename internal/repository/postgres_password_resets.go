package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresPasswordResets struct {
	db *sql.DB
}

func NewPostgresPasswordResets(db *sql.DB) *PostgresPasswordResets {
	return &PostgresPasswordResets{db: db}
}

var _ PasswordResetsRepository = (*PostgresPasswordResets)(nil)

const passwordResetColumns = `id, user_id, email, otp, otp_type, otp_expiry,
	token, token_expiry, is_used, created_at`

func scanPasswordReset(row interface{ Scan(...any) error }) (*PasswordReset, error) {
	var pr PasswordReset
	err := row.Scan(
		&pr.ID, &pr.UserID, &pr.Email, &pr.OTP, &pr.OTPType, &pr.OTPExpiry,
		&pr.Token, &pr.TokenExpiry, &pr.IsUsed, &pr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan password reset: %w", err)
	}
	return &pr, nil
}

func (r *PostgresPasswordResets) Create(ctx context.Context, pr *PasswordReset) error {
	query := `
		INSERT INTO password_resets (
			id, user_id, email, otp, otp_type, otp_expiry, token, token_expiry
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.db.ExecContext(ctx, query,
		pr.ID, pr.UserID, pr.Email, pr.OTP, pr.OTPType, pr.OTPExpiry, pr.Token, pr.TokenExpiry,
	)
	if err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

func (r *PostgresPasswordResets) GetByToken(ctx context.Context, token string) (*PasswordReset, error) {
	query := `
		SELECT ` + passwordResetColumns + `
		  FROM password_resets
		 WHERE token = $1 AND NOT is_used
	`
	return scanPasswordReset(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresPasswordResets) GetLatestByUser(ctx context.Context, userID string) (*PasswordReset, error) {
	query := `
		SELECT ` + passwordResetColumns + `
		  FROM password_resets
		 WHERE user_id = $1 AND NOT is_used
		 ORDER BY created_at DESC
		 LIMIT 1
	`
	return scanPasswordReset(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresPasswordResets) MarkUsed(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE password_resets SET is_used = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark password reset used: %w", err)
	}
	return nil
}

func (r *PostgresPasswordResets) InvalidateForUser(ctx context.Context, userID string) error {
	query := `UPDATE password_resets SET is_used = TRUE WHERE user_id = $1 AND NOT is_used`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to invalidate password resets: %w", err)
	}
	return nil
}

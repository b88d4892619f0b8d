package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type PostgresAuthSessions struct {
	db *sql.DB
}

func NewPostgresAuthSessions(db *sql.DB) *PostgresAuthSessions {
	return &PostgresAuthSessions{db: db}
}

var _ AuthSessionsRepository = (*PostgresAuthSessions)(nil)

const authSessionColumns = `id, user_id, email, session_role,
	COALESCE(ip_address,''), COALESCE(user_agent,''), COALESCE(device,''),
	expires_at, last_activity_at, is_revoked, created_at`

func scanAuthSession(row interface{ Scan(...any) error }) (*AuthSession, error) {
	var s AuthSession
	var lastActivity sql.NullTime
	err := row.Scan(
		&s.ID, &s.UserID, &s.Email, &s.Role,
		&s.IPAddress, &s.UserAgent, &s.Device,
		&s.ExpiresAt, &lastActivity, &s.IsRevoked, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan auth session: %w", err)
	}
	if lastActivity.Valid {
		s.LastActivityAt = &lastActivity.Time
	}
	return &s, nil
}

func (r *PostgresAuthSessions) Create(ctx context.Context, s *AuthSession) error {
	query := `
		INSERT INTO auth_sessions (
			id, user_id, email, session_role, ip_address, user_agent, device, expires_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Email, s.Role, s.IPAddress, s.UserAgent, s.Device, s.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create auth session: %w", err)
	}
	return nil
}

func (r *PostgresAuthSessions) Get(ctx context.Context, id string) (*AuthSession, error) {
	query := `SELECT ` + authSessionColumns + ` FROM auth_sessions WHERE id = $1`
	return scanAuthSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresAuthSessions) Touch(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE auth_sessions SET last_activity_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch auth session: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresAuthSessions) Revoke(ctx context.Context, id string) error {
	query := `UPDATE auth_sessions SET is_revoked = TRUE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke auth session: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresAuthSessions) RevokeAllForUser(ctx context.Context, userID string) error {
	query := `UPDATE auth_sessions SET is_revoked = TRUE WHERE user_id = $1 AND NOT is_revoked`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

func (r *PostgresAuthSessions) ListByUser(ctx context.Context, userID string) ([]*AuthSession, error) {
	query := `
		SELECT ` + authSessionColumns + `
		  FROM auth_sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list auth sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*AuthSession
	for rows.Next() {
		s, err := scanAuthSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

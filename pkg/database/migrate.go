package database

import (
	"context"
	"fmt"
)

// Migrate applies the application schema. Statements are idempotent so the
// command can be re-run safely.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS owners (
		id            CHAR(36) PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name    VARCHAR(100),
		last_name     VARCHAR(100),
		created_by    CHAR(36),
		updated_by    CHAR(36),
		is_deleted    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS owners_email_idx ON owners (email)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36) PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name    VARCHAR(100),
		last_name     VARCHAR(100),
		phone         VARCHAR(50),
		created_by    CHAR(36),
		updated_by    CHAR(36),
		is_deleted    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS users_email_idx ON users (email)`,

	`CREATE TABLE IF NOT EXISTS practices (
		id            CHAR(36) PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		legal_name    VARCHAR(255),
		tax_id        VARCHAR(50),
		npi_number    VARCHAR(50),
		phone         VARCHAR(50),
		email         VARCHAR(255),
		website       VARCHAR(255),
		address_line1 VARCHAR(255),
		address_line2 VARCHAR(255),
		city          VARCHAR(100),
		state         VARCHAR(100),
		postal_code   VARCHAR(20),
		country       VARCHAR(100),
		created_by    CHAR(36),
		updated_by    CHAR(36),
		is_deleted    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS practice_name_idx ON practices (name)`,
	`CREATE INDEX IF NOT EXISTS practice_email_idx ON practices (email)`,

	`CREATE TABLE IF NOT EXISTS user_practice_roles (
		id          CHAR(36) PRIMARY KEY,
		user_id     CHAR(36) NOT NULL,
		practice_id CHAR(36) NOT NULL,
		role        VARCHAR(20) NOT NULL CHECK (role IN ('ADMIN','SUPERVISOR','THERAPIST')),
		status      VARCHAR(20) NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE','INACTIVE')),
		email       VARCHAR(255) NOT NULL,
		first_name  VARCHAR(100) NOT NULL,
		last_name   VARCHAR(100) NOT NULL,
		phone       VARCHAR(50) NOT NULL,
		created_by  CHAR(36),
		updated_by  CHAR(36),
		is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// At most one live membership per (user, practice). Soft-deleted rows
	// are excluded so a user can be re-added after removal.
	`CREATE UNIQUE INDEX IF NOT EXISTS user_practice_unique
		ON user_practice_roles (user_id, practice_id) WHERE NOT is_deleted`,
	`CREATE INDEX IF NOT EXISTS upr_user_idx ON user_practice_roles (user_id)`,
	`CREATE INDEX IF NOT EXISTS upr_practice_idx ON user_practice_roles (practice_id)`,

	`CREATE TABLE IF NOT EXISTS supervisors (
		id             CHAR(36) PRIMARY KEY,
		user_id        CHAR(36) NOT NULL,
		practice_id    CHAR(36) NOT NULL,
		email          VARCHAR(255) NOT NULL,
		first_name     VARCHAR(100),
		last_name      VARCHAR(100),
		phone          VARCHAR(50),
		license_number VARCHAR(100),
		license_state  VARCHAR(50),
		license_expiry DATE,
		specialty      JSONB,
		is_deleted     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS supervisors_practice_idx ON supervisors (practice_id)`,
	`CREATE INDEX IF NOT EXISTS supervisors_email_idx ON supervisors (email)`,

	`CREATE TABLE IF NOT EXISTS therapists (
		id             CHAR(36) PRIMARY KEY,
		user_id        CHAR(36) NOT NULL,
		practice_id    CHAR(36) NOT NULL,
		supervisor_id  CHAR(36),
		email          VARCHAR(255) NOT NULL,
		first_name     VARCHAR(100),
		last_name      VARCHAR(100),
		phone          VARCHAR(50),
		license_number VARCHAR(100),
		license_state  VARCHAR(50),
		license_expiry DATE,
		specialty      JSONB,
		is_deleted     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS therapist_user_practice_unique
		ON therapists (user_id, practice_id) WHERE NOT is_deleted`,
	`CREATE INDEX IF NOT EXISTS therapists_practice_idx ON therapists (practice_id)`,
	`CREATE INDEX IF NOT EXISTS therapists_supervisor_idx ON therapists (supervisor_id)`,
	`CREATE INDEX IF NOT EXISTS therapists_email_idx ON therapists (email)`,

	`CREATE TABLE IF NOT EXISTS patients (
		id                CHAR(36) PRIMARY KEY,
		practice_id       CHAR(36) NOT NULL,
		therapist_id      CHAR(36),
		first_name        VARCHAR(100),
		last_name         VARCHAR(100),
		email             VARCHAR(255),
		phone             VARCHAR(50),
		gender            VARCHAR(20),
		dob               DATE,
		address           JSONB,
		emergency_contact JSONB,
		created_by        CHAR(36),
		updated_by        CHAR(36),
		is_deleted        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS patients_practice_idx ON patients (practice_id)`,
	`CREATE INDEX IF NOT EXISTS patients_therapist_idx ON patients (therapist_id)`,
	`CREATE INDEX IF NOT EXISTS patients_email_idx ON patients (email)`,

	`CREATE TABLE IF NOT EXISTS patient_sessions (
		id               CHAR(36) PRIMARY KEY,
		practice_id      CHAR(36) NOT NULL,
		patient_id       CHAR(36) NOT NULL,
		therapist_id     CHAR(36) NOT NULL,
		scheduled_start  TIMESTAMPTZ NOT NULL,
		scheduled_end    TIMESTAMPTZ NOT NULL,
		session_type     VARCHAR(20) NOT NULL CHECK (session_type IN ('INITIAL','FOLLOW_UP','CRISIS')),
		subjective       TEXT,
		objective        TEXT,
		assessment       TEXT,
		plan             TEXT,
		additional_notes TEXT,
		ai_summary       TEXT,
		review_status    VARCHAR(20) NOT NULL DEFAULT 'DRAFT' CHECK (review_status IN ('DRAFT','PENDING','APPROVED','REJECTED')),
		review_comment   TEXT,
		created_by       CHAR(36),
		updated_by       CHAR(36),
		is_deleted       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_practice_idx ON patient_sessions (practice_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_therapist_idx ON patient_sessions (therapist_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_patient_idx ON patient_sessions (patient_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_review_idx ON patient_sessions (review_status)`,

	`CREATE TABLE IF NOT EXISTS auth_sessions (
		id               VARCHAR(128) PRIMARY KEY,
		user_id          CHAR(36) NOT NULL,
		email            VARCHAR(255) NOT NULL,
		session_role     VARCHAR(10) NOT NULL CHECK (session_role IN ('OWNER','USER')),
		ip_address       VARCHAR(100),
		user_agent       VARCHAR(500),
		device           VARCHAR(255),
		expires_at       TIMESTAMPTZ NOT NULL,
		last_activity_at TIMESTAMPTZ,
		is_revoked       BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS auth_sessions_user_idx ON auth_sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS auth_sessions_expiry_idx ON auth_sessions (expires_at)`,

	`CREATE TABLE IF NOT EXISTS password_resets (
		id           CHAR(36) PRIMARY KEY,
		user_id      CHAR(36) NOT NULL,
		email        VARCHAR(255) NOT NULL,
		otp          VARCHAR(10) NOT NULL,
		otp_type     VARCHAR(20) NOT NULL CHECK (otp_type IN ('FORGOT_PASSWORD','CHANGE_PASSWORD')),
		otp_expiry   TIMESTAMPTZ NOT NULL,
		token        VARCHAR(255) NOT NULL,
		token_expiry TIMESTAMPTZ NOT NULL,
		is_used      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS reset_user_idx ON password_resets (user_id)`,
	`CREATE INDEX IF NOT EXISTS reset_email_idx ON password_resets (email)`,
	`CREATE INDEX IF NOT EXISTS reset_token_idx ON password_resets (token)`,
}

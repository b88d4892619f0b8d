package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresSessionNotes struct {
	db *sql.DB
}

func NewPostgresSessionNotes(db *sql.DB) *PostgresSessionNotes {
	return &PostgresSessionNotes{db: db}
}

var _ SessionNotesRepository = (*PostgresSessionNotes)(nil)

const sessionNoteColumns = `id, practice_id, patient_id, therapist_id,
	scheduled_start, scheduled_end, session_type,
	COALESCE(subjective,''), COALESCE(objective,''), COALESCE(assessment,''),
	COALESCE(plan,''), COALESCE(additional_notes,''), COALESCE(ai_summary,''),
	review_status, COALESCE(review_comment,''),
	COALESCE(created_by,''), COALESCE(updated_by,''),
	is_deleted, created_at, updated_at`

func scanSessionNote(row interface{ Scan(...any) error }) (*SessionNote, error) {
	var n SessionNote
	err := row.Scan(
		&n.ID, &n.PracticeID, &n.PatientID, &n.TherapistID,
		&n.ScheduledStart, &n.ScheduledEnd, &n.SessionType,
		&n.Subjective, &n.Objective, &n.Assessment,
		&n.Plan, &n.AdditionalNotes, &n.AISummary,
		&n.ReviewStatus, &n.ReviewComment,
		&n.CreatedBy, &n.UpdatedBy,
		&n.IsDeleted, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan session note: %w", err)
	}
	return &n, nil
}

func (r *PostgresSessionNotes) Create(ctx context.Context, n *SessionNote) error {
	query := `
		INSERT INTO patient_sessions (
			id, practice_id, patient_id, therapist_id,
			scheduled_start, scheduled_end, session_type,
			subjective, objective, assessment, plan, additional_notes, ai_summary,
			review_status, created_by, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.PracticeID, n.PatientID, n.TherapistID,
		n.ScheduledStart, n.ScheduledEnd, n.SessionType,
		n.Subjective, n.Objective, n.Assessment, n.Plan, n.AdditionalNotes, n.AISummary,
		n.ReviewStatus, n.CreatedBy, n.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create session note: %w", err)
	}
	return nil
}

func (r *PostgresSessionNotes) GetByID(ctx context.Context, id, practiceID string) (*SessionNote, error) {
	query := `
		SELECT ` + sessionNoteColumns + `
		  FROM patient_sessions
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	return scanSessionNote(r.db.QueryRowContext(ctx, query, id, practiceID))
}

func (r *PostgresSessionNotes) UpdateClinicalFields(ctx context.Context, n *SessionNote) (bool, error) {
	// Conditional on DRAFT so a note already sent for review cannot be
	// edited underneath the reviewer.
	query := `
		UPDATE patient_sessions
		   SET scheduled_start = $3, scheduled_end = $4, session_type = $5,
		       subjective = $6, objective = $7, assessment = $8,
		       plan = $9, additional_notes = $10,
		       updated_by = $11, updated_at = now()
		 WHERE id = $1 AND practice_id = $2
		   AND review_status = 'DRAFT' AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		n.ID, n.PracticeID, n.ScheduledStart, n.ScheduledEnd, n.SessionType,
		n.Subjective, n.Objective, n.Assessment,
		n.Plan, n.AdditionalNotes, n.UpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update session note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresSessionNotes) TransitionReviewStatus(ctx context.Context, id, practiceID, from, to, comment, updatedBy string) (bool, error) {
	// Compare-and-swap: the status predicate in the WHERE clause makes
	// concurrent transitions lose cleanly instead of double-applying.
	query := `
		UPDATE patient_sessions
		   SET review_status = $4, review_comment = $5, updated_by = $6, updated_at = now()
		 WHERE id = $1 AND practice_id = $2
		   AND review_status = $3 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, id, practiceID, from, to, comment, updatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to transition review status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *PostgresSessionNotes) ListByPractice(ctx context.Context, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error) {
	query := `
		SELECT ` + sessionNoteColumns + `
		  FROM patient_sessions
		 WHERE practice_id = $1
		   AND ($2 = '' OR review_status = $2)
		   AND ($3::timestamptz IS NULL OR scheduled_start > $3)
		   AND NOT is_deleted
		 ORDER BY scheduled_start DESC
	`
	return r.querySessionNotes(ctx, query, practiceID, filter.ReviewStatus, nullableTime(filter.StartAfter))
}

func (r *PostgresSessionNotes) ListByTherapist(ctx context.Context, therapistID, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error) {
	query := `
		SELECT ` + sessionNoteColumns + `
		  FROM patient_sessions
		 WHERE therapist_id = $1 AND practice_id = $2
		   AND ($3 = '' OR review_status = $3)
		   AND ($4::timestamptz IS NULL OR scheduled_start > $4)
		   AND NOT is_deleted
		 ORDER BY scheduled_start DESC
	`
	return r.querySessionNotes(ctx, query, therapistID, practiceID, filter.ReviewStatus, nullableTime(filter.StartAfter))
}

func (r *PostgresSessionNotes) ListByPatient(ctx context.Context, patientID, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error) {
	query := `
		SELECT ` + sessionNoteColumns + `
		  FROM patient_sessions
		 WHERE patient_id = $1 AND practice_id = $2
		   AND ($3 = '' OR review_status = $3)
		   AND ($4::timestamptz IS NULL OR scheduled_start > $4)
		   AND NOT is_deleted
		 ORDER BY scheduled_start DESC
	`
	return r.querySessionNotes(ctx, query, patientID, practiceID, filter.ReviewStatus, nullableTime(filter.StartAfter))
}

func (r *PostgresSessionNotes) ListPendingByTherapists(ctx context.Context, practiceID string, therapistIDs []string) ([]*SessionNote, error) {
	if len(therapistIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + sessionNoteColumns + `
		  FROM patient_sessions
		 WHERE practice_id = $1
		   AND therapist_id = ANY($2)
		   AND review_status = 'PENDING'
		   AND NOT is_deleted
		 ORDER BY scheduled_start DESC
	`
	return r.querySessionNotes(ctx, query, practiceID, pq.Array(therapistIDs))
}

func (r *PostgresSessionNotes) querySessionNotes(ctx context.Context, query string, args ...any) ([]*SessionNote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list session notes: %w", err)
	}
	defer rows.Close()

	var notes []*SessionNote
	for rows.Next() {
		n, err := scanSessionNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *PostgresSessionNotes) SoftDelete(ctx context.Context, id, practiceID, deletedBy string) error {
	query := `
		UPDATE patient_sessions
		   SET is_deleted = TRUE, updated_by = $3, updated_at = now()
		 WHERE id = $1 AND practice_id = $2 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query, id, practiceID, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete session note: %w", err)
	}
	return requireRow(res)
}

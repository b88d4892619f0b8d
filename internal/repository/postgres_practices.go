package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresPractices struct {
	db *sql.DB
}

func NewPostgresPractices(db *sql.DB) *PostgresPractices {
	return &PostgresPractices{db: db}
}

var _ PracticesRepository = (*PostgresPractices)(nil)

const practiceColumns = `id, name, COALESCE(legal_name,''),
	COALESCE(tax_id,''), COALESCE(npi_number,''),
	COALESCE(phone,''), COALESCE(email,''), COALESCE(website,''),
	COALESCE(address_line1,''), COALESCE(address_line2,''),
	COALESCE(city,''), COALESCE(state,''), COALESCE(postal_code,''), COALESCE(country,''),
	COALESCE(created_by,''), COALESCE(updated_by,''),
	is_deleted, created_at, updated_at`

func scanPractice(row interface{ Scan(...any) error }) (*Practice, error) {
	var p Practice
	err := row.Scan(
		&p.ID, &p.Name, &p.LegalName,
		&p.TaxID, &p.NPINumber,
		&p.Phone, &p.Email, &p.Website,
		&p.AddressLine1, &p.AddressLine2,
		&p.City, &p.State, &p.PostalCode, &p.Country,
		&p.CreatedBy, &p.UpdatedBy,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan practice: %w", err)
	}
	return &p, nil
}

func (r *PostgresPractices) Create(ctx context.Context, p *Practice) error {
	query := `
		INSERT INTO practices (
			id, name, legal_name, tax_id, npi_number, phone, email, website,
			address_line1, address_line2, city, state, postal_code, country,
			created_by, updated_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.LegalName, p.TaxID, p.NPINumber, p.Phone, p.Email, p.Website,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode, p.Country,
		p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create practice: %w", err)
	}
	return nil
}

func (r *PostgresPractices) GetByID(ctx context.Context, id string) (*Practice, error) {
	query := `SELECT ` + practiceColumns + ` FROM practices WHERE id = $1 AND NOT is_deleted`
	return scanPractice(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresPractices) List(ctx context.Context) ([]*Practice, error) {
	query := `SELECT ` + practiceColumns + ` FROM practices WHERE NOT is_deleted ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list practices: %w", err)
	}
	defer rows.Close()

	var practices []*Practice
	for rows.Next() {
		p, err := scanPractice(rows)
		if err != nil {
			return nil, err
		}
		practices = append(practices, p)
	}
	return practices, rows.Err()
}

func (r *PostgresPractices) Update(ctx context.Context, p *Practice) error {
	query := `
		UPDATE practices
		   SET name = $2, legal_name = $3, tax_id = $4, npi_number = $5,
		       phone = $6, email = $7, website = $8,
		       address_line1 = $9, address_line2 = $10,
		       city = $11, state = $12, postal_code = $13, country = $14,
		       updated_by = $15, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.LegalName, p.TaxID, p.NPINumber,
		p.Phone, p.Email, p.Website,
		p.AddressLine1, p.AddressLine2,
		p.City, p.State, p.PostalCode, p.Country,
		p.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update practice: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresPractices) SoftDelete(ctx context.Context, id, deletedBy string) error {
	query := `UPDATE practices SET is_deleted = TRUE, updated_by = $2, updated_at = now() WHERE id = $1 AND NOT is_deleted`
	res, err := r.db.ExecContext(ctx, query, id, deletedBy)
	if err != nil {
		return fmt.Errorf("failed to delete practice: %w", err)
	}
	return requireRow(res)
}

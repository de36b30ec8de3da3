package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
)

// CompanyStore handles database operations for companies
type CompanyStore struct {
	db *sql.DB
}

// NewCompanyStore creates a new CompanyStore
func NewCompanyStore(db *sql.DB) *CompanyStore {
	return &CompanyStore{db: db}
}

// GetByID retrieves a company by its id
func (s *CompanyStore) GetByID(ctx context.Context, id int) (*model.Company, error) {
	query := `
		SELECT id, name, sector, employee_count, location_city, is_exporter, unvan, created_at
		FROM companies
		WHERE id = $1
	`

	var c model.Company
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Sector,
		&c.EmployeeCount,
		&c.LocationCity,
		&c.IsExporter,
		&c.Unvan,
		&c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company %d: %w", id, err)
	}

	return &c, nil
}

// GetAll retrieves companies newest first, optionally filtered to an exact
// sector match
func (s *CompanyStore) GetAll(ctx context.Context, sector string) ([]model.Company, error) {
	query := `
		SELECT id, name, sector, employee_count, location_city, is_exporter, unvan, created_at
		FROM companies
	`
	var args []interface{}
	if sector != "" {
		query += ` WHERE sector = $1`
		args = append(args, sector)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Sector,
			&c.EmployeeCount,
			&c.LocationCity,
			&c.IsExporter,
			&c.Unvan,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

// Create inserts a company and fills its id and creation timestamp
func (s *CompanyStore) Create(ctx context.Context, c *model.Company) error {
	query := `
		INSERT INTO companies (name, sector, employee_count, location_city, is_exporter, unvan)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name,
		c.Sector,
		c.EmployeeCount,
		c.LocationCity,
		c.IsExporter,
		c.Unvan,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create company %s: %w", c.Name, err)
	}

	return nil
}

// Update rewrites the mutable fields of a company. Returns false when the
// company does not exist.
func (s *CompanyStore) Update(ctx context.Context, c *model.Company) (bool, error) {
	query := `
		UPDATE companies
		SET name = $2, sector = $3, employee_count = $4, location_city = $5,
		    is_exporter = $6, unvan = $7
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.Sector,
		c.EmployeeCount,
		c.LocationCity,
		c.IsExporter,
		c.Unvan,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update company %d: %w", c.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update company %d: %w", c.ID, err)
	}

	return affected > 0, nil
}

// Delete removes a company; its obligations cascade. Returns false when the
// company does not exist.
func (s *CompanyStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete company %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete company %d: %w", id, err)
	}

	return affected > 0, nil
}

// GetOrCreateByName finds a company by name or inserts it. Used by the seed
// command to stay idempotent across runs.
func (s *CompanyStore) GetOrCreateByName(ctx context.Context, c *model.Company) (created bool, err error) {
	query := `
		SELECT id, name, sector, employee_count, location_city, is_exporter, unvan, created_at
		FROM companies
		WHERE name = $1
	`

	var existing model.Company
	err = s.db.QueryRowContext(ctx, query, c.Name).Scan(
		&existing.ID,
		&existing.Name,
		&existing.Sector,
		&existing.EmployeeCount,
		&existing.LocationCity,
		&existing.IsExporter,
		&existing.Unvan,
		&existing.CreatedAt,
	)
	if err == nil {
		*c = existing
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to look up company %s: %w", c.Name, err)
	}

	if err := s.Create(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

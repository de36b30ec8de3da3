package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
)

// ObligationStore handles database operations for obligations
type ObligationStore struct {
	db *sql.DB
}

// NewObligationStore creates a new ObligationStore
func NewObligationStore(db *sql.DB) *ObligationStore {
	return &ObligationStore{db: db}
}

const obligationJoinColumns = `
	o.id, o.company_id, o.regulation_id, o.is_applicable, o.is_compliant,
	o.due_date, o.risk_level, o.created_at, o.updated_at,
	r.id, r.source, r.title, r.publish_date, r.url, r.raw_text, r.summary,
	r.tags, r.sectors, r.impact_type, r.created_at`

// GetForCompany retrieves a company's obligations joined with their
// regulations, optionally restricted to applicable ones
func (s *ObligationStore) GetForCompany(ctx context.Context, companyID int, applicableOnly bool) ([]model.ObligationWithRegulation, error) {
	query := `
		SELECT ` + obligationJoinColumns + `
		FROM obligations o
		INNER JOIN regulations r ON r.id = o.regulation_id
		WHERE o.company_id = $1
	`
	if applicableOnly {
		query += ` AND o.is_applicable`
	}
	query += ` ORDER BY o.id`

	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get obligations for company %d: %w", companyID, err)
	}
	defer rows.Close()

	return scanObligationRows(rows)
}

// GetForCompanies retrieves the obligations of all given companies in one
// bulk query. This is the read path behind batch scoring: the caller groups
// the result by company id instead of querying per company.
func (s *ObligationStore) GetForCompanies(ctx context.Context, companyIDs []int, applicableOnly bool) ([]model.ObligationWithRegulation, error) {
	query := `
		SELECT ` + obligationJoinColumns + `
		FROM obligations o
		INNER JOIN regulations r ON r.id = o.regulation_id
		WHERE o.company_id = ANY($1)
	`
	if applicableOnly {
		query += ` AND o.is_applicable`
	}
	query += ` ORDER BY o.id`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(companyIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get obligations for %d companies: %w", len(companyIDs), err)
	}
	defer rows.Close()

	return scanObligationRows(rows)
}

func scanObligationRows(rows *sql.Rows) ([]model.ObligationWithRegulation, error) {
	var obligations []model.ObligationWithRegulation
	for rows.Next() {
		var ob model.ObligationWithRegulation
		err := rows.Scan(
			&ob.ID,
			&ob.CompanyID,
			&ob.RegulationID,
			&ob.IsApplicable,
			&ob.IsCompliant,
			&ob.DueDate,
			&ob.RiskLevel,
			&ob.CreatedAt,
			&ob.UpdatedAt,
			&ob.Regulation.ID,
			&ob.Regulation.Source,
			&ob.Regulation.Title,
			&ob.Regulation.PublishDate,
			&ob.Regulation.URL,
			&ob.Regulation.RawText,
			&ob.Regulation.Summary,
			pq.Array(&ob.Regulation.Tags),
			pq.Array(&ob.Regulation.Sectors),
			&ob.Regulation.ImpactType,
			&ob.Regulation.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan obligation: %w", err)
		}
		obligations = append(obligations, ob)
	}

	return obligations, rows.Err()
}

// GetByID retrieves an obligation by its id
func (s *ObligationStore) GetByID(ctx context.Context, id int) (*model.Obligation, error) {
	query := `
		SELECT id, company_id, regulation_id, is_applicable, is_compliant,
		       due_date, risk_level, created_at, updated_at
		FROM obligations
		WHERE id = $1
	`

	var ob model.Obligation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ob.ID,
		&ob.CompanyID,
		&ob.RegulationID,
		&ob.IsApplicable,
		&ob.IsCompliant,
		&ob.DueDate,
		&ob.RiskLevel,
		&ob.CreatedAt,
		&ob.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get obligation %d: %w", id, err)
	}

	return &ob, nil
}

// Create inserts an obligation and fills its id and timestamps
func (s *ObligationStore) Create(ctx context.Context, ob *model.Obligation) error {
	query := `
		INSERT INTO obligations (company_id, regulation_id, is_applicable, is_compliant,
		                         due_date, risk_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		ob.CompanyID,
		ob.RegulationID,
		ob.IsApplicable,
		ob.IsCompliant,
		ob.DueDate,
		ob.RiskLevel,
	).Scan(&ob.ID, &ob.CreatedAt, &ob.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create obligation for company %d: %w", ob.CompanyID, err)
	}

	return nil
}

// SetCompliant updates the compliance flag, refreshing the update timestamp,
// and returns the updated obligation. Returns nil when the obligation does
// not exist.
func (s *ObligationStore) SetCompliant(ctx context.Context, id int, compliant bool) (*model.Obligation, error) {
	query := `
		UPDATE obligations
		SET is_compliant = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, company_id, regulation_id, is_applicable, is_compliant,
		          due_date, risk_level, created_at, updated_at
	`

	var ob model.Obligation
	err := s.db.QueryRowContext(ctx, query, id, compliant).Scan(
		&ob.ID,
		&ob.CompanyID,
		&ob.RegulationID,
		&ob.IsApplicable,
		&ob.IsCompliant,
		&ob.DueDate,
		&ob.RiskLevel,
		&ob.CreatedAt,
		&ob.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set compliance for obligation %d: %w", id, err)
	}

	return &ob, nil
}

// Delete removes an obligation. Returns false when it does not exist.
func (s *ObligationStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM obligations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete obligation %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete obligation %d: %w", id, err)
	}

	return affected > 0, nil
}

// GetOrCreate finds the obligation linking a company to a regulation or
// inserts it. Used by the seed command to stay idempotent across runs.
func (s *ObligationStore) GetOrCreate(ctx context.Context, ob *model.Obligation) (created bool, err error) {
	query := `
		SELECT id, company_id, regulation_id, is_applicable, is_compliant,
		       due_date, risk_level, created_at, updated_at
		FROM obligations
		WHERE company_id = $1 AND regulation_id = $2
	`

	var existing model.Obligation
	err = s.db.QueryRowContext(ctx, query, ob.CompanyID, ob.RegulationID).Scan(
		&existing.ID,
		&existing.CompanyID,
		&existing.RegulationID,
		&existing.IsApplicable,
		&existing.IsCompliant,
		&existing.DueDate,
		&existing.RiskLevel,
		&existing.CreatedAt,
		&existing.UpdatedAt,
	)
	if err == nil {
		*ob = existing
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to look up obligation: %w", err)
	}

	if err := s.Create(ctx, ob); err != nil {
		return false, err
	}
	return true, nil
}

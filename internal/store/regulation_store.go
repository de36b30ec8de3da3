package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/cemreeren625-ui/projeyeni/internal/model"
)

// RegulationStore handles database operations for regulations
type RegulationStore struct {
	db *sql.DB
}

// NewRegulationStore creates a new RegulationStore
func NewRegulationStore(db *sql.DB) *RegulationStore {
	return &RegulationStore{db: db}
}

// GetByID retrieves a regulation by its id
func (s *RegulationStore) GetByID(ctx context.Context, id int) (*model.Regulation, error) {
	query := `
		SELECT id, source, title, publish_date, url, raw_text, summary,
		       tags, sectors, impact_type, created_at
		FROM regulations
		WHERE id = $1
	`

	var r model.Regulation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID,
		&r.Source,
		&r.Title,
		&r.PublishDate,
		&r.URL,
		&r.RawText,
		&r.Summary,
		pq.Array(&r.Tags),
		pq.Array(&r.Sectors),
		&r.ImpactType,
		&r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get regulation %d: %w", id, err)
	}

	return &r, nil
}

// GetAll retrieves all regulations, most recently published first
func (s *RegulationStore) GetAll(ctx context.Context) ([]model.Regulation, error) {
	query := `
		SELECT id, source, title, publish_date, url, raw_text, summary,
		       tags, sectors, impact_type, created_at
		FROM regulations
		ORDER BY publish_date DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get regulations: %w", err)
	}
	defer rows.Close()

	var regulations []model.Regulation
	for rows.Next() {
		var r model.Regulation
		err := rows.Scan(
			&r.ID,
			&r.Source,
			&r.Title,
			&r.PublishDate,
			&r.URL,
			&r.RawText,
			&r.Summary,
			pq.Array(&r.Tags),
			pq.Array(&r.Sectors),
			&r.ImpactType,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan regulation: %w", err)
		}
		regulations = append(regulations, r)
	}

	return regulations, rows.Err()
}

// Create inserts a regulation and fills its id and creation timestamp.
// Derived fields must already be populated by the classifier; the store
// never runs classification itself.
func (s *RegulationStore) Create(ctx context.Context, r *model.Regulation) error {
	query := `
		INSERT INTO regulations (source, title, publish_date, url, raw_text, summary,
		                         tags, sectors, impact_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.Source,
		r.Title,
		r.PublishDate,
		r.URL,
		r.RawText,
		r.Summary,
		pq.Array(r.Tags),
		pq.Array(r.Sectors),
		r.ImpactType,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create regulation %s: %w", r.Title, err)
	}

	return nil
}

// Update rewrites the mutable fields of a regulation. Returns false when the
// regulation does not exist.
func (s *RegulationStore) Update(ctx context.Context, r *model.Regulation) (bool, error) {
	query := `
		UPDATE regulations
		SET source = $2, title = $3, publish_date = $4, url = $5, raw_text = $6,
		    summary = $7, tags = $8, sectors = $9, impact_type = $10
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Source,
		r.Title,
		r.PublishDate,
		r.URL,
		r.RawText,
		r.Summary,
		pq.Array(r.Tags),
		pq.Array(r.Sectors),
		r.ImpactType,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update regulation %d: %w", r.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update regulation %d: %w", r.ID, err)
	}

	return affected > 0, nil
}

// Delete removes a regulation; its obligations cascade. Returns false when
// the regulation does not exist.
func (s *RegulationStore) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM regulations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete regulation %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete regulation %d: %w", id, err)
	}

	return affected > 0, nil
}

// GetOrCreate finds a regulation by source, title and publish date or inserts
// it, so repeated ingestion runs do not produce duplicates
func (s *RegulationStore) GetOrCreate(ctx context.Context, r *model.Regulation) (created bool, err error) {
	query := `
		SELECT id, source, title, publish_date, url, raw_text, summary,
		       tags, sectors, impact_type, created_at
		FROM regulations
		WHERE source = $1 AND title = $2 AND publish_date = $3
	`

	var existing model.Regulation
	err = s.db.QueryRowContext(ctx, query, r.Source, r.Title, r.PublishDate).Scan(
		&existing.ID,
		&existing.Source,
		&existing.Title,
		&existing.PublishDate,
		&existing.URL,
		&existing.RawText,
		&existing.Summary,
		pq.Array(&existing.Tags),
		pq.Array(&existing.Sectors),
		&existing.ImpactType,
		&existing.CreatedAt,
	)
	if err == nil {
		*r = existing
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to look up regulation %s: %w", r.Title, err)
	}

	if err := s.Create(ctx, r); err != nil {
		return false, err
	}
	return true, nil
}

// CountPublishedSince returns how many regulations were published on or
// after the given date
func (s *RegulationStore) CountPublishedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM regulations WHERE publish_date >= $1`, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count regulations: %w", err)
	}
	return count, nil
}

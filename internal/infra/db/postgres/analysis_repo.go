package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts one analysis record with the category lists as jsonb.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO contract_analyses
  (id, image_url, extracted_text, hidden_risks, money_traps, auto_renew_traps, dangerous_clauses, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
	hidden, err := listColumn(a.HiddenRisks)
	if err != nil {
		return err
	}
	money, err := listColumn(a.MoneyTraps)
	if err != nil {
		return err
	}
	autoRenew, err := listColumn(a.AutoRenewTraps)
	if err != nil {
		return err
	}
	dangerous, err := listColumn(a.DangerousClauses)
	if err != nil {
		return err
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, q,
		a.ID, a.ImageURL, a.ExtractedText,
		hidden, money, autoRenew, dangerous,
		createdAt,
	)
	return err
}

// Get fetches one analysis by ID.
func (r *AnalysisRepository) Get(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	const q = `
SELECT id, image_url, extracted_text, hidden_risks, money_traps, auto_renew_traps, dangerous_clauses, created_at
FROM contract_analyses
WHERE id=$1 LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id)

	var a domain.Analysis
	var hidden, money, autoRenew, dangerous []byte
	if err := row.Scan(
		&a.ID, &a.ImageURL, &a.ExtractedText,
		&hidden, &money, &autoRenew, &dangerous,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{hidden, &a.HiddenRisks},
		{money, &a.MoneyTraps},
		{autoRenew, &a.AutoRenewTraps},
		{dangerous, &a.DangerousClauses},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, err
		}
	}
	a.EnsureLists()
	return &a, nil
}

// listColumn marshals a category list for a jsonb column; nil slices
// become [].
func listColumn(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	s := string(b)
	if s == "null" {
		s = "[]"
	}
	return s, nil
}

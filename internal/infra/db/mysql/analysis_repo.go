package mysql

import (
	"context"
	"database/sql"
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

// Save inserts one analysis record. Records are immutable once
// written; there is no update path.
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO contract_analyses
  (id, image_url, extracted_text, hidden_risks, money_traps, auto_renew_traps, dangerous_clauses, created_at)
VALUES (?,?,?,?,?,?,?,?);
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
WHERE id=? LIMIT 1;
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

	if err := scanList(hidden, &a.HiddenRisks); err != nil {
		return nil, err
	}
	if err := scanList(money, &a.MoneyTraps); err != nil {
		return nil, err
	}
	if err := scanList(autoRenew, &a.AutoRenewTraps); err != nil {
		return nil, err
	}
	if err := scanList(dangerous, &a.DangerousClauses); err != nil {
		return nil, err
	}
	a.EnsureLists()
	return &a, nil
}

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
)

func TestAnalysisRepositorySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &domain.Analysis{
		ID:            "7b0c0b9e-8a3e-4f6e-9a1a-0d3f3a2b1c00",
		ImageURL:      "https://storage.example.com/contract-analyses/1-lease.png",
		ExtractedText: "Renews automatically.",
		HiddenRisks: []domain.HiddenRisk{
			{Title: "Liability cap", Description: "Caps damages", Severity: domain.SeverityMedium},
		},
		CreatedAt: created,
	}

	mock.ExpectExec("INSERT INTO contract_analyses").
		WithArgs(
			a.ID,
			a.ImageURL,
			a.ExtractedText,
			`[{"title":"Liability cap","description":"Caps damages","severity":"medium"}]`,
			"[]", // money_traps: nil slice stored as empty list
			"[]",
			"[]",
			created,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestAnalysisRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "image_url", "extracted_text",
		"hidden_risks", "money_traps", "auto_renew_traps", "dangerous_clauses",
		"created_at",
	}).AddRow(
		"7b0c0b9e-8a3e-4f6e-9a1a-0d3f3a2b1c00",
		"https://storage.example.com/x",
		"text",
		`[]`,
		`[{"title":"Setup fee","description":"d","amount":"$49"}]`,
		nil,
		`[]`,
		created,
	)
	mock.ExpectQuery("SELECT (.+) FROM contract_analyses").
		WithArgs(domain.ID("7b0c0b9e-8a3e-4f6e-9a1a-0d3f3a2b1c00")).
		WillReturnRows(rows)

	a, err := repo.Get(context.Background(), "7b0c0b9e-8a3e-4f6e-9a1a-0d3f3a2b1c00")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(a.MoneyTraps) != 1 || a.MoneyTraps[0].Amount != "$49" {
		t.Errorf("money traps not decoded: %+v", a.MoneyTraps)
	}
	// NULL column comes back as an empty, non-nil list
	if a.AutoRenewTraps == nil {
		t.Error("autoRenewTraps must be non-nil")
	}
	if !a.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", a.CreatedAt, created)
	}
}

func TestAnalysisRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAnalysisRepository(db)
	mock.ExpectQuery("SELECT (.+) FROM contract_analyses").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

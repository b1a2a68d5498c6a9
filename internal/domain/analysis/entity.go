package analysis

import (
	"fmt"
	"strings"
	"time"
)

// ID tipe untuk Analysis
type ID string

// Severity enum, assigned by the classifier model
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// HiddenRisk: unexpected terms, liability limitations, fine print issues
type HiddenRisk struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// MoneyTrap: hidden fees, charges, or pricing terms. Amount is a
// free-text currency expression, intentionally unparsed.
type MoneyTrap struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount,omitempty"`
}

// AutoRenewTrap: automatic renewal clauses and subscription traps
type AutoRenewTrap struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	CancellationDifficulty string `json:"cancellationDifficulty"`
}

// DangerousClause: liability waivers, mandatory arbitration, and other
// predatory legal terms
type DangerousClause struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	LegalImpact string `json:"legalImpact"`
}

// RiskReport is the classifier's structured output before it is
// attached to an Analysis.
type RiskReport struct {
	HiddenRisks      []HiddenRisk      `json:"hiddenRisks"`
	MoneyTraps       []MoneyTrap       `json:"moneyTraps"`
	AutoRenewTraps   []AutoRenewTrap   `json:"autoRenewTraps"`
	DangerousClauses []DangerousClause `json:"dangerousClauses"`
}

// Aggregate Root: Analysis. Created once, read by ID, never mutated.
type Analysis struct {
	ID               ID                `json:"id"`
	ImageURL         string            `json:"imageUrl"`
	ExtractedText    string            `json:"extractedText"`
	HiddenRisks      []HiddenRisk      `json:"hiddenRisks"`
	MoneyTraps       []MoneyTrap       `json:"moneyTraps"`
	AutoRenewTraps   []AutoRenewTrap   `json:"autoRenewTraps"`
	DangerousClauses []DangerousClause `json:"dangerousClauses"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// Normalize enforces the report invariants before persistence: the
// four lists are never nil, every entry carries a title, and severity
// stays inside the enum. The classifier output is an external
// guarantee this system cannot fully verify, so it is checked here.
func (r *RiskReport) Normalize() error {
	if r.HiddenRisks == nil {
		r.HiddenRisks = []HiddenRisk{}
	}
	if r.MoneyTraps == nil {
		r.MoneyTraps = []MoneyTrap{}
	}
	if r.AutoRenewTraps == nil {
		r.AutoRenewTraps = []AutoRenewTrap{}
	}
	if r.DangerousClauses == nil {
		r.DangerousClauses = []DangerousClause{}
	}

	for i := range r.HiddenRisks {
		h := &r.HiddenRisks[i]
		if strings.TrimSpace(h.Title) == "" {
			return fmt.Errorf("hidden risk %d: missing title", i)
		}
		h.Severity = Severity(strings.ToLower(string(h.Severity)))
		switch h.Severity {
		case SeverityLow, SeverityMedium, SeverityHigh:
		default:
			return fmt.Errorf("hidden risk %d: invalid severity %q", i, h.Severity)
		}
	}
	for i, m := range r.MoneyTraps {
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("money trap %d: missing title", i)
		}
	}
	for i, a := range r.AutoRenewTraps {
		if strings.TrimSpace(a.Title) == "" {
			return fmt.Errorf("auto-renew trap %d: missing title", i)
		}
	}
	for i, d := range r.DangerousClauses {
		if strings.TrimSpace(d.Title) == "" {
			return fmt.Errorf("dangerous clause %d: missing title", i)
		}
	}
	return nil
}

// EnsureLists guarantees the category lists marshal as [] rather than
// null, no matter how the record was loaded.
func (a *Analysis) EnsureLists() {
	if a.HiddenRisks == nil {
		a.HiddenRisks = []HiddenRisk{}
	}
	if a.MoneyTraps == nil {
		a.MoneyTraps = []MoneyTrap{}
	}
	if a.AutoRenewTraps == nil {
		a.AutoRenewTraps = []AutoRenewTrap{}
	}
	if a.DangerousClauses == nil {
		a.DangerousClauses = []DangerousClause{}
	}
}

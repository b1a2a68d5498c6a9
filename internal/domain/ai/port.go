package ai

import (
	"context"

	"github.com/clausecheck/clausecheck/internal/domain/analysis"
)

// Extractor port: vision-capable model that recovers text from an
// image. The output is trusted verbatim; no confidence threshold.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Classifier port: schema-constrained model that sorts contract text
// into the four risk categories.
type Classifier interface {
	ClassifyRisks(ctx context.Context, contractText string) (analysis.RiskReport, error)
}

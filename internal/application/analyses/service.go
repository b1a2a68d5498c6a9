package analyses

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/clausecheck/clausecheck/internal/application"
	domai "github.com/clausecheck/clausecheck/internal/domain/ai"
	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
	"github.com/clausecheck/clausecheck/internal/domain/media"
)

// Pipeline stages, used for logging and error context only. Stage
// names never leak into HTTP responses.
const (
	StageExtract  = "extract"
	StageUpload   = "upload"
	StageClassify = "classify"
	StagePersist  = "persist"
)

// Service implements the analyze pipeline use-cases.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Repo       domain.Repository
	Extractor  domai.Extractor
	Classifier domai.Classifier
	Images     domain.ImageStore
	Clock      application.Clock
	Logger     *slog.Logger
}

// AnalyzeCommand carries one ingested upload through the pipeline.
type AnalyzeCommand struct {
	Filename string
	Data     []byte
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Analyze runs the pipeline: extract text from the image, upload the
// original bytes to object storage, classify the text into the four
// risk categories, then persist the assembled result. Every stage runs
// once, with no retry; failure at any stage aborts the run and nothing
// is written to the store.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.Analysis, error) {
	mimeType := media.TypeFromFilename(cmd.Filename)
	log := s.logger().With("filename", cmd.Filename, "mime_type", mimeType)

	text, err := s.Extractor.ExtractText(ctx, cmd.Data, mimeType)
	if err != nil {
		log.Error("pipeline stage failed", "stage", StageExtract, "error", err)
		return nil, fmt.Errorf("%s: %w", StageExtract, err)
	}
	log.Info("text extracted", "text_length", len(text))

	// Key is namespaced by upload time to avoid collisions between
	// identical filenames.
	key := fmt.Sprintf("contract-analyses/%d-%s", s.Clock.Now().UnixMilli(), cmd.Filename)
	storedKey, err := s.Images.Upload(ctx, key, cmd.Data, mimeType)
	if err != nil {
		log.Error("pipeline stage failed", "stage", StageUpload, "error", err)
		return nil, fmt.Errorf("%s: %w", StageUpload, err)
	}
	imageURL, err := s.Images.SignedURL(ctx, storedKey)
	if err != nil {
		log.Error("pipeline stage failed", "stage", StageUpload, "error", err)
		return nil, fmt.Errorf("%s: %w", StageUpload, err)
	}
	log.Info("image uploaded", "key", storedKey)

	// Classification runs even when the extracted text is empty; the
	// model answers against an empty contract block.
	report, err := s.Classifier.ClassifyRisks(ctx, text)
	if err != nil {
		log.Error("pipeline stage failed", "stage", StageClassify, "error", err)
		return nil, fmt.Errorf("%s: %w", StageClassify, err)
	}
	if err := report.Normalize(); err != nil {
		log.Error("pipeline stage failed", "stage", StageClassify, "error", err)
		return nil, fmt.Errorf("%s: invalid classifier output: %w", StageClassify, err)
	}
	log.Info("contract classified",
		"hidden_risks", len(report.HiddenRisks),
		"money_traps", len(report.MoneyTraps),
		"auto_renew_traps", len(report.AutoRenewTraps),
		"dangerous_clauses", len(report.DangerousClauses),
	)

	a := &domain.Analysis{
		ID:               domain.ID(uuid.New().String()),
		ImageURL:         imageURL,
		ExtractedText:    text,
		HiddenRisks:      report.HiddenRisks,
		MoneyTraps:       report.MoneyTraps,
		AutoRenewTraps:   report.AutoRenewTraps,
		DangerousClauses: report.DangerousClauses,
		CreatedAt:        s.Clock.Now().UTC(),
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		log.Error("pipeline stage failed", "stage", StagePersist, "error", err)
		return nil, fmt.Errorf("%s: %w", StagePersist, err)
	}
	log.Info("analysis saved", "analysis_id", a.ID)

	return a, nil
}

// Get fetches one analysis by ID.
func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.EnsureLists()
	return a, nil
}

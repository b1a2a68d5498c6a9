package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
	"github.com/clausecheck/clausecheck/internal/infra/ai/prompt"
)

// Client implements the Extractor and Classifier ports over the Gemini
// API. The extraction model replies with free text; the classification
// model is pinned to a JSON response MIME type.
type Client struct {
	extractModel  *genai.GenerativeModel
	classifyModel *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	extract := cli.GenerativeModel(model)

	classify := cli.GenerativeModel(model)
	classify.GenerationConfig.ResponseMIMEType = "application/json"

	return &Client{extractModel: extract, classifyModel: classify}, nil
}

func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	resp, err := c.extractModel.GenerateContent(ctx,
		genai.Blob{MIMEType: mimeType, Data: image},
		genai.Text(prompt.ExtractionInstruction),
	)
	if err != nil {
		return "", fmt.Errorf("gemini extraction failed: %w", err)
	}
	return textFromResponse(resp), nil
}

func (c *Client) ClassifyRisks(ctx context.Context, contractText string) (domain.RiskReport, error) {
	resp, err := c.classifyModel.GenerateContent(ctx,
		genai.Text(prompt.ClassificationPrompt(contractText)),
	)
	if err != nil {
		return domain.RiskReport{}, fmt.Errorf("gemini classification failed: %w", err)
	}

	raw := cleanJSON(textFromResponse(resp))
	var report domain.RiskReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return domain.RiskReport{}, fmt.Errorf("failed to decode classification response: %w", err)
	}
	return report, nil
}

func textFromResponse(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return sb.String()
}

// cleanJSON strips markdown code fences and surrounding chatter the
// model sometimes wraps around its JSON payload.
func cleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}
	return cleaned
}

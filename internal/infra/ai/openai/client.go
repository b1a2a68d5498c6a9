package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/clausecheck/clausecheck/internal/domain/ai"
	domain "github.com/clausecheck/clausecheck/internal/domain/analysis"
	"github.com/clausecheck/clausecheck/internal/infra/ai/prompt"
)

const maxTokens = 4096

// Client implements both AI ports (Extractor and Classifier) over the
// OpenAI chat completions API.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) model() string {
	if c.Model != "" {
		return c.Model
	}
	return "gpt-4o-mini"
}

// ExtractText sends the raw image bytes as a base64 data URL together
// with the fixed extraction instruction and returns the model's text
// reply verbatim.
func (c *Client) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model: c.model(),
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt.ExtractionInstruction,
					},
				},
			},
		},
	}
	setMaxTokens(&req)

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("extraction returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ClassifyRisks asks the model for a response conforming to the
// four-category schema and decodes it.
func (c *Client) ClassifyRisks(ctx context.Context, contractText string) (domain.RiskReport, error) {
	schema := prompt.ResultSchema()
	req := openai.ChatCompletionRequest{
		Model: c.model(),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        prompt.SchemaName,
				Description: prompt.SchemaDescription,
				Schema:      &schema,
				Strict:      true,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.ClassificationPrompt(contractText)},
		},
	}
	setMaxTokens(&req)

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.RiskReport{}, mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return domain.RiskReport{}, fmt.Errorf("classification returned no choices")
	}

	var report domain.RiskReport
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &report); err != nil {
		return domain.RiskReport{}, fmt.Errorf("failed to decode classification response: %w", err)
	}
	return report, nil
}

// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
func setMaxTokens(req *openai.ChatCompletionRequest) {
	m := req.Model
	if strings.HasPrefix(m, "o1") || strings.HasPrefix(m, "o3") || strings.HasPrefix(m, "o4") || strings.HasPrefix(m, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
}

func mapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return domai.ErrQuotaExceeded
	}
	return err
}

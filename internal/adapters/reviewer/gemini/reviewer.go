package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/mail-sentinel/internal/adapters/reviewer"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiReviewer is an implementation of the Reviewer interface using
// Google Gemini
type GeminiReviewer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiReviewer creates a new Gemini reviewer
func NewGeminiReviewer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiReviewer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiReviewer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (r *GeminiReviewer) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Review asks the model whether a near-threshold automatic reply should be
// escalated to a human instead.
func (r *GeminiReviewer) Review(ctx context.Context, email *core.Email, bundle core.SignalBundle) (*core.ReviewVerdict, error) {
	body := r.textProcessor.ProcessText(email.Body, r.maxBodySize)
	prompt := fmt.Sprintf(reviewer.PromptFormat,
		reviewer.SummarizeBundle(bundle), email.From, email.Subject, body)

	resp, err := r.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	var review reviewer.ReviewResponse
	if err := json.Unmarshal([]byte(responseText), &review); err != nil {
		jsonStr, ok := reviewer.ExtractJSON(responseText)
		if !ok {
			return nil, fmt.Errorf("failed to extract JSON from reviewer response: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &review); err != nil {
			return nil, fmt.Errorf("failed to parse reviewer response as JSON: %w", err)
		}
	}

	r.logger.Debug("Gemini review complete",
		zap.Bool("escalate", review.Escalate),
		zap.Float64("confidence", review.Confidence))

	return &core.ReviewVerdict{
		Escalate:   review.Escalate,
		Confidence: review.Confidence,
		Reason:     review.Reason,
	}, nil
}

package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mikey/mail-sentinel/internal/adapters/reviewer"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIReviewer is an implementation of the Reviewer interface using OpenAI
type OpenAIReviewer struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIReviewer creates a new OpenAI reviewer
func NewOpenAIReviewer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIReviewer {
	return &OpenAIReviewer{
		client:        openai.NewClient(apiKey),
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Review asks the model whether a near-threshold automatic reply should be
// escalated to a human instead.
func (r *OpenAIReviewer) Review(ctx context.Context, email *core.Email, bundle core.SignalBundle) (*core.ReviewVerdict, error) {
	body := r.textProcessor.ProcessText(email.Body, r.maxBodySize)
	prompt := fmt.Sprintf(reviewer.PromptFormat,
		reviewer.SummarizeBundle(bundle), email.From, email.Subject, body)

	req := openai.ChatCompletionRequest{
		Model: r.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an escalation reviewer. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
		TopP:        r.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: "json"}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := resp.Choices[0].Message.Content

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

	r.logger.Debug("OpenAI review complete",
		zap.Bool("escalate", review.Escalate),
		zap.Float64("confidence", review.Confidence))

	return &core.ReviewVerdict{
		Escalate:   review.Escalate,
		Confidence: review.Confidence,
		Reason:     review.Reason,
	}, nil
}

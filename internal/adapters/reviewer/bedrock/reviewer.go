package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/mail-sentinel/internal/adapters/reviewer"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/utils"
	"go.uber.org/zap"
)

// BedrockReviewer is an implementation of the Reviewer interface using
// Amazon Bedrock
type BedrockReviewer struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewBedrockReviewer creates a new Bedrock reviewer
func NewBedrockReviewer(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockReviewer {
	return &BedrockReviewer{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (r *BedrockReviewer) isAnthropicModel() bool {
	return strings.Contains(r.modelID, "anthropic.")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (r *BedrockReviewer) isAmazonTitanModel() bool {
	return strings.Contains(r.modelID, "amazon.titan")
}

// Review asks the model whether a near-threshold automatic reply should be
// escalated to a human instead.
func (r *BedrockReviewer) Review(ctx context.Context, email *core.Email, bundle core.SignalBundle) (*core.ReviewVerdict, error) {
	body := r.textProcessor.ProcessText(email.Body, r.maxBodySize)
	prompt := fmt.Sprintf(reviewer.PromptFormat,
		reviewer.SummarizeBundle(bundle), email.From, email.Subject, body)

	// Build the request payload based on the model family
	var payload []byte
	var err error

	if r.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": r.maxTokens,
			"temperature":          r.temperature,
			"top_p":                r.topP,
		})
	} else if r.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": r.maxTokens,
				"temperature":   r.temperature,
				"topP":          r.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  r.maxTokens,
			"temperature": r.temperature,
			"top_p":       r.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	output, err := r.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(r.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := r.extractResponseText(output.Body)
	if err != nil {
		return nil, err
	}

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

	r.logger.Debug("Bedrock review complete",
		zap.Bool("escalate", review.Escalate),
		zap.Float64("confidence", review.Confidence))

	return &core.ReviewVerdict{
		Escalate:   review.Escalate,
		Confidence: review.Confidence,
		Reason:     review.Reason,
	}, nil
}

// extractResponseText pulls the generated text out of the model-specific
// response envelope.
func (r *BedrockReviewer) extractResponseText(body []byte) (string, error) {
	if r.isAnthropicModel() {
		var response struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return "", fmt.Errorf("failed to parse Anthropic response: %w", err)
		}
		return response.Completion, nil
	}

	if r.isAmazonTitanModel() {
		var response struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			return "", fmt.Errorf("failed to parse Titan response: %w", err)
		}
		if len(response.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return response.Results[0].OutputText, nil
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse model response: %w", err)
	}
	return response.Text, nil
}

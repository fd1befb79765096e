package config

import (
	"fmt"
	"strings"

	"github.com/mikey/mail-sentinel/internal/core"
)

// ReviewerConfig represents the configuration for the reviewer capability
type ReviewerConfig struct {
	Provider string
	Margin   float64
}

// OpenAIConfig represents the configuration for the OpenAI reviewer
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for the Amazon Bedrock reviewer
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for the Google Gemini reviewer
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetReviewer returns the reviewer configuration
func (c *Config) GetReviewer() ReviewerConfig {
	return ReviewerConfig{
		Provider: c.GetString("reviewer.provider"),
		Margin:   c.GetFloat64("reviewer.margin"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetRuleSet assembles the policy rule set from configuration and validates
// it. Loading fails on any missing or malformed entry: the engine must not
// run with partial configuration.
func (c *Config) GetRuleSet() (core.RuleSet, error) {
	rules := core.RuleSet{
		IntentWeights:        make(map[core.Intent]map[string]float64, len(core.Intents)),
		Thresholds:           make(map[core.Intent]float64, len(core.Intents)),
		SubjectMultiplier:    c.GetFloat64("policy.subject_multiplier"),
		HardTriggers:         make(map[core.Intent][]string),
		FreeDomains:          c.GetStringSlice("policy.free_domains"),
		UrgencyTerms:         c.GetStringSlice("policy.urgency_terms"),
		FinancialChangeTerms: c.GetStringSlice("policy.financial_change_terms"),
		LegalTerms:           c.GetStringSlice("policy.legal_terms"),
		AcquisitionTerms:     c.GetStringSlice("policy.acquisition_terms"),
		RoleTerms:            c.GetStringSlice("policy.role_terms"),
	}

	rawWeights := c.v.GetStringMap("policy.intent_weights")
	for key, value := range rawWeights {
		intent, err := intentFromKey(key)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("policy.intent_weights: %w", err)
		}
		table, ok := value.(map[string]interface{})
		if !ok {
			return core.RuleSet{}, fmt.Errorf("policy.intent_weights.%s is not a pattern table", key)
		}
		weights := make(map[string]float64, len(table))
		for pattern, raw := range table {
			weight, err := toFloat(raw)
			if err != nil {
				return core.RuleSet{}, fmt.Errorf("policy.intent_weights.%s.%s: %w", key, pattern, err)
			}
			weights[pattern] = weight
		}
		rules.IntentWeights[intent] = weights
	}

	rawThresholds := c.v.GetStringMap("policy.thresholds")
	for key, raw := range rawThresholds {
		intent, err := intentFromKey(key)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("policy.thresholds: %w", err)
		}
		threshold, err := toFloat(raw)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("policy.thresholds.%s: %w", key, err)
		}
		rules.Thresholds[intent] = threshold
	}

	rawTriggers := c.v.GetStringMap("policy.hard_triggers")
	for key, raw := range rawTriggers {
		intent, err := intentFromKey(key)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("policy.hard_triggers: %w", err)
		}
		flags, err := toStringSlice(raw)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("policy.hard_triggers.%s: %w", key, err)
		}
		rules.HardTriggers[intent] = flags
	}

	if err := rules.Validate(); err != nil {
		return core.RuleSet{}, fmt.Errorf("invalid policy configuration: %w", err)
	}

	return rules, nil
}

// intentFromKey maps a lowercase configuration key onto the closed intent enum
func intentFromKey(key string) (core.Intent, error) {
	for _, intent := range core.Intents {
		if strings.EqualFold(key, string(intent)) {
			return intent, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", key)
}

func toFloat(raw interface{}) (float64, error) {
	switch value := raw.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

func toStringSlice(raw interface{}) ([]string, error) {
	switch value := raw.(type) {
	case []string:
		return value, nil
	case []interface{}:
		result := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", item)
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("expected a string list, got %T", raw)
	}
}

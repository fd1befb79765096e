package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-sentinel/internal/core"
)

func newDefaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaultRuleSetIsValid(t *testing.T) {
	cfg := newDefaultConfig()

	rules, err := cfg.GetRuleSet()
	require.NoError(t, err)

	for _, intent := range core.Intents {
		assert.NotEmpty(t, rules.IntentWeights[intent], "weights for %s", intent)
		assert.Greater(t, rules.Thresholds[intent], 0.0, "threshold for %s", intent)
	}
	assert.InDelta(t, 1.5, rules.SubjectMultiplier, 0.001)
	assert.Equal(t, []string{"financial_change_request", "urgency_marker"},
		rules.HardTriggers[core.IntentSecurity])
	assert.Contains(t, rules.FreeDomains, "gmail.com")
	assert.NotEmpty(t, rules.UrgencyTerms)
	assert.NotEmpty(t, rules.FinancialChangeTerms)
	assert.NotEmpty(t, rules.LegalTerms)
	assert.NotEmpty(t, rules.AcquisitionTerms)
	assert.NotEmpty(t, rules.RoleTerms)
}

func TestDefaultRuleSetCarriesBilingualTerms(t *testing.T) {
	cfg := newDefaultConfig()

	rules, err := cfg.GetRuleSet()
	require.NoError(t, err)

	assert.Contains(t, rules.IntentWeights[core.IntentMNA], "acquisition")
	assert.Contains(t, rules.IntentWeights[core.IntentMNA], "adquisición")
	assert.Contains(t, rules.UrgencyTerms, "urgente")
	assert.Contains(t, rules.LegalTerms, "contrato")
}

func TestGetRuleSetRejectsUnknownIntent(t *testing.T) {
	v := NewEmptyViper()
	v.Set("policy.thresholds", map[string]interface{}{"gossip": 5.0})
	cfg := NewFromViper(v)

	_, err := cfg.GetRuleSet()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown intent")
}

func TestGetRuleSetRejectsMalformedWeightTable(t *testing.T) {
	v := NewEmptyViper()
	v.Set("policy.intent_weights", map[string]interface{}{
		"mna": "not a table",
	})
	cfg := NewFromViper(v)

	_, err := cfg.GetRuleSet()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern table")
}

func TestGetRuleSetRejectsNonNumericWeight(t *testing.T) {
	v := NewEmptyViper()
	v.Set("policy.intent_weights", map[string]interface{}{
		"mna": map[string]interface{}{"acquisition": "heavy"},
	})
	cfg := NewFromViper(v)

	_, err := cfg.GetRuleSet()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a number")
}

func TestGetRuleSetRejectsNonPositiveThreshold(t *testing.T) {
	v := NewEmptyViper()
	v.Set("policy.thresholds", map[string]interface{}{
		"mna":      0.0,
		"legal":    8.0,
		"security": 10.0,
		"sales":    6.0,
		"support":  4.0,
	})
	cfg := NewFromViper(v)

	_, err := cfg.GetRuleSet()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid policy configuration")
}

func TestReviewerDefaults(t *testing.T) {
	cfg := newDefaultConfig()

	reviewer := cfg.GetReviewer()
	assert.Equal(t, "none", reviewer.Provider)
	assert.InDelta(t, 2.0, reviewer.Margin, 0.001)
}

func TestProviderDefaults(t *testing.T) {
	cfg := newDefaultConfig()

	openai := cfg.GetOpenAI()
	assert.Equal(t, "gpt-4", openai.ModelName)
	assert.Empty(t, openai.APIKey)
	assert.Equal(t, 4096, openai.MaxBodySize)

	bedrock := cfg.GetBedrock()
	assert.Equal(t, "us-east-1", bedrock.Region)
	assert.Equal(t, "anthropic.claude-v2", bedrock.ModelID)

	gemini := cfg.GetGemini()
	assert.Equal(t, "gemini-pro", gemini.ModelName)
}

func TestServerDefaults(t *testing.T) {
	cfg := newDefaultConfig()

	assert.Equal(t, "smtp", cfg.GetString("server.gateway_type"))
	assert.Equal(t, "0.0.0.0:10025", cfg.GetString("server.listen_address"))
	assert.Equal(t, "X-Sentinel-Action", cfg.GetString("server.headers.action"))
	assert.Equal(t, "memory", cfg.GetString("audit.type"))
	assert.True(t, cfg.GetBool("audit.enabled"))
}

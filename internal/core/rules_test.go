package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRuleSet returns a small but complete rule set used across the core
// package tests.
func testRuleSet() RuleSet {
	return RuleSet{
		IntentWeights: map[Intent]map[string]float64{
			IntentMNA: {
				"acquisition": 5, "merger": 5, "valuation": 5, "due diligence": 5,
			},
			IntentLegal: {
				"nda": 4, "contract": 4, "lawsuit": 4,
			},
			IntentSecurity: {
				"bank details": 5, "wire transfer": 5, "phishing": 5, "password": 5,
			},
			IntentSales: {
				"pricing": 2, "quote": 2,
			},
			IntentSupport: {
				"help": 1, "issue": 1,
			},
		},
		Thresholds: map[Intent]float64{
			IntentMNA:      5,
			IntentLegal:    8,
			IntentSecurity: 10,
			IntentSales:    6,
			IntentSupport:  4,
		},
		SubjectMultiplier: 1.5,
		HardTriggers: map[Intent][]string{
			IntentSecurity: {FlagFinancialChangeRequest, FlagUrgencyMarker},
		},
		FreeDomains: []string{"gmail.com", "yahoo.com", "hotmail.com"},
		UrgencyTerms: []string{
			"urgent", "immediately", "confidential",
		},
		FinancialChangeTerms: []string{
			"bank details", "wire transfer", "change payment",
		},
		LegalTerms: []string{
			"nda", "contract", "lawsuit",
		},
		AcquisitionTerms: []string{
			"acquisition", "merger", "due diligence",
		},
		RoleTerms: []string{
			"ceo", "board", "director",
		},
	}
}

func TestRuleSetValidate(t *testing.T) {
	require.NoError(t, testRuleSet().Validate())
}

func TestRuleSetValidateMissingThreshold(t *testing.T) {
	rules := testRuleSet()
	delete(rules.Thresholds, IntentLegal)

	err := rules.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "LEGAL")
}

func TestRuleSetValidateMissingWeights(t *testing.T) {
	rules := testRuleSet()
	delete(rules.IntentWeights, IntentSupport)

	err := rules.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight table")
}

func TestRuleSetValidateZeroThreshold(t *testing.T) {
	rules := testRuleSet()
	rules.Thresholds[IntentSales] = 0

	require.Error(t, rules.Validate())
}

func TestRuleSetValidateNegativeWeight(t *testing.T) {
	rules := testRuleSet()
	rules.IntentWeights[IntentSales]["pricing"] = -1

	require.Error(t, rules.Validate())
}

func TestRuleSetValidateUnknownIntent(t *testing.T) {
	rules := testRuleSet()
	rules.IntentWeights[Intent("GOSSIP")] = map[string]float64{"rumor": 1}

	err := rules.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOSSIP")
}

func TestRuleSetValidateUnknownHardTriggerFlag(t *testing.T) {
	rules := testRuleSet()
	rules.HardTriggers[IntentSecurity] = []string{"no_such_flag"}

	err := rules.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_flag")
}

func TestRuleSetValidateEmptyHardTrigger(t *testing.T) {
	rules := testRuleSet()
	rules.HardTriggers[IntentSecurity] = nil

	require.Error(t, rules.Validate())
}

func TestRuleSetValidateSubjectMultiplierBelowOne(t *testing.T) {
	rules := testRuleSet()
	rules.SubjectMultiplier = 0.5

	require.Error(t, rules.Validate())
}

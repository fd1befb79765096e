package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() SignalBundle {
	return SignalBundle{
		Scores:      NewIntentScores(),
		DomainClass: DomainCorporate,
	}
}

func TestDecideAutoReplyWhenNothingArmed(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	decision := engine.Decide(testBundle())

	assert.Equal(t, ActionAutoReply, decision.Action)
	assert.Empty(t, decision.TriggeredRules)
	assert.Zero(t, decision.Confidence)
	assert.NotEmpty(t, decision.Rationale)
}

func TestDecideThresholdBoundary(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	// Exactly at the threshold arms the category
	atThreshold := testBundle()
	atThreshold.Scores[IntentMNA] = 5
	decision := engine.Decide(atThreshold)
	assert.Equal(t, ActionEscalateHuman, decision.Action)
	assert.Contains(t, decision.TriggeredRules, "mna_threshold")

	// One unit below does not
	below := testBundle()
	below.Scores[IntentMNA] = 4
	decision = engine.Decide(below)
	assert.Equal(t, ActionAutoReply, decision.Action)
}

func TestDecideSecurityArmsBlock(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	bundle := testBundle()
	bundle.Scores[IntentSecurity] = 12

	decision := engine.Decide(bundle)

	assert.Equal(t, ActionBlock, decision.Action)
	assert.Contains(t, decision.TriggeredRules, "security_threshold")
	assert.InDelta(t, 12.0, decision.Confidence, 0.001)
	assert.NotEmpty(t, decision.Rationale)
}

func TestDecideHardTriggerBypassesScore(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	// Zero security score, but the financial-change + urgency conjunction
	// holds, so the category arms anyway
	bundle := testBundle()
	bundle.Flags = FilterFlags{
		FinancialChangeRequest: true,
		UrgencyMarker:          true,
	}

	decision := engine.Decide(bundle)

	assert.Equal(t, ActionBlock, decision.Action)
	assert.Contains(t, decision.TriggeredRules, "security_hard_trigger")
}

func TestDecideHardTriggerRequiresFullConjunction(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	bundle := testBundle()
	bundle.Flags = FilterFlags{FinancialChangeRequest: true}

	decision := engine.Decide(bundle)

	assert.Equal(t, ActionAutoReply, decision.Action)
}

func TestDecideBlockPrecedesEscalation(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	// Security hard trigger and MNA threshold armed simultaneously
	bundle := testBundle()
	bundle.Scores[IntentMNA] = 20
	bundle.Flags = FilterFlags{
		FinancialChangeRequest: true,
		UrgencyMarker:          true,
	}

	decision := engine.Decide(bundle)

	assert.Equal(t, ActionBlock, decision.Action)
}

func TestDecideReportsBothEscalationCategories(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	bundle := testBundle()
	bundle.Scores[IntentLegal] = 9
	bundle.Scores[IntentMNA] = 6

	decision := engine.Decide(bundle)

	assert.Equal(t, ActionEscalateHuman, decision.Action)
	assert.Contains(t, decision.TriggeredRules, "legal_threshold")
	assert.Contains(t, decision.TriggeredRules, "mna_threshold")
	assert.InDelta(t, 9.0, decision.Confidence, 0.001)
}

func TestDecideFreeDomainAuthorityContext(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	bundle := testBundle()
	bundle.DomainClass = DomainFreeWebmail
	bundle.Cues = []EntityCue{{Type: CueRoleMention, Text: "CEO"}}
	bundle.Scores[IntentLegal] = 4 // non-zero but under threshold

	decision := engine.Decide(bundle)

	require.Equal(t, ActionEscalateHuman, decision.Action)
	assert.Equal(t, []string{RuleFreeDomainAuthority}, decision.TriggeredRules)
	assert.InDelta(t, 4.0, decision.Confidence, 0.001)
	assert.NotEmpty(t, decision.Rationale)
}

func TestDecideContextRuleNeedsAllThreeConditions(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	tests := []struct {
		name   string
		mutate func(*SignalBundle)
	}{
		{
			name: "corporate sender",
			mutate: func(b *SignalBundle) {
				b.DomainClass = DomainCorporate
			},
		},
		{
			name: "no role mention",
			mutate: func(b *SignalBundle) {
				b.Cues = nil
			},
		},
		{
			name: "zero scores",
			mutate: func(b *SignalBundle) {
				b.Scores[IntentLegal] = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := testBundle()
			bundle.DomainClass = DomainFreeWebmail
			bundle.Cues = []EntityCue{{Type: CueRoleMention, Text: "board"}}
			bundle.Scores[IntentLegal] = 4
			tt.mutate(&bundle)

			decision := engine.Decide(bundle)
			assert.Equal(t, ActionAutoReply, decision.Action)
		})
	}
}

func TestDecideRationaleNonEmptyForNonAutoReply(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	armed := []SignalBundle{
		func() SignalBundle {
			b := testBundle()
			b.Scores[IntentSecurity] = 15
			return b
		}(),
		func() SignalBundle {
			b := testBundle()
			b.Scores[IntentMNA] = 5
			return b
		}(),
		func() SignalBundle {
			b := testBundle()
			b.DomainClass = DomainFreeWebmail
			b.Cues = []EntityCue{{Type: CueRoleMention, Text: "director"}}
			b.Scores[IntentMNA] = 3
			return b
		}(),
	}

	for _, bundle := range armed {
		decision := engine.Decide(bundle)
		require.NotEqual(t, ActionAutoReply, decision.Action)
		assert.NotEmpty(t, decision.Rationale)
		assert.NotEmpty(t, decision.TriggeredRules)
		assert.Greater(t, decision.Confidence, 0.0)
	}
}

// actionTier maps actions onto the precedence ordering used by the
// monotonicity property: BLOCK >= ESCALATE_HUMAN >= AUTO_REPLY.
func actionTier(a Action) int {
	switch a {
	case ActionBlock:
		return 2
	case ActionEscalateHuman:
		return 1
	default:
		return 0
	}
}

func TestDecideMonotonicUnderAddedEvidence(t *testing.T) {
	engine := NewPolicyEngine(testRuleSet())

	base := testBundle()
	base.Scores[IntentLegal] = 4

	stronger := testBundle()
	stronger.Scores[IntentLegal] = 8

	baseDecision := engine.Decide(base)
	strongerDecision := engine.Decide(stronger)

	assert.GreaterOrEqual(t, actionTier(strongerDecision.Action), actionTier(baseDecision.Action))
	assert.GreaterOrEqual(t, strongerDecision.Confidence, baseDecision.Confidence)
}

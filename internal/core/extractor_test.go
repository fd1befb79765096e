package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// classifierFunc adapts a function to the DomainClassifier interface
type classifierFunc func(string) SenderDomainClass

func (f classifierFunc) Classify(sender string) SenderDomainClass {
	return f(sender)
}

func corporateClassifier() DomainClassifier {
	return classifierFunc(func(string) SenderDomainClass { return DomainCorporate })
}

func newTestExtractor(t *testing.T, classifier DomainClassifier) *SignalExtractor {
	t.Helper()
	if classifier == nil {
		classifier = corporateClassifier()
	}
	return NewSignalExtractor(testRuleSet(), classifier, zap.NewNop())
}

func TestScoreIntentsSumsDistinctMatches(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	bundle := extractor.Extract(&Email{
		From:    "alice@corp.example",
		Subject: "Question",
		Body:    "We would value a valuation and due diligence before any merger.",
	}, FilterFlags{})

	// Three distinct MNA patterns in the body at weight 5 each
	assert.InDelta(t, 15.0, bundle.Scores[IntentMNA], 0.001)
	assert.Zero(t, bundle.Scores[IntentSecurity])
	assert.Zero(t, bundle.Scores[IntentSales])
}

func TestScoreIntentsSubjectMultiplier(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	inSubject := extractor.Extract(&Email{Subject: "merger", Body: ""}, FilterFlags{})
	inBody := extractor.Extract(&Email{Subject: "", Body: "merger"}, FilterFlags{})

	assert.InDelta(t, 7.5, inSubject.Scores[IntentMNA], 0.001)
	assert.InDelta(t, 5.0, inBody.Scores[IntentMNA], 0.001)
}

func TestScoreIntentsPatternCountedOnce(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	// The same pattern in subject and body scores once, at the subject rate
	bundle := extractor.Extract(&Email{Subject: "merger", Body: "merger merger"}, FilterFlags{})

	assert.InDelta(t, 7.5, bundle.Scores[IntentMNA], 0.001)
}

func TestScoreIntentsAllKeysPresentAndNonNegative(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	bundle := extractor.Extract(&Email{}, FilterFlags{})

	require.Len(t, bundle.Scores, len(Intents))
	for _, intent := range Intents {
		score, ok := bundle.Scores[intent]
		require.True(t, ok, "intent %s missing", intent)
		assert.GreaterOrEqual(t, score, 0.0)
	}
}

func TestScoreIntentsMonotonicUnderAddedEvidence(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	base := extractor.Extract(&Email{Body: "the contract is attached"}, FilterFlags{})
	more := extractor.Extract(&Email{Body: "the contract and nda are attached"}, FilterFlags{})

	for _, intent := range Intents {
		assert.GreaterOrEqual(t, more.Scores[intent], base.Scores[intent])
	}
}

func TestExtractCues(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	bundle := extractor.Extract(&Email{
		Subject: "Call from the CEO",
		Body:    "This is urgent. Reach me at +34 612 345 678 or https://example.com/meet",
	}, FilterFlags{})

	types := make(map[CueType]int)
	for _, cue := range bundle.Cues {
		types[cue.Type]++
	}

	assert.Equal(t, 1, types[CueRoleMention])
	assert.Equal(t, 1, types[CueUrgencyTerm])
	assert.Equal(t, 1, types[CuePhoneNumber])
	assert.Equal(t, 1, types[CueURL])

	// Cues are ordered by first match position
	for i := 1; i < len(bundle.Cues); i++ {
		assert.LessOrEqual(t, bundle.Cues[i-1].Position, bundle.Cues[i].Position)
	}
}

func TestExtractCuesDeduplicated(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	bundle := extractor.Extract(&Email{
		Body: "CEO here. ceo again. CEO once more.",
	}, FilterFlags{})

	roleCues := 0
	for _, cue := range bundle.Cues {
		if cue.Type == CueRoleMention {
			roleCues++
		}
	}
	assert.Equal(t, 1, roleCues)
}

func TestExtractEmptyInputIsSafe(t *testing.T) {
	extractor := newTestExtractor(t, nil)

	bundle := extractor.Extract(&Email{From: "", Subject: "", Body: ""}, FilterFlags{})

	assert.Empty(t, bundle.Cues)
	for _, intent := range Intents {
		assert.Zero(t, bundle.Scores[intent])
	}
}

func TestExtractUsesDomainClassifier(t *testing.T) {
	free := classifierFunc(func(string) SenderDomainClass { return DomainFreeWebmail })
	extractor := newTestExtractor(t, free)

	bundle := extractor.Extract(&Email{From: "x@gmail.com"}, FilterFlags{})

	assert.Equal(t, DomainFreeWebmail, bundle.DomainClass)
}

func TestExtractCarriesFilterFlags(t *testing.T) {
	extractor := newTestExtractor(t, nil)
	flags := FilterFlags{UrgencyMarker: true, FinancialChangeRequest: true}

	bundle := extractor.Extract(&Email{}, flags)

	assert.Equal(t, flags, bundle.Flags)
}

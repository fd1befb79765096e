package core

import (
	"strings"
)

// PatternFilter produces the coarse FilterFlags for an email. It exists to
// cheaply guarantee that high-risk keyword classes are never silently
// dropped before scoring: each category is matched independently, so
// multiple flags may be set at once.
type PatternFilter struct {
	urgencyTerms         []string
	financialChangeTerms []string
	legalTerms           []string
	acquisitionTerms     []string
}

// NewPatternFilter creates a pattern filter from the rule set.
// Term lists are normalized to lowercase once at construction.
func NewPatternFilter(rules RuleSet) *PatternFilter {
	return &PatternFilter{
		urgencyTerms:         lowerTerms(rules.UrgencyTerms),
		financialChangeTerms: lowerTerms(rules.FinancialChangeTerms),
		legalTerms:           lowerTerms(rules.LegalTerms),
		acquisitionTerms:     lowerTerms(rules.AcquisitionTerms),
	}
}

// Flags matches the subject and body against the curated term lists.
// Matching is case-insensitive, substring based, and order-independent;
// the result is deterministic for identical input text.
func (f *PatternFilter) Flags(subject, body string) FilterFlags {
	text := strings.ToLower(subject + "\n" + body)

	return FilterFlags{
		UrgencyMarker:          containsAny(text, f.urgencyTerms),
		FinancialChangeRequest: containsAny(text, f.financialChangeTerms),
		LegalTerm:              containsAny(text, f.legalTerms),
		AcquisitionTerm:        containsAny(text, f.acquisitionTerms),
	}
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func lowerTerms(terms []string) []string {
	lowered := make([]string, len(terms))
	for i, term := range terms {
		lowered[i] = strings.ToLower(strings.TrimSpace(term))
	}
	return lowered
}

package core

import (
	"fmt"
)

// RuleSet holds the read-only tables the pipeline is built from: keyword
// weights, escalation thresholds, entity term lists, the free-webmail
// domain list, and the hard-trigger definitions. It is loaded once at
// startup and never mutated during request processing.
type RuleSet struct {
	// IntentWeights maps each intent to its pattern -> weight table
	IntentWeights map[Intent]map[string]float64

	// Thresholds holds the escalation threshold per intent
	Thresholds map[Intent]float64

	// SubjectMultiplier scales the weight of patterns matched in the
	// subject line; must be >= 1
	SubjectMultiplier float64

	// HardTriggers maps an intent to a conjunction of filter flag names.
	// When every named flag is set, the intent is armed regardless of score.
	HardTriggers map[Intent][]string

	// FreeDomains is the list of known free-webmail provider domains
	FreeDomains []string

	// Pattern lists for the coarse filter flags
	UrgencyTerms         []string
	FinancialChangeTerms []string
	LegalTerms           []string
	AcquisitionTerms     []string

	// RoleTerms are the executive/authority mentions extracted as cues
	RoleTerms []string
}

// Validate checks the rule set for completeness. The engine must not run
// with partial configuration, so any missing entry is an error.
func (r RuleSet) Validate() error {
	for _, intent := range Intents {
		weights, ok := r.IntentWeights[intent]
		if !ok || len(weights) == 0 {
			return fmt.Errorf("rule set is missing weight table for intent %s", intent)
		}
		for pattern, weight := range weights {
			if pattern == "" {
				return fmt.Errorf("rule set has an empty pattern for intent %s", intent)
			}
			if weight < 0 {
				return fmt.Errorf("rule set has negative weight %.2f for pattern %q of intent %s", weight, pattern, intent)
			}
		}
		if _, ok := r.Thresholds[intent]; !ok {
			return fmt.Errorf("rule set is missing threshold for intent %s", intent)
		}
		// A zero threshold would arm the category on no evidence at all
		if r.Thresholds[intent] <= 0 {
			return fmt.Errorf("threshold for intent %s must be positive", intent)
		}
	}

	// Reject tables keyed by intents outside the closed enum
	for intent := range r.IntentWeights {
		if !knownIntent(intent) {
			return fmt.Errorf("rule set has weight table for unknown intent %s", intent)
		}
	}
	for intent := range r.Thresholds {
		if !knownIntent(intent) {
			return fmt.Errorf("rule set has threshold for unknown intent %s", intent)
		}
	}

	if r.SubjectMultiplier < 1 {
		return fmt.Errorf("subject multiplier must be >= 1, got %.2f", r.SubjectMultiplier)
	}

	for intent, flags := range r.HardTriggers {
		if !knownIntent(intent) {
			return fmt.Errorf("hard trigger references unknown intent %s", intent)
		}
		if len(flags) == 0 {
			return fmt.Errorf("hard trigger for intent %s names no filter flags", intent)
		}
		for _, name := range flags {
			if _, ok := (FilterFlags{}).Named(name); !ok {
				return fmt.Errorf("hard trigger for intent %s references unknown flag %q", intent, name)
			}
		}
	}

	if len(r.UrgencyTerms) == 0 || len(r.FinancialChangeTerms) == 0 ||
		len(r.LegalTerms) == 0 || len(r.AcquisitionTerms) == 0 {
		return fmt.Errorf("rule set is missing one or more filter term lists")
	}
	if len(r.RoleTerms) == 0 {
		return fmt.Errorf("rule set is missing role terms")
	}

	return nil
}

func knownIntent(intent Intent) bool {
	for _, known := range Intents {
		if intent == known {
			return true
		}
	}
	return false
}

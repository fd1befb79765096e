package core

import (
	"fmt"
	"strings"
	"time"
)

// Rule identifiers reported in DecisionResult.TriggeredRules
const (
	RuleFreeDomainAuthority = "free_domain_authority_context"
	RuleReviewerOverride    = "reviewer_override"
)

// PolicyEngine turns a signal bundle into a decision. It is a deterministic
// decision table evaluated top-to-bottom; precedence is explicit in the
// table order, not embedded in control flow, and there is no hidden state
// between invocations.
type PolicyEngine struct {
	thresholds   map[Intent]float64
	hardTriggers map[Intent][]string
	rules        []policyRule
}

// evaluation carries the armed state for one bundle through the rule table
type evaluation struct {
	bundle SignalBundle
	// armedBy maps each armed intent to the identifiers that armed it,
	// threshold arming first
	armedBy map[Intent][]string
}

func (ev *evaluation) armed(intents ...Intent) bool {
	for _, intent := range intents {
		if len(ev.armedBy[intent]) > 0 {
			return true
		}
	}
	return false
}

// policyRule is one row of the decision table
type policyRule struct {
	id      string
	action  Action
	applies func(ev *evaluation) bool
}

// NewPolicyEngine creates a policy engine from the rule set
func NewPolicyEngine(rules RuleSet) *PolicyEngine {
	engine := &PolicyEngine{
		thresholds:   rules.Thresholds,
		hardTriggers: rules.HardTriggers,
	}

	// Highest precedence first: security halts the workflow outright,
	// legal and M&A escalate, the contextual free-webmail rule catches
	// under-threshold authority impersonation, and everything else is
	// answered automatically.
	engine.rules = []policyRule{
		{
			id:     "security_armed",
			action: ActionBlock,
			applies: func(ev *evaluation) bool {
				return ev.armed(IntentSecurity)
			},
		},
		{
			id:     "legal_or_mna_armed",
			action: ActionEscalateHuman,
			applies: func(ev *evaluation) bool {
				return ev.armed(IntentLegal, IntentMNA)
			},
		},
		{
			id:      RuleFreeDomainAuthority,
			action:  ActionEscalateHuman,
			applies: engine.freeDomainAuthorityContext,
		},
		{
			id:     "no_category_armed",
			action: ActionAutoReply,
			applies: func(ev *evaluation) bool {
				return true
			},
		},
	}

	return engine
}

// Decide evaluates the rule table against a signal bundle and returns the
// decision for the first matching row.
func (p *PolicyEngine) Decide(bundle SignalBundle) DecisionResult {
	ev := &evaluation{
		bundle:  bundle,
		armedBy: p.armIntents(bundle),
	}

	for _, rule := range p.rules {
		if rule.applies(ev) {
			return p.buildResult(rule, ev)
		}
	}

	// Unreachable: the last table row always applies
	return DecisionResult{
		Action:    ActionAutoReply,
		Rationale: "no policy rule matched",
		DecidedAt: time.Now(),
	}
}

// armIntents computes which categories are armed and by what. A category
// arms when its score reaches its threshold or when every flag of its
// hard-trigger conjunction is set; hard triggers bypass scoring entirely.
func (p *PolicyEngine) armIntents(bundle SignalBundle) map[Intent][]string {
	armedBy := make(map[Intent][]string)

	for _, intent := range Intents {
		if bundle.Scores[intent] >= p.thresholds[intent] {
			armedBy[intent] = append(armedBy[intent], thresholdRuleID(intent))
		}
		if flags, ok := p.hardTriggers[intent]; ok && conjunctionHolds(bundle.Flags, flags) {
			armedBy[intent] = append(armedBy[intent], hardTriggerRuleID(intent))
		}
	}

	return armedBy
}

// freeDomainAuthorityContext arms contextual escalation: a free-webmail
// sender invoking an executive role alongside non-zero but under-threshold
// M&A or legal evidence is elevated risk even though nothing armed.
func (p *PolicyEngine) freeDomainAuthorityContext(ev *evaluation) bool {
	if ev.bundle.DomainClass != DomainFreeWebmail || !ev.bundle.HasCue(CueRoleMention) {
		return false
	}
	for _, intent := range []Intent{IntentMNA, IntentLegal} {
		score := ev.bundle.Scores[intent]
		if score > 0 && score < p.thresholds[intent] {
			return true
		}
	}
	return false
}

func (p *PolicyEngine) buildResult(rule policyRule, ev *evaluation) DecisionResult {
	result := DecisionResult{
		Action:    rule.action,
		DecidedAt: time.Now(),
	}

	switch rule.id {
	case "security_armed":
		result.TriggeredRules = append(result.TriggeredRules, ev.armedBy[IntentSecurity]...)
		result.Confidence = ev.bundle.Scores[IntentSecurity]
		result.Rationale = fmt.Sprintf("security category armed (%s); workflow halted",
			strings.Join(result.TriggeredRules, ", "))

	case "legal_or_mna_armed":
		// Both categories are reported when both armed
		for _, intent := range []Intent{IntentLegal, IntentMNA} {
			if len(ev.armedBy[intent]) > 0 {
				result.TriggeredRules = append(result.TriggeredRules, ev.armedBy[intent]...)
				if ev.bundle.Scores[intent] > result.Confidence {
					result.Confidence = ev.bundle.Scores[intent]
				}
			}
		}
		result.Rationale = fmt.Sprintf("escalation category armed (%s); human review required",
			strings.Join(result.TriggeredRules, ", "))

	case RuleFreeDomainAuthority:
		result.TriggeredRules = []string{RuleFreeDomainAuthority}
		for _, intent := range []Intent{IntentMNA, IntentLegal} {
			score := ev.bundle.Scores[intent]
			if score > 0 && score < p.thresholds[intent] && score > result.Confidence {
				result.Confidence = score
			}
		}
		result.Rationale = "free-webmail sender invoking an executive role with under-threshold M&A/legal evidence; human review required"

	default:
		// AUTO_REPLY: nothing armed, empty triggered rules, confidence 0
		result.Rationale = "no category reached its escalation threshold"
	}

	return result
}

func conjunctionHolds(flags FilterFlags, names []string) bool {
	for _, name := range names {
		set, ok := flags.Named(name)
		if !ok || !set {
			return false
		}
	}
	return true
}

func thresholdRuleID(intent Intent) string {
	return strings.ToLower(string(intent)) + "_threshold"
}

func hardTriggerRuleID(intent Intent) string {
	return strings.ToLower(string(intent)) + "_hard_trigger"
}

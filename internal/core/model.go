package core

import (
	"time"
)

// Email represents an inbound email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Action is the autonomy decision for one email
type Action string

const (
	// ActionAutoReply allows the agent to respond without human review
	ActionAutoReply Action = "AUTO_REPLY"
	// ActionEscalateHuman pauses the workflow for human review
	ActionEscalateHuman Action = "ESCALATE_HUMAN"
	// ActionBlock halts the workflow entirely
	ActionBlock Action = "BLOCK"
)

// Intent is a coarse category of email purpose, scored independently
type Intent string

const (
	IntentMNA      Intent = "MNA"
	IntentLegal    Intent = "LEGAL"
	IntentSecurity Intent = "SECURITY"
	IntentSales    Intent = "SALES"
	IntentSupport  Intent = "SUPPORT"
)

// Intents lists every intent category in reporting order
var Intents = []Intent{IntentMNA, IntentLegal, IntentSecurity, IntentSales, IntentSupport}

// IntentScores maps every intent to a non-negative evidence score.
// All keys are always present; unmatched categories score 0.
type IntentScores map[Intent]float64

// NewIntentScores returns a score map with every intent present at 0
func NewIntentScores() IntentScores {
	scores := make(IntentScores, len(Intents))
	for _, intent := range Intents {
		scores[intent] = 0
	}
	return scores
}

// FilterFlags are the coarse category hits produced by the pattern filter
type FilterFlags struct {
	UrgencyMarker          bool
	FinancialChangeRequest bool
	LegalTerm              bool
	AcquisitionTerm        bool
}

// Filter flag names as referenced by hard-trigger configuration
const (
	FlagUrgencyMarker          = "urgency_marker"
	FlagFinancialChangeRequest = "financial_change_request"
	FlagLegalTerm              = "legal_term"
	FlagAcquisitionTerm        = "acquisition_term"
)

// FlagNames lists every recognized filter flag name
var FlagNames = []string{
	FlagUrgencyMarker,
	FlagFinancialChangeRequest,
	FlagLegalTerm,
	FlagAcquisitionTerm,
}

// Named returns the value of the flag with the given configuration name.
// The second return value is false for unknown names.
func (f FilterFlags) Named(name string) (bool, bool) {
	switch name {
	case FlagUrgencyMarker:
		return f.UrgencyMarker, true
	case FlagFinancialChangeRequest:
		return f.FinancialChangeRequest, true
	case FlagLegalTerm:
		return f.LegalTerm, true
	case FlagAcquisitionTerm:
		return f.AcquisitionTerm, true
	default:
		return false, false
	}
}

// CueType identifies the kind of extracted entity cue
type CueType string

const (
	CueRoleMention CueType = "ROLE_MENTION"
	CuePhoneNumber CueType = "PHONE_NUMBER"
	CueURL         CueType = "URL"
	CueUrgencyTerm CueType = "URGENCY_TERM"
)

// EntityCue is one extracted fact used as contextual evidence
type EntityCue struct {
	Type     CueType
	Text     string
	Position int
}

// SenderDomainClass classifies the sending address as a risk modifier
type SenderDomainClass string

const (
	DomainFreeWebmail SenderDomainClass = "FREE_WEBMAIL"
	DomainCorporate   SenderDomainClass = "CORPORATE"
	DomainUnknown     SenderDomainClass = "UNKNOWN"
)

// SignalBundle aggregates everything the policy engine decides on.
// It is constructed once per email and passed by value, read-only.
type SignalBundle struct {
	Scores      IntentScores
	Cues        []EntityCue
	DomainClass SenderDomainClass
	Flags       FilterFlags
}

// HasCue reports whether the bundle contains a cue of the given type
func (b SignalBundle) HasCue(t CueType) bool {
	for _, cue := range b.Cues {
		if cue.Type == t {
			return true
		}
	}
	return false
}

// DecisionResult is the immutable outcome of evaluating one email
type DecisionResult struct {
	Action         Action
	TriggeredRules []string
	Rationale      string
	Confidence     float64
	DecidedAt      time.Time
}

// AuditEntry is the caller-facing record of one decision
type AuditEntry struct {
	Sender         string
	Subject        string
	Action         Action
	Confidence     float64
	TriggeredRules []string
	DecidedAt      time.Time
}

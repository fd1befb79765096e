package core

import (
	"context"
)

// DomainClassifier classifies the sender address as a risk modifier
type DomainClassifier interface {
	// Classify returns the domain class for a sender address.
	// Unparseable addresses classify as UNKNOWN, never as an error.
	Classify(sender string) SenderDomainClass
}

// ReviewVerdict is a reviewer's judgement on an ambiguous decision
type ReviewVerdict struct {
	Escalate   bool
	Confidence float64
	Reason     string
}

// Reviewer is an optional capability consulted for near-threshold cases.
// A reviewer may upgrade AUTO_REPLY to ESCALATE_HUMAN; it is never asked
// about BLOCK decisions and can never downgrade an action.
type Reviewer interface {
	// Review inspects the signal bundle for an email the policy engine
	// decided to answer automatically
	Review(ctx context.Context, email *Email, bundle SignalBundle) (*ReviewVerdict, error)
}

// AuditRepository records decisions on behalf of callers. The decision
// pipeline itself keeps no state between invocations.
type AuditRepository interface {
	// Record appends one decision to the audit trail
	Record(ctx context.Context, entry *AuditEntry) error

	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]*AuditEntry, error)

	// Cleanup removes entries older than the configured retention
	Cleanup(ctx context.Context) error
}

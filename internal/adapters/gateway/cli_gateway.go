package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/mail-sentinel/internal/core"
	"go.uber.org/zap"
)

// CliGateway evaluates a single email and prints the decision, used by the
// one-shot triage command.
type CliGateway struct {
	service *core.SentinelService
	audit   core.AuditRepository
	logger  *zap.Logger
	verbose bool
}

// NewCliGateway creates a new CLI gateway
func NewCliGateway(service *core.SentinelService, audit core.AuditRepository, logger *zap.Logger, verbose bool) (*CliGateway, error) {
	return &CliGateway{
		service: service,
		audit:   audit,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail evaluates an email and displays the results
func (g *CliGateway) ProcessEmail(ctx context.Context, email *core.Email) (core.DecisionResult, error) {
	g.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	if g.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	bundle, decision := g.service.EvaluateWithSignals(ctx, email)

	fmt.Printf("\n=== Signals ===\n")
	fmt.Printf("Sender domain class: %s\n", bundle.DomainClass)
	for _, intent := range core.Intents {
		fmt.Printf("%s score: %.1f\n", intent, bundle.Scores[intent])
	}
	if len(bundle.Cues) > 0 {
		fmt.Printf("\n=== Entity cues ===\n")
		for _, cue := range bundle.Cues {
			fmt.Printf("%s: %s\n", cue.Type, cue.Text)
		}
	}

	fmt.Printf("\n=== Decision ===\n")
	fmt.Printf("Action: %s\n", decision.Action)
	fmt.Printf("Confidence: %.2f\n", decision.Confidence)
	fmt.Printf("Rationale: %s\n", decision.Rationale)
	if len(decision.TriggeredRules) > 0 {
		fmt.Printf("Triggered rules: %s\n", strings.Join(decision.TriggeredRules, ", "))
	}

	if g.audit != nil {
		entry := &core.AuditEntry{
			Sender:         email.From,
			Subject:        email.Subject,
			Action:         decision.Action,
			Confidence:     decision.Confidence,
			TriggeredRules: decision.TriggeredRules,
			DecidedAt:      decision.DecidedAt,
		}
		if err := g.audit.Record(ctx, entry); err != nil {
			g.logger.Error("Failed to record audit entry", zap.Error(err))
		}
	}

	return decision, nil
}

// Start is a no-op for the CLI gateway
func (g *CliGateway) Start() error {
	return nil
}

// Stop is a no-op for the CLI gateway
func (g *CliGateway) Stop() error {
	return nil
}

package ports

import (
	"context"

	"github.com/mikey/mail-sentinel/internal/core"
)

// EmailGateway defines the interface for a mail-facing entry point that
// feeds emails through the decision pipeline.
type EmailGateway interface {
	// ProcessEmail evaluates an email and returns the decision
	ProcessEmail(ctx context.Context, email *core.Email) (core.DecisionResult, error)

	// Start starts the gateway
	Start() error

	// Stop stops the gateway
	Stop() error
}

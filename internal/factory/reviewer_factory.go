package factory

import (
	"fmt"

	"github.com/mikey/mail-sentinel/internal/adapters/reviewer/bedrock"
	"github.com/mikey/mail-sentinel/internal/adapters/reviewer/gemini"
	"github.com/mikey/mail-sentinel/internal/adapters/reviewer/openai"
	"github.com/mikey/mail-sentinel/internal/config"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/utils"
	"go.uber.org/zap"
)

// ReviewerFactory creates reviewer capabilities
type ReviewerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewReviewerFactory creates a new reviewer factory
func NewReviewerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ReviewerFactory {
	return &ReviewerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReviewer creates a reviewer based on the configuration. Provider
// "none" disables review entirely and returns nil.
func (f *ReviewerFactory) CreateReviewer() (core.Reviewer, error) {
	reviewerCfg := f.cfg.GetReviewer()

	switch reviewerCfg.Provider {
	case "", "none":
		return nil, nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReviewer()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReviewer()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateReviewer()
	default:
		return nil, fmt.Errorf("unsupported reviewer provider: %s", reviewerCfg.Provider)
	}
}

// GetReviewMargin returns the configured review margin
func (f *ReviewerFactory) GetReviewMargin() float64 {
	return f.cfg.GetReviewer().Margin
}

package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-sentinel/internal/config"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/domains"
	"github.com/mikey/mail-sentinel/internal/factory"
	"github.com/mikey/mail-sentinel/internal/logging"
	"github.com/mikey/mail-sentinel/internal/ports"
	"github.com/mikey/mail-sentinel/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register the validated policy rule set; loading fails fast on any
	// missing threshold or weight table
	if err := container.Provide(func(cfg *config.Config) (core.RuleSet, error) {
		return cfg.GetRuleSet()
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReviewerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAuditFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register domain classifier
	if err := container.Provide(func(rules core.RuleSet, logger *zap.Logger) core.DomainClassifier {
		return domains.NewClassifier(rules.FreeDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register reviewer (may be nil when provider is "none")
	if err := container.Provide(func(f *factory.ReviewerFactory) (core.Reviewer, error) {
		return f.CreateReviewer()
	}); err != nil {
		return nil, err
	}

	// Register audit repository
	if err := container.Provide(func(f *factory.AuditFactory) (core.AuditRepository, error) {
		return f.CreateAuditRepository()
	}); err != nil {
		return nil, err
	}

	// Register the sentinel service
	if err := container.Provide(func(
		rules core.RuleSet,
		classifier core.DomainClassifier,
		reviewer core.Reviewer,
		reviewerFactory *factory.ReviewerFactory,
		logger *zap.Logger,
	) *core.SentinelService {
		return core.NewSentinelService(rules, classifier, reviewer, reviewerFactory.GetReviewMargin(), logger)
	}); err != nil {
		return nil, err
	}

	// Register email gateway
	if err := container.Provide(func(f *factory.GatewayFactory) (ports.EmailGateway, error) {
		return f.CreateEmailGateway()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

package domains

import (
	"regexp"
	"strings"

	"github.com/mikey/mail-sentinel/internal/core"
	"go.uber.org/zap"
)

// domainShape accepts the domain part of a deliverable address
var domainShape = regexp.MustCompile(`^[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Classifier classifies sender domains against a known free-webmail list
type Classifier struct {
	freeDomains []string
	logger      *zap.Logger
}

// NewClassifier creates a domain classifier. Domains are normalized to
// lowercase once at construction.
func NewClassifier(freeDomains []string, logger *zap.Logger) *Classifier {
	normalized := make([]string, len(freeDomains))
	for i, domain := range freeDomains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized domain classifier", zap.Int("free_domains", len(normalized)))
	}

	return &Classifier{
		freeDomains: normalized,
		logger:      logger,
	}
}

// Classify returns the domain class for a sender address. Addresses that
// cannot be parsed classify as UNKNOWN rather than failing.
func (c *Classifier) Classify(sender string) core.SenderDomainClass {
	// Extract domain from email address
	parts := strings.Split(sender, "@")
	if len(parts) != 2 {
		return core.DomainUnknown
	}

	domain := strings.ToLower(strings.TrimSpace(parts[1]))
	domain = strings.TrimSuffix(domain, ">")
	if !domainShape.MatchString(domain) {
		return core.DomainUnknown
	}

	for _, free := range c.freeDomains {
		if domain == free {
			if c.logger != nil {
				c.logger.Debug("Sender uses a free-webmail domain",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return core.DomainFreeWebmail
		}
	}

	return core.DomainCorporate
}

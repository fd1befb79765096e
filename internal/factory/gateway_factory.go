package factory

import (
	"fmt"

	"github.com/mikey/mail-sentinel/internal/adapters/gateway"
	"github.com/mikey/mail-sentinel/internal/config"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/ports"
	"go.uber.org/zap"
)

// GatewayFactory creates email gateways based on configuration
type GatewayFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.SentinelService
	audit   core.AuditRepository
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger, service *core.SentinelService, audit core.AuditRepository) *GatewayFactory {
	return &GatewayFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		audit:   audit,
	}
}

// CreateEmailGateway creates an email gateway based on the configuration
func (f *GatewayFactory) CreateEmailGateway() (ports.EmailGateway, error) {
	gatewayType := f.cfg.GetString("server.gateway_type")

	switch gatewayType {
	case "smtp":
		return gateway.NewSMTPGateway(
			f.service,
			f.audit,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetString("server.headers.action"),
			f.cfg.GetString("server.headers.confidence"),
			f.cfg.GetString("server.headers.rules"),
			f.cfg.GetString("server.hold_address"),
			f.cfg.GetString("server.downstream.address"),
			f.cfg.GetInt("server.downstream.port"),
			f.cfg.GetBool("server.downstream.enabled"),
		), nil
	case "cli":
		return gateway.NewCliGateway(
			f.service,
			f.audit,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
}

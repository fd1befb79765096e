package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/mail-sentinel/internal/adapters/audit"
	"github.com/mikey/mail-sentinel/internal/config"
	"github.com/mikey/mail-sentinel/internal/core"
	"go.uber.org/zap"
)

// AuditFactory creates audit repositories based on configuration
type AuditFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuditFactory creates a new audit factory
func NewAuditFactory(cfg *config.Config, logger *zap.Logger) *AuditFactory {
	return &AuditFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAuditRepository creates an audit repository based on the
// configuration. Returns nil when auditing is disabled.
func (f *AuditFactory) CreateAuditRepository() (core.AuditRepository, error) {
	if !f.cfg.GetBool("audit.enabled") {
		return nil, nil
	}

	retention, err := f.cfg.GetDuration("audit.retention")
	if err != nil {
		return nil, fmt.Errorf("invalid audit retention: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("audit.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid audit cleanup frequency: %w", err)
	}

	auditType := f.cfg.GetString("audit.type")
	switch auditType {
	case "memory":
		return audit.NewMemoryAudit(f.logger, retention, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("audit.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return audit.NewSQLiteAudit(sqlitePath, f.logger, retention, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("audit.mysql_dsn")
		return audit.NewMySQLAudit(mysqlDSN, f.logger, retention, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported audit type: %s", auditType)
	}
}

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/mail-sentinel/internal/core"
	"go.uber.org/zap"
)

// MySQLAudit is a MySQL implementation of the AuditRepository interface
type MySQLAudit struct {
	db          *sql.DB
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLAudit creates a new MySQL audit trail
func NewMySQLAudit(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLAudit, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS decision_audit (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sender VARCHAR(255),
			subject VARCHAR(998),
			action VARCHAR(32),
			confidence FLOAT,
			triggered_rules TEXT,
			decided_at TIMESTAMP,
			INDEX idx_decided_at (decided_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	trail := &MySQLAudit{
		db:          db,
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go trail.startCleanupTask()

	return trail, nil
}

// Record appends one decision to the audit trail
func (a *MySQLAudit) Record(ctx context.Context, entry *core.AuditEntry) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO decision_audit (sender, subject, action, confidence, triggered_rules, decided_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Sender, entry.Subject, string(entry.Action), entry.Confidence,
		strings.Join(entry.TriggeredRules, ","), entry.DecidedAt)

	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (a *MySQLAudit) Recent(ctx context.Context, limit int) ([]*core.AuditEntry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT sender, subject, action, confidence, triggered_rules, decided_at
		FROM decision_audit
		ORDER BY decided_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []*core.AuditEntry
	for rows.Next() {
		var entry core.AuditEntry
		var action, rules, decidedAt string

		if err := rows.Scan(&entry.Sender, &entry.Subject, &action, &entry.Confidence, &rules, &decidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Action = core.Action(action)
		if rules != "" {
			entry.TriggeredRules = strings.Split(rules, ",")
		}

		parsed, err := time.Parse("2006-01-02 15:04:05", decidedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse decided_at timestamp: %w", err)
		}
		entry.DecidedAt = parsed

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Cleanup removes entries older than the retention period
func (a *MySQLAudit) Cleanup(ctx context.Context) error {
	result, err := a.db.ExecContext(ctx, `
		DELETE FROM decision_audit
		WHERE decided_at <= ?
	`, time.Now().Add(-a.retention))
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		a.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		a.logger.Debug("Cleaned up expired audit entries", zap.Int64("removed_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to enforce retention
func (a *MySQLAudit) startCleanupTask() {
	if a.cleanupFreq <= 0 {
		return
	}

	ticker := time.NewTicker(a.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.Cleanup(context.Background()); err != nil {
				a.logger.Error("Failed to clean up audit trail", zap.Error(err))
			}
		case <-a.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (a *MySQLAudit) Stop() {
	close(a.stopCh)
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}

package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/mail-sentinel/internal/core"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no audit entries match a query
var ErrNotFound = errors.New("audit entry not found")

// MemoryAudit is an in-memory implementation of the AuditRepository
// interface, used by the CLI and in tests.
type MemoryAudit struct {
	entries     []*core.AuditEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryAudit creates a new in-memory audit trail
func NewMemoryAudit(logger *zap.Logger, retention, cleanupFreq time.Duration) *MemoryAudit {
	trail := &MemoryAudit{
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go trail.startCleanupTask()

	return trail
}

// Record appends one decision to the audit trail
func (a *MemoryAudit) Record(ctx context.Context, entry *core.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	copied := *entry
	a.entries = append(a.entries, &copied)
	return nil
}

// Recent returns up to limit entries, newest first
func (a *MemoryAudit) Recent(ctx context.Context, limit int) ([]*core.AuditEntry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 || limit > len(a.entries) {
		limit = len(a.entries)
	}

	result := make([]*core.AuditEntry, 0, limit)
	for i := len(a.entries) - 1; i >= 0 && len(result) < limit; i-- {
		copied := *a.entries[i]
		result = append(result, &copied)
	}
	return result, nil
}

// Cleanup removes entries older than the retention period
func (a *MemoryAudit) Cleanup(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-a.retention)
	kept := a.entries[:0]
	removed := 0

	for _, entry := range a.entries {
		if entry.DecidedAt.After(cutoff) {
			kept = append(kept, entry)
		} else {
			removed++
		}
	}
	a.entries = kept

	a.logger.Debug("Cleaned up expired audit entries", zap.Int("removed_count", removed))
	return nil
}

// startCleanupTask starts a background task to enforce retention
func (a *MemoryAudit) startCleanupTask() {
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

// Stop stops the background cleanup task
func (a *MemoryAudit) Stop() {
	close(a.stopCh)
}

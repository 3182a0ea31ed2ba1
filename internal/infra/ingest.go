package infra

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// LoggingIngestor implements the hand-off boundary to the ingestion API:
// it accepts drained batches and accounts for them. The wire transport is
// owned by the external collaborator, so the default build only logs.
type LoggingIngestor struct {
	logger    *zap.Logger
	submitted atomic.Int64
	events    atomic.Int64
}

// NewLoggingIngestor creates the default ingestor.
func NewLoggingIngestor(logger *zap.Logger) *LoggingIngestor {
	return &LoggingIngestor{logger: logger}
}

// Submit accepts one drained batch.
func (i *LoggingIngestor) Submit(ctx context.Context, batch domain.EventBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	i.submitted.Add(1)
	i.events.Add(int64(len(batch.Events)))
	i.logger.Debug("batch handed off",
		zap.String("batch", batch.ID),
		zap.Int("events", len(batch.Events)))
	return nil
}

// Stats returns how many batches and events have been handed off.
func (i *LoggingIngestor) Stats() (batches, events int64) {
	return i.submitted.Load(), i.events.Load()
}

// Ensure LoggingIngestor implements domain.Ingestor.
var _ domain.Ingestor = (*LoggingIngestor)(nil)

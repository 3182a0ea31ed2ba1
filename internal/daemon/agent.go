// Package daemon implements the agent's long-running upload loop.
package daemon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/capture"
	"github.com/opspulse/workmon/internal/domain"
)

// AgentConfig holds the upload loop cadence.
type AgentConfig struct {
	UploadInterval    time.Duration // How often to drain the buffer
	SpoolRetryEvery   time.Duration // How often to retry spooled batches
	HeartbeatInterval time.Duration // How often to log liveness
}

// DefaultAgentConfig returns the default cadence.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		UploadInterval:    10 * time.Second,
		SpoolRetryEvery:   60 * time.Second,
		HeartbeatInterval: 30 * time.Second,
	}
}

// Agent is the consumer side of the capture pipeline. It drains the
// bounded buffer on a schedule, hands batches to the ingestion
// collaborator, and parks failed batches in the encrypted spool for
// retry across restarts.
type Agent struct {
	config    AgentConfig
	sessionID string
	buffer    *capture.BoundedEventBuffer
	ingestor  domain.Ingestor
	spool     domain.SpoolStore
	logger    *zap.Logger
	clock     func() time.Time
}

// NewAgent creates an upload agent. The spool may be nil, in which case
// failed batches are dropped with a warning.
func NewAgent(
	config AgentConfig,
	buffer *capture.BoundedEventBuffer,
	ingestor domain.Ingestor,
	spool domain.SpoolStore,
	logger *zap.Logger,
) *Agent {
	return &Agent{
		config:    config,
		sessionID: uuid.NewString(),
		buffer:    buffer,
		ingestor:  ingestor,
		spool:     spool,
		logger:    logger,
		clock:     time.Now,
	}
}

// SessionID returns the identifier stamped on every batch this agent
// produces.
func (a *Agent) SessionID() string { return a.sessionID }

// Run starts the upload loop. It blocks until the context is canceled,
// flushing the buffer one final time before returning.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("upload agent started",
		zap.String("session", a.sessionID),
		zap.Duration("upload_interval", a.config.UploadInterval))

	// Retry anything spooled by a previous run before new uploads start.
	a.retrySpool(ctx)

	uploadTicker := time.NewTicker(a.config.UploadInterval)
	spoolTicker := time.NewTicker(a.config.SpoolRetryEvery)
	heartbeatTicker := time.NewTicker(a.config.HeartbeatInterval)

	defer func() {
		uploadTicker.Stop()
		spoolTicker.Stop()
		heartbeatTicker.Stop()
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("upload agent stopping, flushing buffer")
			a.flush()
			return ctx.Err()

		case <-uploadTicker.C:
			a.uploadOnce(ctx)

		case <-spoolTicker.C:
			a.retrySpool(ctx)

		case <-heartbeatTicker.C:
			a.logger.Debug("heartbeat", zap.Int("buffered", a.buffer.Len()))
		}
	}
}

// uploadOnce drains the buffer and submits a single batch.
func (a *Agent) uploadOnce(ctx context.Context) {
	events := a.buffer.DrainAll()
	if len(events) == 0 {
		return
	}

	batch := domain.EventBatch{
		ID:        uuid.NewString(),
		SessionID: a.sessionID,
		CreatedAt: a.clock(),
		Events:    events,
	}

	if err := a.ingestor.Submit(ctx, batch); err != nil {
		a.logger.Warn("batch submit failed, spooling",
			zap.String("batch", batch.ID),
			zap.Int("events", len(batch.Events)),
			zap.Error(err))
		a.park(batch)
		return
	}

	a.logger.Debug("batch submitted",
		zap.String("batch", batch.ID),
		zap.Int("events", len(batch.Events)))
}

// retrySpool resubmits previously parked batches. Batches that fail again
// go straight back into the spool.
func (a *Agent) retrySpool(ctx context.Context) {
	if a.spool == nil {
		return
	}

	batches, err := a.spool.DequeueAll()
	if err != nil {
		a.logger.Warn("spool dequeue failed", zap.Error(err))
		return
	}
	if len(batches) == 0 {
		return
	}

	var resubmitted int
	for _, batch := range batches {
		if err := a.ingestor.Submit(ctx, batch); err != nil {
			a.park(batch)
			continue
		}
		resubmitted++
	}

	a.logger.Info("spool retry completed",
		zap.Int("resubmitted", resubmitted),
		zap.Int("requeued", len(batches)-resubmitted))
}

// flush performs a final synchronous drain on shutdown. A short deadline
// keeps shutdown bounded even when the ingestion API is down.
func (a *Agent) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.uploadOnce(ctx)
}

// park writes a batch to the spool, or drops it with a warning when no
// spool is configured.
func (a *Agent) park(batch domain.EventBatch) {
	if a.spool == nil {
		a.logger.Warn("no spool configured, dropping batch",
			zap.String("batch", batch.ID),
			zap.Int("events", len(batch.Events)))
		return
	}
	if err := a.spool.Enqueue(batch); err != nil {
		a.logger.Error("spool enqueue failed, batch lost",
			zap.String("batch", batch.ID),
			zap.Error(err))
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lendingledger/internal/queue"
	"lendingledger/internal/repository"
)

const (
	defaultScanInterval = 15 * time.Second
	defaultScanLimit    = 100
)

// OutboxScanner periodically republishes due PENDING rows: retries whose
// backoff elapsed and enqueues whose initial broker publish was lost. The
// scanner is what makes the outbox at-least-once; the claim flip on the
// consumer side keeps duplicate publishes harmless.
type OutboxScanner struct {
	outbox    repository.OutboxRepository
	publisher queue.Publisher
	logger    *zap.Logger
	interval  time.Duration
	limit     int
	now       func() time.Time
}

func NewOutboxScanner(
	outbox repository.OutboxRepository,
	publisher queue.Publisher,
	interval time.Duration,
	logger *zap.Logger,
) (*OutboxScanner, error) {
	if outbox == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("queue publisher is required")
	}
	if interval <= 0 {
		interval = defaultScanInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OutboxScanner{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		limit:     defaultScanLimit,
		now:       time.Now,
	}, nil
}

// Start runs the sweep loop until the context is canceled.
func (s *OutboxScanner) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *OutboxScanner) sweep(ctx context.Context) {
	now := s.now().UTC()

	// Rows stranded IN_FLIGHT by a dead worker come back first, so the same
	// sweep can republish them.
	reclaimed, err := s.outbox.ReclaimExpired(ctx, now)
	if err != nil {
		s.logger.Error("lease reclaim failed", zap.Error(err))
	} else if reclaimed > 0 {
		s.logger.Warn("reclaimed expired delivery leases", zap.Int64("count", reclaimed))
	}

	due, err := s.outbox.GetDuePending(ctx, now, s.limit)
	if err != nil {
		s.logger.Error("outbox sweep failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	republished := 0
	for i := range due {
		msg := &due[i]

		err := s.publisher.Publish(ctx, queue.WorkQueueName, queue.ConfirmationMessage{
			MessageID:     msg.ID,
			CorrelationID: msg.CorrelationID,
		})
		if err != nil {
			s.logger.Warn("outbox republish failed",
				zap.String("messageId", msg.ID),
				zap.Error(err),
			)
			continue
		}

		// Push the due time forward so the next sweep does not publish the
		// same row again before a consumer picks it up.
		if err := s.outbox.DeferNextAttempt(ctx, msg.ID, now.Add(republishGrace)); err != nil {
			s.logger.Warn("failed to defer republished message",
				zap.String("messageId", msg.ID),
				zap.Error(err),
			)
		}
		republished++
	}

	if republished > 0 {
		s.logger.Info("outbox sweep republished messages",
			zap.Int("count", republished),
			zap.Int("due", len(due)),
		)
	}
}

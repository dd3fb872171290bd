package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lendingledger/internal/domain"
	"lendingledger/internal/queue"
	"lendingledger/internal/repository"
)

const (
	defaultMaxAttempts = 5

	// republishGrace is how long a freshly enqueued message may sit PENDING
	// before the outbox scanner treats its broker publish as lost and
	// republishes the id.
	republishGrace = 30 * time.Second
)

// NotificationEnqueuer accepts a confirmation request for asynchronous
// delivery. Enqueue returns the durable message id.
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, req domain.NotificationRequest, correlationID string) (string, error)
}

var _ NotificationEnqueuer = (*OutboxEnqueuer)(nil)

// OutboxEnqueuer persists the confirmation as a PENDING outbox row, then
// publishes the row id to the broker on a best-effort basis. The row is the
// source of truth: if the broker is down, the scanner publishes it later, so
// an accepted enqueue is never lost.
type OutboxEnqueuer struct {
	outbox    repository.OutboxRepository
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOutboxEnqueuer(
	outbox repository.OutboxRepository,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*OutboxEnqueuer, error) {
	if outbox == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("queue publisher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OutboxEnqueuer{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (e *OutboxEnqueuer) Enqueue(
	ctx context.Context,
	req domain.NotificationRequest,
	correlationID string,
) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	now := e.now().UTC()
	next := now.Add(republishGrace)

	msg := &domain.QueuedMessage{
		ID:             uuid.NewString(),
		CorrelationID:  correlationID,
		RecipientEmail: req.RecipientEmail,
		BookTitle:      req.BookTitle,
		LoanDate:       req.LoanDate,
		Status:         domain.StatusPending,
		MaxAttempts:    defaultMaxAttempts,
		EnqueuedAt:     now,
		NextAttemptAt:  &next,
	}

	if err := e.outbox.Create(ctx, msg); err != nil {
		return "", err
	}

	// Broker publish failures are not enqueue failures. The scanner sweeps
	// PENDING rows whose grace elapsed and republishes them.
	err := e.publisher.Publish(ctx, queue.WorkQueueName, queue.ConfirmationMessage{
		MessageID:     msg.ID,
		CorrelationID: msg.CorrelationID,
	})
	if err != nil {
		e.logger.Warn("broker publish failed, message deferred to outbox scanner",
			zap.String("messageId", msg.ID),
			zap.String("correlationId", msg.CorrelationID),
			zap.Error(err),
		)
	}

	return msg.ID, nil
}

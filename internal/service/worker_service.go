package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lendingledger/internal/domain"
	"lendingledger/internal/mailer"
	"lendingledger/internal/observability"
	"lendingledger/internal/queue"
	"lendingledger/internal/ratelimit"
	"lendingledger/internal/repository"
)

const (
	mailRateKey = "email"

	baseRetryDelay       = 1 * time.Second
	maxRetryDelay        = 60 * time.Second
	maxRetryJitterMillis = 250

	// leaseDuration bounds how long a claimed row stays IN_FLIGHT before the
	// scanner may hand it to another consumer. Must comfortably exceed the
	// mail call timeout plus limiter wait.
	leaseDuration = 2 * time.Minute
)

// WorkerService consumes confirmation ids from the broker, claims the backing
// outbox row, and drives each delivery to a terminal state. Transient mail
// failures go back to PENDING with exponential backoff; permanent failures and
// exhausted retries end in FAILED. A failed delivery never touches the loan.
type WorkerService struct {
	outbox      repository.OutboxRepository
	attempts    repository.AttemptRepository
	consumer    queue.Consumer
	mail        mailer.Mailer
	limiter     ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
	randIntn    func(n int) int
}

func NewWorkerService(
	outbox repository.OutboxRepository,
	attempts repository.AttemptRepository,
	consumer queue.Consumer,
	mail mailer.Mailer,
	limiter ratelimit.RateLimiter,
	concurrency int,
	logger *zap.Logger,
) (*WorkerService, error) {
	if outbox == nil {
		return nil, fmt.Errorf("outbox repository is required")
	}
	if attempts == nil {
		return nil, fmt.Errorf("attempt repository is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("queue consumer is required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WorkerService{
		outbox:      outbox,
		attempts:    attempts,
		consumer:    consumer,
		mail:        mail,
		limiter:     limiter,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
		randIntn:    rand.Intn,
	}, nil
}

func (s *WorkerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start runs the configured number of consumers until the context is
// canceled.
func (s *WorkerService) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		g.Go(func() error {
			return s.consumer.Consume(gctx, queue.WorkQueueName, s.processMessage)
		})
	}
	return g.Wait()
}

// processMessage handles one broker delivery. A nil return acks the message;
// broker redeliveries of the same id are harmless because the claim flip
// hands each row to at most one consumer.
func (s *WorkerService) processMessage(ctx context.Context, msg queue.ConfirmationMessage) error {
	ctx = observability.WithCorrelationID(ctx, msg.CorrelationID)
	logger := observability.WithContextLogger(s.logger, ctx).With(zap.String("messageId", msg.MessageID))

	message, err := s.outbox.ClaimForDelivery(ctx, msg.MessageID, s.now().UTC().Add(leaseDuration))
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("dropping message with no outbox row")
		return nil
	}
	if err != nil {
		return err
	}
	if message == nil {
		// Terminal or already claimed elsewhere.
		return nil
	}

	s.metrics.IncWorkerInFlight()
	defer s.metrics.DecWorkerInFlight()

	if err := s.limiter.Wait(ctx, mailRateKey); err != nil {
		s.releaseClaim(ctx, logger, message.ID, err)
		return nil
	}

	rendered := Render(message.Request())
	attemptNumber := message.AttemptCount + 1

	sendStart := time.Now()
	receipt, sendErr := s.mail.Send(ctx, mailer.Email{
		To:      message.RecipientEmail,
		Subject: rendered.Subject,
		Body:    rendered.Body,
	})
	s.metrics.ObserveSendDuration(time.Since(sendStart))

	if sendErr != nil && errors.Is(sendErr, context.Canceled) {
		// Shutdown interrupted the request mid-flight; the mail API never
		// rejected the message, so the row goes back for redelivery after
		// restart and no attempt is counted.
		s.releaseClaim(ctx, logger, message.ID, sendErr)
		return nil
	}

	s.recordAttempt(ctx, logger, message.ID, attemptNumber, receipt, sendErr)

	if sendErr == nil {
		if err := s.outbox.MarkDelivered(ctx, message.ID, attemptNumber); err != nil {
			logger.Error("delivered but status update failed", zap.Error(err))
			return nil
		}
		s.metrics.IncNotificationDelivered()
		logger.Info("confirmation delivered",
			zap.Int("attempt", attemptNumber),
			zap.String("recipient", message.RecipientEmail),
		)
		return nil
	}

	maxAttempts := message.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	if mailer.IsTransient(sendErr) && attemptNumber < maxAttempts {
		delay := s.computeRetryDelay(attemptNumber)
		nextAttemptAt := s.now().UTC().Add(delay)
		if err := s.outbox.ScheduleRetry(ctx, message.ID, nextAttemptAt, sendErr.Error()); err != nil {
			logger.Error("failed to schedule retry", zap.Error(err))
			return nil
		}
		s.metrics.IncRetryScheduled()
		logger.Warn("transient delivery failure, retry scheduled",
			zap.Int("attempt", attemptNumber),
			zap.Duration("delay", delay),
			zap.Error(sendErr),
		)
		return nil
	}

	reason := "permanent_error"
	if mailer.IsTransient(sendErr) {
		reason = "retry_exhausted"
	}

	if err := s.outbox.MarkFailed(ctx, message.ID, attemptNumber, sendErr.Error()); err != nil {
		logger.Error("failed to mark message failed", zap.Error(err))
		return nil
	}
	s.metrics.IncNotificationFailed(reason)
	logger.Error("confirmation permanently failed",
		zap.Int("attempt", attemptNumber),
		zap.String("reason", reason),
		zap.String("recipient", message.RecipientEmail),
		zap.Error(sendErr),
	)
	return nil
}

// releaseClaim returns a claimed row to PENDING without burning an attempt,
// used when processing is interrupted before the mail API answered (shutdown,
// limiter error, canceled send).
func (s *WorkerService) releaseClaim(ctx context.Context, logger *zap.Logger, id string, cause error) {
	releaseCtx := context.WithoutCancel(ctx)
	if err := s.outbox.Release(releaseCtx, id, s.now().UTC(), cause.Error()); err != nil {
		logger.Error("failed to release claimed message", zap.Error(err))
		return
	}
	logger.Warn("claim released without an attempt", zap.Error(cause))
}

func (s *WorkerService) recordAttempt(
	ctx context.Context,
	logger *zap.Logger,
	messageID string,
	attemptNumber int,
	receipt *mailer.SendReceipt,
	sendErr error,
) {
	attempt := &domain.DeliveryAttempt{
		ID:            uuid.NewString(),
		MessageID:     messageID,
		AttemptNumber: attemptNumber,
	}

	if receipt != nil {
		code := receipt.StatusCode
		attempt.StatusCode = &code
		if receipt.Body != "" {
			body := receipt.Body
			attempt.ResponseBody = &body
		}
	}
	if sendErr != nil {
		errText := sendErr.Error()
		attempt.Error = &errText

		var sendError *mailer.SendError
		if errors.As(sendErr, &sendError) && sendError.StatusCode > 0 {
			code := sendError.StatusCode
			attempt.StatusCode = &code
		}
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		logger.Warn("failed to record delivery attempt", zap.Error(err))
	}
}

// computeRetryDelay doubles the delay per attempt, capped at maxRetryDelay,
// with a small jitter so synchronized failures do not retry in lockstep.
func (s *WorkerService) computeRetryDelay(attemptNumber int) time.Duration {
	if attemptNumber < 1 {
		attemptNumber = 1
	}

	delay := maxRetryDelay
	if attemptNumber <= 30 {
		delay = baseRetryDelay * time.Duration(1<<(attemptNumber-1))
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}

	jitter := time.Duration(s.randIntn(maxRetryJitterMillis)) * time.Millisecond
	return delay + jitter
}

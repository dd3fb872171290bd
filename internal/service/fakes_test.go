package service

import (
	"context"
	"time"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
	"lendingledger/internal/mailer"
	"lendingledger/internal/queue"
)

type fakeOutboxRepo struct {
	createFn           func(ctx context.Context, m *domain.QueuedMessage) error
	getByIDFn          func(ctx context.Context, id string) (*domain.QueuedMessage, error)
	claimForDeliveryFn func(ctx context.Context, id string, leaseUntil time.Time) (*domain.QueuedMessage, error)
	markDeliveredFn    func(ctx context.Context, id string, attemptCount int) error
	markFailedFn       func(ctx context.Context, id string, attemptCount int, lastError string) error
	scheduleRetryFn    func(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error
	releaseFn          func(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error
	getDuePendingFn    func(ctx context.Context, now time.Time, limit int) ([]domain.QueuedMessage, error)
	deferNextAttemptFn func(ctx context.Context, id string, nextAttemptAt time.Time) error
	reclaimExpiredFn   func(ctx context.Context, now time.Time) (int64, error)
}

func (f *fakeOutboxRepo) Create(ctx context.Context, m *domain.QueuedMessage) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, m)
}

func (f *fakeOutboxRepo) GetByID(ctx context.Context, id string) (*domain.QueuedMessage, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeOutboxRepo) ClaimForDelivery(ctx context.Context, id string, leaseUntil time.Time) (*domain.QueuedMessage, error) {
	return f.claimForDeliveryFn(ctx, id, leaseUntil)
}

func (f *fakeOutboxRepo) MarkDelivered(ctx context.Context, id string, attemptCount int) error {
	return f.markDeliveredFn(ctx, id, attemptCount)
}

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, attemptCount int, lastError string) error {
	return f.markFailedFn(ctx, id, attemptCount, lastError)
}

func (f *fakeOutboxRepo) ScheduleRetry(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error {
	return f.scheduleRetryFn(ctx, id, nextAttemptAt, lastError)
}

func (f *fakeOutboxRepo) Release(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error {
	if f.releaseFn == nil {
		return nil
	}
	return f.releaseFn(ctx, id, nextAttemptAt, lastError)
}

func (f *fakeOutboxRepo) GetDuePending(ctx context.Context, now time.Time, limit int) ([]domain.QueuedMessage, error) {
	return f.getDuePendingFn(ctx, now, limit)
}

func (f *fakeOutboxRepo) DeferNextAttempt(ctx context.Context, id string, nextAttemptAt time.Time) error {
	if f.deferNextAttemptFn == nil {
		return nil
	}
	return f.deferNextAttemptFn(ctx, id, nextAttemptAt)
}

func (f *fakeOutboxRepo) ReclaimExpired(ctx context.Context, now time.Time) (int64, error) {
	if f.reclaimExpiredFn == nil {
		return 0, nil
	}
	return f.reclaimExpiredFn(ctx, now)
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, msg queue.ConfirmationMessage) error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg queue.ConfirmationMessage) error {
	if f.publishFn == nil {
		return nil
	}
	return f.publishFn(ctx, queueName, msg)
}

func (f *fakePublisher) Close() error { return nil }

type fakeBorrowRepo struct {
	createFn    func(ctx context.Context, b *domain.Borrow) error
	getByIDFn   func(ctx context.Context, id string) (*domain.Borrow, error)
	updateFn    func(ctx context.Context, b *domain.Borrow) error
	deleteFn    func(ctx context.Context, id string) error
	getViewFn   func(ctx context.Context, id string) (*domain.BorrowView, error)
	listViewsFn func(ctx context.Context) ([]domain.BorrowView, error)
}

func (f *fakeBorrowRepo) Create(ctx context.Context, b *domain.Borrow) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, b)
}

func (f *fakeBorrowRepo) GetByID(ctx context.Context, id string) (*domain.Borrow, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeBorrowRepo) Update(ctx context.Context, b *domain.Borrow) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, b)
}

func (f *fakeBorrowRepo) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeBorrowRepo) GetView(ctx context.Context, id string) (*domain.BorrowView, error) {
	return f.getViewFn(ctx, id)
}

func (f *fakeBorrowRepo) ListViews(ctx context.Context) ([]domain.BorrowView, error) {
	return f.listViewsFn(ctx)
}

type fakeCatalog struct {
	resolveBookFn func(ctx context.Context, id string) (*catalog.BookRef, error)
	resolveUserFn func(ctx context.Context, id string) (*catalog.UserRef, error)
}

func (f *fakeCatalog) ResolveBook(ctx context.Context, id string) (*catalog.BookRef, error) {
	if f.resolveBookFn == nil {
		return &catalog.BookRef{ID: id, Title: "Some Book"}, nil
	}
	return f.resolveBookFn(ctx, id)
}

func (f *fakeCatalog) ResolveUser(ctx context.Context, id string) (*catalog.UserRef, error) {
	if f.resolveUserFn == nil {
		return &catalog.UserRef{ID: id, Name: "Some User", Email: "user@example.com"}, nil
	}
	return f.resolveUserFn(ctx, id)
}

type fakeEnqueuer struct {
	enqueueFn func(ctx context.Context, req domain.NotificationRequest, correlationID string) (string, error)
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, req domain.NotificationRequest, correlationID string) (string, error) {
	if f.enqueueFn == nil {
		return "msg-1", nil
	}
	return f.enqueueFn(ctx, req, correlationID)
}

type fakeMailer struct {
	sendFn func(ctx context.Context, email mailer.Email) (*mailer.SendReceipt, error)
}

func (f *fakeMailer) Send(ctx context.Context, email mailer.Email) (*mailer.SendReceipt, error) {
	return f.sendFn(ctx, email)
}

type fakeAttemptRepo struct {
	createFn         func(ctx context.Context, a *domain.DeliveryAttempt) error
	getByMessageIDFn func(ctx context.Context, messageID string) ([]domain.DeliveryAttempt, error)
}

func (f *fakeAttemptRepo) Create(ctx context.Context, a *domain.DeliveryAttempt) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, a)
}

func (f *fakeAttemptRepo) GetByMessageID(ctx context.Context, messageID string) ([]domain.DeliveryAttempt, error) {
	if f.getByMessageIDFn == nil {
		return nil, nil
	}
	return f.getByMessageIDFn(ctx, messageID)
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, key string) (bool, error)
	waitFn  func(ctx context.Context, key string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if f.allowFn == nil {
		return true, nil
	}
	return f.allowFn(ctx, key)
}

func (f *fakeRateLimiter) Wait(ctx context.Context, key string) error {
	if f.waitFn == nil {
		return nil
	}
	return f.waitFn(ctx, key)
}

type fakeConsumer struct {
	consumeFn func(ctx context.Context, queueName string, handler queue.MessageHandler) error
}

func (f *fakeConsumer) Consume(ctx context.Context, queueName string, handler queue.MessageHandler) error {
	if f.consumeFn == nil {
		<-ctx.Done()
		return nil
	}
	return f.consumeFn(ctx, queueName, handler)
}

func (f *fakeConsumer) Close() error { return nil }

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lendingledger/internal/domain"
)

// OutboxRepository owns the durable notifications queue. A row survives worker
// restarts; the broker only carries row ids, never the payload of record.
type OutboxRepository interface {
	Create(ctx context.Context, m *domain.QueuedMessage) error
	GetByID(ctx context.Context, id string) (*domain.QueuedMessage, error)
	ClaimForDelivery(ctx context.Context, id string, leaseUntil time.Time) (*domain.QueuedMessage, error)
	MarkDelivered(ctx context.Context, id string, attemptCount int) error
	MarkFailed(ctx context.Context, id string, attemptCount int, lastError string) error
	ScheduleRetry(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error
	Release(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error
	GetDuePending(ctx context.Context, now time.Time, limit int) ([]domain.QueuedMessage, error)
	DeferNextAttempt(ctx context.Context, id string, nextAttemptAt time.Time) error
	ReclaimExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormOutboxRepo struct {
	db *gorm.DB
}

func NewGormOutboxRepo(db *gorm.DB) *GormOutboxRepo {
	return &GormOutboxRepo{db: db}
}

func (r *GormOutboxRepo) Create(ctx context.Context, m *domain.QueuedMessage) error {
	model := messageModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: create queued message: %v", domain.ErrPersistence, err)
	}
	if m != nil {
		*m = *messageModelToDomain(model)
	}
	return nil
}

func (r *GormOutboxRepo) GetByID(ctx context.Context, id string) (*domain.QueuedMessage, error) {
	var model QueuedMessageModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get queued message: %v", domain.ErrPersistence, err)
	}
	return messageModelToDomain(&model), nil
}

// ClaimForDelivery takes the exclusive lease on a message. The row lock plus
// the PENDING->IN_FLIGHT flip guarantee a message is handed to exactly one
// in-flight consumer; terminal or already-claimed rows return nil. The lease
// expires at leaseUntil so a crashed claimant cannot strand the row.
func (r *GormOutboxRepo) ClaimForDelivery(ctx context.Context, id string, leaseUntil time.Time) (*domain.QueuedMessage, error) {
	var claimed *domain.QueuedMessage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model QueuedMessageModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&model, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		if model.Status != domain.StatusPending {
			return nil
		}

		if err := tx.
			Model(&model).
			Updates(map[string]any{
				"status":           domain.StatusInFlight,
				"lease_expires_at": leaseUntil,
			}).Error; err != nil {
			return err
		}

		model.Status = domain.StatusInFlight
		model.LeaseExpiresAt = &leaseUntil
		claimed = messageModelToDomain(&model)
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: claim queued message: %v", domain.ErrPersistence, err)
	}

	return claimed, nil
}

func (r *GormOutboxRepo) MarkDelivered(ctx context.Context, id string, attemptCount int) error {
	return r.updateTerminal(ctx, id, domain.StatusDelivered, attemptCount, nil)
}

func (r *GormOutboxRepo) MarkFailed(ctx context.Context, id string, attemptCount int, lastError string) error {
	return r.updateTerminal(ctx, id, domain.StatusFailed, attemptCount, &lastError)
}

func (r *GormOutboxRepo) updateTerminal(
	ctx context.Context,
	id string,
	status domain.DeliveryStatus,
	attemptCount int,
	lastError *string,
) error {
	result := r.db.WithContext(ctx).
		Model(&QueuedMessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           status,
			"attempt_count":    attemptCount,
			"next_attempt_at":  nil,
			"lease_expires_at": nil,
			"last_error":       lastError,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: update queued message: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ScheduleRetry returns an in-flight message to PENDING with a backoff delay,
// counting the attempt that just failed.
func (r *GormOutboxRepo) ScheduleRetry(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error {
	result := r.db.WithContext(ctx).
		Model(&QueuedMessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           domain.StatusPending,
			"next_attempt_at":  nextAttemptAt,
			"lease_expires_at": nil,
			"last_error":       lastError,
			"attempt_count":    gorm.Expr("attempt_count + 1"),
		})
	if result.Error != nil {
		return fmt.Errorf("%w: schedule retry: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Release returns a claimed message to PENDING without counting an attempt,
// for claims given up before the mail call produced an answer.
func (r *GormOutboxRepo) Release(ctx context.Context, id string, nextAttemptAt time.Time, lastError string) error {
	result := r.db.WithContext(ctx).
		Model(&QueuedMessageModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           domain.StatusPending,
			"next_attempt_at":  nextAttemptAt,
			"lease_expires_at": nil,
			"last_error":       lastError,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: release claimed message: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDuePending returns PENDING messages whose next attempt is due: retries
// whose backoff elapsed and enqueues whose initial publish was lost.
func (r *GormOutboxRepo) GetDuePending(ctx context.Context, now time.Time, limit int) ([]domain.QueuedMessage, error) {
	var models []QueuedMessageModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.StatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("%w: fetch due messages: %v", domain.ErrPersistence, err)
	}

	messages := make([]domain.QueuedMessage, 0, len(models))
	for i := range models {
		messages = append(messages, *messageModelToDomain(&models[i]))
	}

	return messages, nil
}

// DeferNextAttempt pushes a message's due time forward after the scanner
// republished it, so the next sweep does not flood the broker with duplicates.
func (r *GormOutboxRepo) DeferNextAttempt(ctx context.Context, id string, nextAttemptAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&QueuedMessageModel{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Update("next_attempt_at", nextAttemptAt)
	if result.Error != nil {
		return fmt.Errorf("%w: defer next attempt: %v", domain.ErrPersistence, result.Error)
	}
	return nil
}

// ReclaimExpired flips IN_FLIGHT rows whose lease lapsed back to PENDING. A
// lapsed lease means the claiming worker died before reaching a terminal
// update; the reclaimed rows are immediately due for republish.
func (r *GormOutboxRepo) ReclaimExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&QueuedMessageModel{}).
		Where("status = ? AND lease_expires_at <= ?", domain.StatusInFlight, now).
		Updates(map[string]any{
			"status":           domain.StatusPending,
			"next_attempt_at":  now,
			"lease_expires_at": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: reclaim expired leases: %v", domain.ErrPersistence, result.Error)
	}
	return result.RowsAffected, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
	"lendingledger/internal/observability"
	"lendingledger/internal/repository"
)

// CreateBorrowInput carries the fields needed to record a new loan.
type CreateBorrowInput struct {
	UserID     string
	BookID     string
	BorrowedAt time.Time
}

// UpdateBorrowInput corrects an existing loan record. Nil fields are left
// unchanged. There is no way to clear returned_at: a returned loan stays
// returned, though the return date itself may be corrected.
type UpdateBorrowInput struct {
	UserID     *string
	BookID     *string
	BorrowedAt *time.Time
	ReturnedAt *time.Time
}

// LedgerService owns the borrow lifecycle. Creating a loan also snapshots the
// recipient and title into a confirmation message, enqueued only after the
// borrow row is committed.
type LedgerService struct {
	borrows  repository.BorrowRepository
	lookup   catalog.Lookup
	enqueuer NotificationEnqueuer
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewLedgerService(
	borrows repository.BorrowRepository,
	lookup catalog.Lookup,
	enqueuer NotificationEnqueuer,
	logger *zap.Logger,
) (*LedgerService, error) {
	if borrows == nil {
		return nil, fmt.Errorf("borrow repository is required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("catalog lookup is required")
	}
	if enqueuer == nil {
		return nil, fmt.Errorf("notification enqueuer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LedgerService{
		borrows:  borrows,
		lookup:   lookup,
		enqueuer: enqueuer,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *LedgerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// CreateBorrow records a loan and enqueues the borrow confirmation. The
// confirmation payload is snapshotted from the catalog at this moment; later
// catalog edits do not change what the email will say. A failed enqueue does
// not unwind the committed loan.
func (s *LedgerService) CreateBorrow(ctx context.Context, in CreateBorrowInput) (*domain.Borrow, error) {
	borrow := &domain.Borrow{
		ID:         uuid.NewString(),
		UserID:     strings.TrimSpace(in.UserID),
		BookID:     strings.TrimSpace(in.BookID),
		BorrowedAt: in.BorrowedAt,
	}
	if err := borrow.Validate(s.now()); err != nil {
		return nil, err
	}

	user, err := s.lookup.ResolveUser(ctx, borrow.UserID)
	if err != nil {
		return nil, err
	}
	book, err := s.lookup.ResolveBook(ctx, borrow.BookID)
	if err != nil {
		return nil, err
	}

	if err := s.borrows.Create(ctx, borrow); err != nil {
		return nil, err
	}
	s.metrics.IncBorrowCreated()

	req := domain.NotificationRequest{
		RecipientEmail: user.Email,
		BookTitle:      book.Title,
		LoanDate:       borrow.BorrowedAt,
	}
	messageID, err := s.enqueuer.Enqueue(ctx, req, borrow.ID)
	if err != nil {
		s.logger.Error("borrow confirmation could not be enqueued",
			zap.String("borrowId", borrow.ID),
			zap.String("recipient", user.Email),
			zap.Error(err),
		)
		return borrow, nil
	}

	s.logger.Info("borrow recorded",
		zap.String("borrowId", borrow.ID),
		zap.String("bookId", borrow.BookID),
		zap.String("userId", borrow.UserID),
		zap.String("messageId", messageID),
	)

	return borrow, nil
}

// UpdateBorrow applies a correction to a loan record. Changed references are
// re-validated against the catalog. No confirmation is re-sent.
func (s *LedgerService) UpdateBorrow(ctx context.Context, id string, in UpdateBorrowInput) (*domain.Borrow, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: borrow id is required", domain.ErrInvalidInput)
	}

	borrow, err := s.borrows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.UserID != nil {
		userID := strings.TrimSpace(*in.UserID)
		if _, err := s.lookup.ResolveUser(ctx, userID); err != nil {
			return nil, err
		}
		borrow.UserID = userID
	}
	if in.BookID != nil {
		bookID := strings.TrimSpace(*in.BookID)
		if _, err := s.lookup.ResolveBook(ctx, bookID); err != nil {
			return nil, err
		}
		borrow.BookID = bookID
	}
	if in.BorrowedAt != nil {
		borrow.BorrowedAt = *in.BorrowedAt
	}
	if in.ReturnedAt != nil {
		if borrow.ReturnedAt == nil {
			if err := borrow.MarkReturned(*in.ReturnedAt); err != nil {
				return nil, err
			}
		} else {
			// Correcting the recorded return date, not a state change.
			at := *in.ReturnedAt
			borrow.ReturnedAt = &at
		}
	}

	if err := borrow.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.borrows.Update(ctx, borrow); err != nil {
		return nil, err
	}

	return borrow, nil
}

// GetBorrow returns the loan joined with the current catalog title and user
// name.
func (s *LedgerService) GetBorrow(ctx context.Context, id string) (*domain.BorrowView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: borrow id is required", domain.ErrInvalidInput)
	}
	return s.borrows.GetView(ctx, id)
}

// ListBorrows returns all loans in stable creation order.
func (s *LedgerService) ListBorrows(ctx context.Context) ([]domain.BorrowView, error) {
	return s.borrows.ListViews(ctx)
}

// DeleteBorrow removes a loan record. Already-enqueued confirmations are left
// alone; a message in flight still delivers.
func (s *LedgerService) DeleteBorrow(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: borrow id is required", domain.ErrInvalidInput)
	}
	return s.borrows.Delete(ctx, id)
}

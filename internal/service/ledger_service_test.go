package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
)

func newLedgerForTest(
	t *testing.T,
	borrows *fakeBorrowRepo,
	lookup *fakeCatalog,
	enqueuer *fakeEnqueuer,
) *LedgerService {
	t.Helper()

	svc, err := NewLedgerService(borrows, lookup, enqueuer, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLedgerService() error = %v", err)
	}
	return svc
}

func TestCreateBorrowEnqueuesSnapshot(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	borrowedAt := now.Add(-time.Hour)

	var created *domain.Borrow
	var gotReq *domain.NotificationRequest
	var gotCorrelation string

	borrows := &fakeBorrowRepo{
		createFn: func(_ context.Context, b *domain.Borrow) error {
			copied := *b
			created = &copied
			return nil
		},
	}
	lookup := &fakeCatalog{
		resolveBookFn: func(_ context.Context, id string) (*catalog.BookRef, error) {
			return &catalog.BookRef{ID: id, Title: "The Left Hand of Darkness"}, nil
		},
		resolveUserFn: func(_ context.Context, id string) (*catalog.UserRef, error) {
			return &catalog.UserRef{ID: id, Name: "Ada", Email: "ada@example.com"}, nil
		},
	}
	enqueuer := &fakeEnqueuer{
		enqueueFn: func(_ context.Context, req domain.NotificationRequest, correlationID string) (string, error) {
			gotReq = &req
			gotCorrelation = correlationID
			return "msg-1", nil
		},
	}

	svc := newLedgerForTest(t, borrows, lookup, enqueuer)
	svc.now = func() time.Time { return now }

	borrow, err := svc.CreateBorrow(context.Background(), CreateBorrowInput{
		UserID:     "user-1",
		BookID:     "book-1",
		BorrowedAt: borrowedAt,
	})
	if err != nil {
		t.Fatalf("CreateBorrow() error = %v", err)
	}

	if created == nil {
		t.Fatal("borrow was not persisted")
	}
	if borrow.ID == "" {
		t.Fatal("borrow id was not assigned")
	}
	if borrow.State() != domain.LoanStateOnLoan {
		t.Fatalf("state = %s, want ON_LOAN", borrow.State())
	}

	if gotReq == nil {
		t.Fatal("confirmation was not enqueued")
	}
	if gotReq.RecipientEmail != "ada@example.com" {
		t.Fatalf("recipient = %q, want %q", gotReq.RecipientEmail, "ada@example.com")
	}
	if gotReq.BookTitle != "The Left Hand of Darkness" {
		t.Fatalf("title = %q, want %q", gotReq.BookTitle, "The Left Hand of Darkness")
	}
	if !gotReq.LoanDate.Equal(borrowedAt) {
		t.Fatalf("loan date = %v, want %v", gotReq.LoanDate, borrowedAt)
	}
	if gotCorrelation != borrow.ID {
		t.Fatalf("correlation id = %q, want borrow id %q", gotCorrelation, borrow.ID)
	}
}

func TestCreateBorrowUnknownReferences(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		lookup *fakeCatalog
	}{
		{
			name: "unknown user",
			lookup: &fakeCatalog{
				resolveUserFn: func(context.Context, string) (*catalog.UserRef, error) {
					return nil, domain.ErrNotFound
				},
			},
		},
		{
			name: "unknown book",
			lookup: &fakeCatalog{
				resolveBookFn: func(context.Context, string) (*catalog.BookRef, error) {
					return nil, domain.ErrNotFound
				},
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			createCalled := false
			enqueueCalled := false
			borrows := &fakeBorrowRepo{
				createFn: func(context.Context, *domain.Borrow) error {
					createCalled = true
					return nil
				},
			}
			enqueuer := &fakeEnqueuer{
				enqueueFn: func(context.Context, domain.NotificationRequest, string) (string, error) {
					enqueueCalled = true
					return "", nil
				},
			}

			svc := newLedgerForTest(t, borrows, tc.lookup, enqueuer)

			_, err := svc.CreateBorrow(context.Background(), CreateBorrowInput{
				UserID:     "user-1",
				BookID:     "book-1",
				BorrowedAt: time.Now().Add(-time.Hour),
			})
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("CreateBorrow() error = %v, want ErrNotFound", err)
			}
			if createCalled {
				t.Fatal("borrow must not be persisted for unknown references")
			}
			if enqueueCalled {
				t.Fatal("nothing must be enqueued for unknown references")
			}
		})
	}
}

func TestCreateBorrowInvalidInput(t *testing.T) {
	t.Parallel()

	svc := newLedgerForTest(t, &fakeBorrowRepo{}, &fakeCatalog{}, &fakeEnqueuer{})

	testCases := []struct {
		name string
		in   CreateBorrowInput
	}{
		{name: "missing user id", in: CreateBorrowInput{BookID: "b", BorrowedAt: time.Now().Add(-time.Hour)}},
		{name: "missing book id", in: CreateBorrowInput{UserID: "u", BorrowedAt: time.Now().Add(-time.Hour)}},
		{name: "missing borrowed at", in: CreateBorrowInput{UserID: "u", BookID: "b"}},
		{name: "future borrowed at", in: CreateBorrowInput{UserID: "u", BookID: "b", BorrowedAt: time.Now().Add(time.Hour)}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.CreateBorrow(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("CreateBorrow() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateBorrowEnqueueFailureDoesNotUnwindLoan(t *testing.T) {
	t.Parallel()

	borrows := &fakeBorrowRepo{}
	enqueuer := &fakeEnqueuer{
		enqueueFn: func(context.Context, domain.NotificationRequest, string) (string, error) {
			return "", domain.ErrPersistence
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, enqueuer)

	borrow, err := svc.CreateBorrow(context.Background(), CreateBorrowInput{
		UserID:     "user-1",
		BookID:     "book-1",
		BorrowedAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateBorrow() error = %v, want nil: the loan is already committed", err)
	}
	if borrow == nil {
		t.Fatal("expected committed borrow despite enqueue failure")
	}
}

func TestUpdateBorrowMarksReturned(t *testing.T) {
	t.Parallel()

	borrowedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	returnedAt := borrowedAt.Add(48 * time.Hour)

	var updated *domain.Borrow
	borrows := &fakeBorrowRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.Borrow, error) {
			return &domain.Borrow{ID: id, UserID: "user-1", BookID: "book-1", BorrowedAt: borrowedAt}, nil
		},
		updateFn: func(_ context.Context, b *domain.Borrow) error {
			copied := *b
			updated = &copied
			return nil
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, &fakeEnqueuer{})

	borrow, err := svc.UpdateBorrow(context.Background(), "borrow-1", UpdateBorrowInput{
		ReturnedAt: &returnedAt,
	})
	if err != nil {
		t.Fatalf("UpdateBorrow() error = %v", err)
	}
	if borrow.State() != domain.LoanStateReturned {
		t.Fatalf("state = %s, want RETURNED", borrow.State())
	}
	if updated == nil || updated.ReturnedAt == nil || !updated.ReturnedAt.Equal(returnedAt) {
		t.Fatalf("persisted returned_at = %+v, want %v", updated, returnedAt)
	}
}

func TestUpdateBorrowRejectsReturnBeforeBorrow(t *testing.T) {
	t.Parallel()

	borrowedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	returnedAt := borrowedAt.Add(-time.Hour)

	borrows := &fakeBorrowRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.Borrow, error) {
			return &domain.Borrow{ID: id, UserID: "user-1", BookID: "book-1", BorrowedAt: borrowedAt}, nil
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, &fakeEnqueuer{})

	_, err := svc.UpdateBorrow(context.Background(), "borrow-1", UpdateBorrowInput{
		ReturnedAt: &returnedAt,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("UpdateBorrow() error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateBorrowCorrectsReturnDate(t *testing.T) {
	t.Parallel()

	borrowedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	oldReturn := borrowedAt.Add(24 * time.Hour)
	newReturn := borrowedAt.Add(72 * time.Hour)

	borrows := &fakeBorrowRepo{
		getByIDFn: func(_ context.Context, id string) (*domain.Borrow, error) {
			return &domain.Borrow{
				ID: id, UserID: "user-1", BookID: "book-1",
				BorrowedAt: borrowedAt, ReturnedAt: &oldReturn,
			}, nil
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, &fakeEnqueuer{})

	borrow, err := svc.UpdateBorrow(context.Background(), "borrow-1", UpdateBorrowInput{
		ReturnedAt: &newReturn,
	})
	if err != nil {
		t.Fatalf("UpdateBorrow() error = %v", err)
	}
	if borrow.ReturnedAt == nil || !borrow.ReturnedAt.Equal(newReturn) {
		t.Fatalf("returned_at = %v, want %v", borrow.ReturnedAt, newReturn)
	}
}

func TestUpdateBorrowUnknownBorrow(t *testing.T) {
	t.Parallel()

	borrows := &fakeBorrowRepo{
		getByIDFn: func(context.Context, string) (*domain.Borrow, error) {
			return nil, domain.ErrNotFound
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, &fakeEnqueuer{})

	_, err := svc.UpdateBorrow(context.Background(), "missing", UpdateBorrowInput{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateBorrow() error = %v, want ErrNotFound", err)
	}
}

func TestGetBorrowReturnsJoinedView(t *testing.T) {
	t.Parallel()

	borrows := &fakeBorrowRepo{
		getViewFn: func(_ context.Context, id string) (*domain.BorrowView, error) {
			return &domain.BorrowView{ID: id, Book: "Dune", User: "Ada"}, nil
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, &fakeEnqueuer{})

	view, err := svc.GetBorrow(context.Background(), "borrow-1")
	if err != nil {
		t.Fatalf("GetBorrow() error = %v", err)
	}
	if view.Book != "Dune" || view.User != "Ada" {
		t.Fatalf("view = %+v, want joined book and user", view)
	}
}

func TestDeleteBorrowUnknown(t *testing.T) {
	t.Parallel()

	borrows := &fakeBorrowRepo{
		deleteFn: func(context.Context, string) error {
			return domain.ErrNotFound
		},
	}

	svc := newLedgerForTest(t, borrows, &fakeCatalog{}, &fakeEnqueuer{})

	if err := svc.DeleteBorrow(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("DeleteBorrow() error = %v, want ErrNotFound", err)
	}
}

package domain

import (
	"fmt"
	"time"
)

// LoanState represents the lifecycle state of a borrow record.
type LoanState string

const (
	LoanStateOnLoan   LoanState = "ON_LOAN"
	LoanStateReturned LoanState = "RETURNED"
)

func (s LoanState) String() string { return string(s) }

// Borrow is one loan transaction: a book lent to a user.
type Borrow struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	UserID     string `gorm:"type:uuid;not null"`
	BookID     string `gorm:"type:uuid;not null"`
	BorrowedAt time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// State derives the loan state from the returned_at column.
func (b *Borrow) State() LoanState {
	if b.ReturnedAt != nil {
		return LoanStateReturned
	}
	return LoanStateOnLoan
}

func (b *Borrow) Validate(now time.Time) error {
	if b.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if b.BookID == "" {
		return fmt.Errorf("%w: book id is required", ErrInvalidInput)
	}
	if b.BorrowedAt.IsZero() {
		return fmt.Errorf("%w: borrowed_at is required", ErrInvalidInput)
	}
	if b.BorrowedAt.After(now) {
		return fmt.Errorf("%w: borrowed_at must not be in the future", ErrInvalidInput)
	}
	if b.ReturnedAt != nil && b.ReturnedAt.Before(b.BorrowedAt) {
		return fmt.Errorf("%w: returned_at must not precede borrowed_at", ErrInvalidInput)
	}
	return nil
}

// MarkReturned moves the borrow from on-loan to returned. The transition is
// one-directional: a returned borrow stays returned.
func (b *Borrow) MarkReturned(at time.Time) error {
	if b.ReturnedAt != nil {
		return fmt.Errorf("%w: borrow is already returned", ErrConflict)
	}
	if at.Before(b.BorrowedAt) {
		return fmt.Errorf("%w: returned_at must not precede borrowed_at", ErrInvalidInput)
	}
	b.ReturnedAt = &at
	return nil
}

// BorrowView is a borrow joined with the current catalog title and user name.
// Missing catalog rows render as "unknown" instead of failing the read.
type BorrowView struct {
	ID         string     `json:"id"`
	Book       string     `json:"book"`
	User       string     `json:"user"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}

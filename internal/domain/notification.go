package domain

import (
	"fmt"
	"strings"
	"time"
)

// DeliveryStatus represents the lifecycle state of a queued confirmation.
type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "PENDING"
	StatusInFlight  DeliveryStatus = "IN_FLIGHT"
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
)

func (s DeliveryStatus) String() string { return string(s) }

func (s DeliveryStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInFlight, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further delivery work applies.
func (s DeliveryStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

func ParseDeliveryStatusFromString(s string) (DeliveryStatus, error) {
	st := DeliveryStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid delivery status %q", ErrInvalidInput, s)
	}
	return st, nil
}

// NotificationRequest is the immutable confirmation payload snapshotted from
// borrow, book, and user state at creation time. The worker never re-resolves
// the catalog, so later catalog edits do not leak into the message.
type NotificationRequest struct {
	RecipientEmail string
	BookTitle      string
	LoanDate       time.Time
}

func (r NotificationRequest) Validate() error {
	if strings.TrimSpace(r.RecipientEmail) == "" {
		return fmt.Errorf("%w: recipient email is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.BookTitle) == "" {
		return fmt.Errorf("%w: book title is required", ErrInvalidInput)
	}
	if r.LoanDate.IsZero() {
		return fmt.Errorf("%w: loan date is required", ErrInvalidInput)
	}
	return nil
}

// QueuedMessage wraps a NotificationRequest with delivery metadata. It is the
// durable at-least-once hand-off between the ledger and the worker.
type QueuedMessage struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	CorrelationID  string `gorm:"type:varchar(36);not null"`
	RecipientEmail string `gorm:"type:varchar(255);not null"`
	BookTitle      string `gorm:"type:varchar(255);not null"`
	LoanDate       time.Time
	Status         DeliveryStatus `gorm:"type:varchar(20);not null"`
	AttemptCount   int            `gorm:"not null;default:0"`
	MaxAttempts    int            `gorm:"not null;default:5"`
	EnqueuedAt     time.Time
	NextAttemptAt  *time.Time
	LeaseExpiresAt *time.Time
	LastError      *string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Request re-assembles the immutable payload carried by the message.
func (m *QueuedMessage) Request() NotificationRequest {
	return NotificationRequest{
		RecipientEmail: m.RecipientEmail,
		BookTitle:      m.BookTitle,
		LoanDate:       m.LoanDate,
	}
}

func (m *QueuedMessage) Validate() error {
	if err := m.Request().Validate(); err != nil {
		return err
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("%w: invalid delivery status %q", ErrInvalidInput, m.Status)
	}
	return nil
}

// DeliveryAttempt records a single delivery attempt for a queued message.
type DeliveryAttempt struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	MessageID     string  `gorm:"type:uuid;not null"`
	AttemptNumber int     `gorm:"not null"`
	StatusCode    *int    `gorm:"type:int"`
	ResponseBody  *string `gorm:"type:text"`
	Error         *string `gorm:"type:text"`
	CreatedAt     time.Time
}

package repository

import (
	"time"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
)

// BorrowModel is the persistence model for the borrows table.
type BorrowModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:uuid;not null"`
	BookID     string    `gorm:"type:uuid;not null"`
	BorrowedAt time.Time `gorm:"not null"`
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (BorrowModel) TableName() string {
	return "borrows"
}

// QueuedMessageModel is the persistence model for the notifications outbox.
type QueuedMessageModel struct {
	ID             string                `gorm:"type:uuid;primaryKey"`
	CorrelationID  string                `gorm:"type:varchar(36);not null"`
	RecipientEmail string                `gorm:"type:varchar(255);not null"`
	BookTitle      string                `gorm:"type:varchar(255);not null"`
	LoanDate       time.Time             `gorm:"not null"`
	Status         domain.DeliveryStatus `gorm:"type:varchar(20);not null"`
	AttemptCount   int                   `gorm:"not null;default:0"`
	MaxAttempts    int                   `gorm:"not null;default:5"`
	EnqueuedAt     time.Time             `gorm:"not null"`
	NextAttemptAt  *time.Time
	LeaseExpiresAt *time.Time
	LastError      *string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (QueuedMessageModel) TableName() string {
	return "notifications"
}

// DeliveryAttemptModel is the persistence model for notification_attempts.
type DeliveryAttemptModel struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	MessageID     string  `gorm:"type:uuid;not null"`
	AttemptNumber int     `gorm:"not null"`
	StatusCode    *int    `gorm:"type:int"`
	ResponseBody  *string `gorm:"type:text"`
	Error         *string `gorm:"type:text"`
	CreatedAt     time.Time
}

func (DeliveryAttemptModel) TableName() string {
	return "notification_attempts"
}

// BookModel is the persistence model for the books table.
type BookModel struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	Title     string  `gorm:"type:varchar(255);not null"`
	AuthorID  *string `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// AuthorModel is the persistence model for the authors table.
type AuthorModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AuthorModel) TableName() string {
	return "authors"
}

// UserModel is the persistence model for the users table.
type UserModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	Email     string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserModel) TableName() string {
	return "users"
}

func borrowModelFromDomain(b *domain.Borrow) *BorrowModel {
	if b == nil {
		return nil
	}

	return &BorrowModel{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowedAt: b.BorrowedAt,
		ReturnedAt: b.ReturnedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func borrowModelToDomain(m *BorrowModel) *domain.Borrow {
	if m == nil {
		return nil
	}

	return &domain.Borrow{
		ID:         m.ID,
		UserID:     m.UserID,
		BookID:     m.BookID,
		BorrowedAt: m.BorrowedAt,
		ReturnedAt: m.ReturnedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func messageModelFromDomain(m *domain.QueuedMessage) *QueuedMessageModel {
	if m == nil {
		return nil
	}

	return &QueuedMessageModel{
		ID:             m.ID,
		CorrelationID:  m.CorrelationID,
		RecipientEmail: m.RecipientEmail,
		BookTitle:      m.BookTitle,
		LoanDate:       m.LoanDate,
		Status:         m.Status,
		AttemptCount:   m.AttemptCount,
		MaxAttempts:    m.MaxAttempts,
		EnqueuedAt:     m.EnqueuedAt,
		NextAttemptAt:  m.NextAttemptAt,
		LeaseExpiresAt: m.LeaseExpiresAt,
		LastError:      m.LastError,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func messageModelToDomain(m *QueuedMessageModel) *domain.QueuedMessage {
	if m == nil {
		return nil
	}

	return &domain.QueuedMessage{
		ID:             m.ID,
		CorrelationID:  m.CorrelationID,
		RecipientEmail: m.RecipientEmail,
		BookTitle:      m.BookTitle,
		LoanDate:       m.LoanDate,
		Status:         m.Status,
		AttemptCount:   m.AttemptCount,
		MaxAttempts:    m.MaxAttempts,
		EnqueuedAt:     m.EnqueuedAt,
		NextAttemptAt:  m.NextAttemptAt,
		LeaseExpiresAt: m.LeaseExpiresAt,
		LastError:      m.LastError,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func attemptModelFromDomain(a *domain.DeliveryAttempt) *DeliveryAttemptModel {
	if a == nil {
		return nil
	}

	return &DeliveryAttemptModel{
		ID:            a.ID,
		MessageID:     a.MessageID,
		AttemptNumber: a.AttemptNumber,
		StatusCode:    a.StatusCode,
		ResponseBody:  a.ResponseBody,
		Error:         a.Error,
		CreatedAt:     a.CreatedAt,
	}
}

func attemptModelToDomain(m *DeliveryAttemptModel) *domain.DeliveryAttempt {
	if m == nil {
		return nil
	}

	return &domain.DeliveryAttempt{
		ID:            m.ID,
		MessageID:     m.MessageID,
		AttemptNumber: m.AttemptNumber,
		StatusCode:    m.StatusCode,
		ResponseBody:  m.ResponseBody,
		Error:         m.Error,
		CreatedAt:     m.CreatedAt,
	}
}

func bookModelFromDomain(b *catalog.Book) *BookModel {
	if b == nil {
		return nil
	}
	return &BookModel{
		ID:        b.ID,
		Title:     b.Title,
		AuthorID:  b.AuthorID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bookModelToDomain(m *BookModel) *catalog.Book {
	if m == nil {
		return nil
	}
	return &catalog.Book{
		ID:        m.ID,
		Title:     m.Title,
		AuthorID:  m.AuthorID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func authorModelFromDomain(a *catalog.Author) *AuthorModel {
	if a == nil {
		return nil
	}
	return &AuthorModel{
		ID:        a.ID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func authorModelToDomain(m *AuthorModel) *catalog.Author {
	if m == nil {
		return nil
	}
	return &catalog.Author{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func userModelFromDomain(u *catalog.User) *UserModel {
	if u == nil {
		return nil
	}
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userModelToDomain(m *UserModel) *catalog.User {
	if m == nil {
		return nil
	}
	return &catalog.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

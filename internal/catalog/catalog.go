// Package catalog holds the descriptive book/author/user records the ledger
// references by id. The ledger itself consumes only the read-only Lookup port.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lendingledger/internal/domain"
)

// Book is a catalog entry a borrow can reference.
type Book struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	Title     string  `gorm:"type:varchar(255);not null"`
	AuthorID  *string `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: book title is required", domain.ErrInvalidInput)
	}
	return nil
}

// Author is a catalog entry books may point at.
type Author struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: author name is required", domain.ErrInvalidInput)
	}
	return nil
}

// User is a borrower record. Credential handling lives outside this service;
// only descriptive fields are stored here.
type User struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	Email     string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: user name is required", domain.ErrInvalidInput)
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return fmt.Errorf("%w: user email is required", domain.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: user email is malformed", domain.ErrInvalidInput)
	}
	return nil
}

// BookRef is the resolved view of a book the ledger needs.
type BookRef struct {
	ID    string
	Title string
}

// UserRef is the resolved view of a user the ledger needs.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

// Lookup resolves catalog references for the ledger. Implementations return
// domain.ErrNotFound when the id does not resolve.
type Lookup interface {
	ResolveBook(ctx context.Context, id string) (*BookRef, error)
	ResolveUser(ctx context.Context, id string) (*UserRef, error)
}

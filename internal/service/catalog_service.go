package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
	"lendingledger/internal/repository"
)

// CatalogService manages the book/author/user records borrows reference.
type CatalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) (*CatalogService, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &CatalogService{repo: repo}, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, book *catalog.Book) error {
	if book == nil {
		return fmt.Errorf("%w: book is required", domain.ErrInvalidInput)
	}
	book.ID = uuid.NewString()
	book.Title = strings.TrimSpace(book.Title)
	if err := book.Validate(); err != nil {
		return err
	}
	if book.AuthorID != nil {
		if _, err := s.repo.GetAuthor(ctx, *book.AuthorID); err != nil {
			return err
		}
	}
	return s.repo.CreateBook(ctx, book)
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	return s.repo.ListBooks(ctx)
}

func (s *CatalogService) UpdateBook(ctx context.Context, book *catalog.Book) error {
	if book == nil || strings.TrimSpace(book.ID) == "" {
		return fmt.Errorf("%w: book id is required", domain.ErrInvalidInput)
	}
	book.Title = strings.TrimSpace(book.Title)
	if err := book.Validate(); err != nil {
		return err
	}
	if book.AuthorID != nil {
		if _, err := s.repo.GetAuthor(ctx, *book.AuthorID); err != nil {
			return err
		}
	}
	return s.repo.UpdateBook(ctx, book)
}

func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *CatalogService) CreateAuthor(ctx context.Context, author *catalog.Author) error {
	if author == nil {
		return fmt.Errorf("%w: author is required", domain.ErrInvalidInput)
	}
	author.ID = uuid.NewString()
	author.Name = strings.TrimSpace(author.Name)
	if err := author.Validate(); err != nil {
		return err
	}
	return s.repo.CreateAuthor(ctx, author)
}

func (s *CatalogService) GetAuthor(ctx context.Context, id string) (*catalog.Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

func (s *CatalogService) ListAuthors(ctx context.Context) ([]catalog.Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *CatalogService) UpdateAuthor(ctx context.Context, author *catalog.Author) error {
	if author == nil || strings.TrimSpace(author.ID) == "" {
		return fmt.Errorf("%w: author id is required", domain.ErrInvalidInput)
	}
	author.Name = strings.TrimSpace(author.Name)
	if err := author.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateAuthor(ctx, author)
}

func (s *CatalogService) DeleteAuthor(ctx context.Context, id string) error {
	return s.repo.DeleteAuthor(ctx, id)
}

func (s *CatalogService) CreateUser(ctx context.Context, user *catalog.User) error {
	if user == nil {
		return fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	user.ID = uuid.NewString()
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}
	return s.repo.CreateUser(ctx, user)
}

func (s *CatalogService) GetUser(ctx context.Context, id string) (*catalog.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *CatalogService) ListUsers(ctx context.Context) ([]catalog.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *CatalogService) UpdateUser(ctx context.Context, user *catalog.User) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if err := user.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateUser(ctx, user)
}

func (s *CatalogService) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

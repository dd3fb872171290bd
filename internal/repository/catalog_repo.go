package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
)

// CatalogRepository covers the simple keyed book/author/user storage plus the
// read-only Lookup port the ledger consumes.
type CatalogRepository interface {
	catalog.Lookup

	CreateBook(ctx context.Context, b *catalog.Book) error
	GetBook(ctx context.Context, id string) (*catalog.Book, error)
	ListBooks(ctx context.Context) ([]catalog.Book, error)
	UpdateBook(ctx context.Context, b *catalog.Book) error
	DeleteBook(ctx context.Context, id string) error

	CreateAuthor(ctx context.Context, a *catalog.Author) error
	GetAuthor(ctx context.Context, id string) (*catalog.Author, error)
	ListAuthors(ctx context.Context) ([]catalog.Author, error)
	UpdateAuthor(ctx context.Context, a *catalog.Author) error
	DeleteAuthor(ctx context.Context, id string) error

	CreateUser(ctx context.Context, u *catalog.User) error
	GetUser(ctx context.Context, id string) (*catalog.User, error)
	ListUsers(ctx context.Context) ([]catalog.User, error)
	UpdateUser(ctx context.Context, u *catalog.User) error
	DeleteUser(ctx context.Context, id string) error
}

type GormCatalogRepo struct {
	db *gorm.DB
}

func NewGormCatalogRepo(db *gorm.DB) *GormCatalogRepo {
	return &GormCatalogRepo{db: db}
}

func (r *GormCatalogRepo) ResolveBook(ctx context.Context, id string) (*catalog.BookRef, error) {
	book, err := r.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return &catalog.BookRef{ID: book.ID, Title: book.Title}, nil
}

func (r *GormCatalogRepo) ResolveUser(ctx context.Context, id string) (*catalog.UserRef, error) {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &catalog.UserRef{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

func (r *GormCatalogRepo) CreateBook(ctx context.Context, b *catalog.Book) error {
	model := bookModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: create book: %v", domain.ErrPersistence, err)
	}
	if b != nil {
		*b = *bookModelToDomain(model)
	}
	return nil
}

func (r *GormCatalogRepo) GetBook(ctx context.Context, id string) (*catalog.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get book: %v", domain.ErrPersistence, err)
	}
	return bookModelToDomain(&model), nil
}

func (r *GormCatalogRepo) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	var models []BookModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: list books: %v", domain.ErrPersistence, err)
	}

	books := make([]catalog.Book, 0, len(models))
	for i := range models {
		books = append(books, *bookModelToDomain(&models[i]))
	}
	return books, nil
}

func (r *GormCatalogRepo) UpdateBook(ctx context.Context, b *catalog.Book) error {
	if b == nil {
		return fmt.Errorf("%w: book is required", domain.ErrInvalidInput)
	}
	result := r.db.WithContext(ctx).
		Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{"title": b.Title, "author_id": b.AuthorID})
	if result.Error != nil {
		return fmt.Errorf("%w: update book: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCatalogRepo) DeleteBook(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &BookModel{}, id, "book")
}

func (r *GormCatalogRepo) CreateAuthor(ctx context.Context, a *catalog.Author) error {
	model := authorModelFromDomain(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: create author: %v", domain.ErrPersistence, err)
	}
	if a != nil {
		*a = *authorModelToDomain(model)
	}
	return nil
}

func (r *GormCatalogRepo) GetAuthor(ctx context.Context, id string) (*catalog.Author, error) {
	var model AuthorModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get author: %v", domain.ErrPersistence, err)
	}
	return authorModelToDomain(&model), nil
}

func (r *GormCatalogRepo) ListAuthors(ctx context.Context) ([]catalog.Author, error) {
	var models []AuthorModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: list authors: %v", domain.ErrPersistence, err)
	}

	authors := make([]catalog.Author, 0, len(models))
	for i := range models {
		authors = append(authors, *authorModelToDomain(&models[i]))
	}
	return authors, nil
}

func (r *GormCatalogRepo) UpdateAuthor(ctx context.Context, a *catalog.Author) error {
	if a == nil {
		return fmt.Errorf("%w: author is required", domain.ErrInvalidInput)
	}
	result := r.db.WithContext(ctx).
		Model(&AuthorModel{}).
		Where("id = ?", a.ID).
		Update("name", a.Name)
	if result.Error != nil {
		return fmt.Errorf("%w: update author: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCatalogRepo) DeleteAuthor(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &AuthorModel{}, id, "author")
}

func (r *GormCatalogRepo) CreateUser(ctx context.Context, u *catalog.User) error {
	model := userModelFromDomain(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: create user: %v", domain.ErrPersistence, err)
	}
	if u != nil {
		*u = *userModelToDomain(model)
	}
	return nil
}

func (r *GormCatalogRepo) GetUser(ctx context.Context, id string) (*catalog.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", domain.ErrPersistence, err)
	}
	return userModelToDomain(&model), nil
}

func (r *GormCatalogRepo) ListUsers(ctx context.Context) ([]catalog.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrPersistence, err)
	}

	users := make([]catalog.User, 0, len(models))
	for i := range models {
		users = append(users, *userModelToDomain(&models[i]))
	}
	return users, nil
}

func (r *GormCatalogRepo) UpdateUser(ctx context.Context, u *catalog.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	result := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{"name": u.Name, "email": u.Email})
	if result.Error != nil {
		return fmt.Errorf("%w: update user: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCatalogRepo) DeleteUser(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &UserModel{}, id, "user")
}

func (r *GormCatalogRepo) deleteByID(ctx context.Context, model any, id string, kind string) error {
	result := r.db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrPersistence, kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

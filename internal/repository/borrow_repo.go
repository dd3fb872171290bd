package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lendingledger/internal/domain"
)

type BorrowRepository interface {
	Create(ctx context.Context, b *domain.Borrow) error
	GetByID(ctx context.Context, id string) (*domain.Borrow, error)
	Update(ctx context.Context, b *domain.Borrow) error
	Delete(ctx context.Context, id string) error
	GetView(ctx context.Context, id string) (*domain.BorrowView, error)
	ListViews(ctx context.Context) ([]domain.BorrowView, error)
}

type GormBorrowRepo struct {
	db *gorm.DB
}

func NewGormBorrowRepo(db *gorm.DB) *GormBorrowRepo {
	return &GormBorrowRepo{db: db}
}

// borrowViewSelect joins the current catalog state at read time. Catalog rows
// deleted after the borrow was recorded render as "unknown" rather than
// breaking the read (weak references, no cascade).
const borrowViewSelect = `borrows.id, COALESCE(books.title, 'unknown') AS book, ` +
	`COALESCE(users.name, 'unknown') AS "user", borrows.borrowed_at, borrows.returned_at`

func (r *GormBorrowRepo) Create(ctx context.Context, b *domain.Borrow) error {
	model := borrowModelFromDomain(b)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("%w: create borrow: %v", domain.ErrPersistence, err)
	}
	if b != nil {
		*b = *borrowModelToDomain(model)
	}
	return nil
}

func (r *GormBorrowRepo) GetByID(ctx context.Context, id string) (*domain.Borrow, error) {
	var model BorrowModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get borrow: %v", domain.ErrPersistence, err)
	}
	return borrowModelToDomain(&model), nil
}

func (r *GormBorrowRepo) Update(ctx context.Context, b *domain.Borrow) error {
	if b == nil {
		return fmt.Errorf("%w: borrow is required", domain.ErrInvalidInput)
	}

	model := borrowModelFromDomain(b)
	result := r.db.WithContext(ctx).
		Model(&BorrowModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"user_id":     model.UserID,
			"book_id":     model.BookID,
			"borrowed_at": model.BorrowedAt,
			"returned_at": model.ReturnedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("%w: update borrow: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBorrowRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&BorrowModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("%w: delete borrow: %v", domain.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormBorrowRepo) GetView(ctx context.Context, id string) (*domain.BorrowView, error) {
	var view domain.BorrowView
	err := r.db.WithContext(ctx).
		Model(&BorrowModel{}).
		Select(borrowViewSelect).
		Joins("LEFT JOIN books ON books.id = borrows.book_id").
		Joins("LEFT JOIN users ON users.id = borrows.user_id").
		Where("borrows.id = ?", id).
		Take(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get borrow view: %v", domain.ErrPersistence, err)
	}
	return &view, nil
}

func (r *GormBorrowRepo) ListViews(ctx context.Context) ([]domain.BorrowView, error) {
	var views []domain.BorrowView
	err := r.db.WithContext(ctx).
		Model(&BorrowModel{}).
		Select(borrowViewSelect).
		Joins("LEFT JOIN books ON books.id = borrows.book_id").
		Joins("LEFT JOIN users ON users.id = borrows.user_id").
		Order("borrows.created_at ASC, borrows.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list borrow views: %v", domain.ErrPersistence, err)
	}
	return views, nil
}

package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"lendingledger/internal/domain"
	"lendingledger/internal/service"
)

// LedgerAPI is the borrow surface the HTTP layer depends on.
type LedgerAPI interface {
	CreateBorrow(ctx context.Context, in service.CreateBorrowInput) (*domain.Borrow, error)
	UpdateBorrow(ctx context.Context, id string, in service.UpdateBorrowInput) (*domain.Borrow, error)
	GetBorrow(ctx context.Context, id string) (*domain.BorrowView, error)
	ListBorrows(ctx context.Context) ([]domain.BorrowView, error)
	DeleteBorrow(ctx context.Context, id string) error
}

type BorrowHandler struct {
	ledger LedgerAPI
}

func NewBorrowHandler(ledger LedgerAPI) *BorrowHandler {
	return &BorrowHandler{ledger: ledger}
}

func (h *BorrowHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/borrows", h.Create)
	router.Get("/borrows", h.List)
	router.Get("/borrows/:id", h.Get)
	router.Put("/borrows/:id", h.Update)
	router.Delete("/borrows/:id", h.Delete)
}

type createBorrowRequest struct {
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
}

type updateBorrowRequest struct {
	UserID     *string    `json:"user_id"`
	BookID     *string    `json:"book_id"`
	BorrowedAt *time.Time `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}

type borrowResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	State      string     `json:"state"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toBorrowResponse(b *domain.Borrow) borrowResponse {
	return borrowResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		BookID:     b.BookID,
		BorrowedAt: b.BorrowedAt,
		ReturnedAt: b.ReturnedAt,
		State:      b.State().String(),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func (h *BorrowHandler) Create(c *fiber.Ctx) error {
	var req createBorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	borrow, err := h.ledger.CreateBorrow(c.Context(), service.CreateBorrowInput{
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowedAt: req.BorrowedAt,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toBorrowResponse(borrow))
}

func (h *BorrowHandler) List(c *fiber.Ctx) error {
	views, err := h.ledger.ListBorrows(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

func (h *BorrowHandler) Get(c *fiber.Ctx) error {
	view, err := h.ledger.GetBorrow(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

func (h *BorrowHandler) Update(c *fiber.Ctx) error {
	var req updateBorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	borrow, err := h.ledger.UpdateBorrow(c.Context(), c.Params("id"), service.UpdateBorrowInput{
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowedAt: req.BorrowedAt,
		ReturnedAt: req.ReturnedAt,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toBorrowResponse(borrow))
}

func (h *BorrowHandler) Delete(c *fiber.Ctx) error {
	if err := h.ledger.DeleteBorrow(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"lendingledger/internal/catalog"
)

// CatalogAPI is the catalog surface the HTTP layer depends on.
type CatalogAPI interface {
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

type CatalogHandler struct {
	svc CatalogAPI
}

func NewCatalogHandler(svc CatalogAPI) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/books", h.CreateBook)
	router.Get("/books", h.ListBooks)
	router.Get("/books/:id", h.GetBook)
	router.Put("/books/:id", h.UpdateBook)
	router.Delete("/books/:id", h.DeleteBook)

	router.Post("/authors", h.CreateAuthor)
	router.Get("/authors", h.ListAuthors)
	router.Get("/authors/:id", h.GetAuthor)
	router.Put("/authors/:id", h.UpdateAuthor)
	router.Delete("/authors/:id", h.DeleteAuthor)

	router.Post("/users", h.CreateUser)
	router.Get("/users", h.ListUsers)
	router.Get("/users/:id", h.GetUser)
	router.Put("/users/:id", h.UpdateUser)
	router.Delete("/users/:id", h.DeleteUser)
}

type bookRequest struct {
	Title    string  `json:"title"`
	AuthorID *string `json:"author_id"`
}

type authorRequest struct {
	Name string `json:"name"`
}

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *CatalogHandler) CreateBook(c *fiber.Ctx) error {
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	book := &catalog.Book{Title: req.Title, AuthorID: req.AuthorID}
	if err := h.svc.CreateBook(c.Context(), book); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (h *CatalogHandler) ListBooks(c *fiber.Ctx) error {
	books, err := h.svc.ListBooks(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(books)
}

func (h *CatalogHandler) GetBook(c *fiber.Ctx) error {
	book, err := h.svc.GetBook(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(book)
}

func (h *CatalogHandler) UpdateBook(c *fiber.Ctx) error {
	var req bookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	book := &catalog.Book{ID: c.Params("id"), Title: req.Title, AuthorID: req.AuthorID}
	if err := h.svc.UpdateBook(c.Context(), book); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(book)
}

func (h *CatalogHandler) DeleteBook(c *fiber.Ctx) error {
	if err := h.svc.DeleteBook(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) CreateAuthor(c *fiber.Ctx) error {
	var req authorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	author := &catalog.Author{Name: req.Name}
	if err := h.svc.CreateAuthor(c.Context(), author); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

func (h *CatalogHandler) ListAuthors(c *fiber.Ctx) error {
	authors, err := h.svc.ListAuthors(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(authors)
}

func (h *CatalogHandler) GetAuthor(c *fiber.Ctx) error {
	author, err := h.svc.GetAuthor(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(author)
}

func (h *CatalogHandler) UpdateAuthor(c *fiber.Ctx) error {
	var req authorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	author := &catalog.Author{ID: c.Params("id"), Name: req.Name}
	if err := h.svc.UpdateAuthor(c.Context(), author); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(author)
}

func (h *CatalogHandler) DeleteAuthor(c *fiber.Ctx) error {
	if err := h.svc.DeleteAuthor(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) CreateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user := &catalog.User{Name: req.Name, Email: req.Email}
	if err := h.svc.CreateUser(c.Context(), user); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *CatalogHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.svc.ListUsers(c.Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *CatalogHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.svc.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *CatalogHandler) UpdateUser(c *fiber.Ctx) error {
	var req userRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user := &catalog.User{ID: c.Params("id"), Name: req.Name, Email: req.Email}
	if err := h.svc.UpdateUser(c.Context(), user); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

func (h *CatalogHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.svc.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

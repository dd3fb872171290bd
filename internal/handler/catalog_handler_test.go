package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"lendingledger/internal/catalog"
	"lendingledger/internal/domain"
	"lendingledger/internal/transport"
)

type stubCatalog struct {
	CatalogAPI

	createBookFn func(ctx context.Context, b *catalog.Book) error
	getUserFn    func(ctx context.Context, id string) (*catalog.User, error)
	deleteBookFn func(ctx context.Context, id string) error
}

func (s *stubCatalog) CreateBook(ctx context.Context, b *catalog.Book) error {
	return s.createBookFn(ctx, b)
}

func (s *stubCatalog) GetUser(ctx context.Context, id string) (*catalog.User, error) {
	return s.getUserFn(ctx, id)
}

func (s *stubCatalog) DeleteBook(ctx context.Context, id string) error {
	return s.deleteBookFn(ctx, id)
}

func newCatalogTestApp(svc CatalogAPI) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: transport.ErrorHandler(zap.NewNop())})
	NewCatalogHandler(svc).RegisterRoutes(app.Group("/v1"))
	return app
}

func TestCatalogHandlerCreateBook(t *testing.T) {
	t.Parallel()

	svc := &stubCatalog{
		createBookFn: func(_ context.Context, b *catalog.Book) error {
			b.ID = "book-1"
			return nil
		},
	}
	app := newCatalogTestApp(svc)

	resp := performRequest(t, app, http.MethodPost, "/v1/books", map[string]any{
		"title": "Dune",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var body catalog.Book
	decodeBody(t, resp, &body)
	if body.ID != "book-1" || body.Title != "Dune" {
		t.Fatalf("body = %+v, want created book", body)
	}
}

func TestCatalogHandlerCreateBookInvalid(t *testing.T) {
	t.Parallel()

	svc := &stubCatalog{
		createBookFn: func(context.Context, *catalog.Book) error {
			return domain.ErrInvalidInput
		},
	}
	app := newCatalogTestApp(svc)

	resp := performRequest(t, app, http.MethodPost, "/v1/books", map[string]any{"title": ""})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCatalogHandlerGetUserNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubCatalog{
		getUserFn: func(context.Context, string) (*catalog.User, error) {
			return nil, domain.ErrNotFound
		},
	}
	app := newCatalogTestApp(svc)

	resp := performRequest(t, app, http.MethodGet, "/v1/users/ghost", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCatalogHandlerDeleteBook(t *testing.T) {
	t.Parallel()

	svc := &stubCatalog{
		deleteBookFn: func(_ context.Context, id string) error {
			if id != "book-1" {
				t.Errorf("id = %q, want book-1", id)
			}
			return nil
		},
	}
	app := newCatalogTestApp(svc)

	resp := performRequest(t, app, http.MethodDelete, "/v1/books/book-1", nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
}

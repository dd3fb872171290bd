package service

import (
	"testing"
	"time"

	"lendingledger/internal/domain"
)

func TestRender(t *testing.T) {
	t.Parallel()

	req := domain.NotificationRequest{
		RecipientEmail: "reader@example.com",
		BookTitle:      "The Dispossessed",
		LoanDate:       time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
	}

	got := Render(req)

	if got.Subject != "Book borrowed!" {
		t.Fatalf("Subject = %q, want %q", got.Subject, "Book borrowed!")
	}

	wantBody := "You borrowed the book The Dispossessed on 2024-03-09.\nHave a good day!"
	if got.Body != wantBody {
		t.Fatalf("Body = %q, want %q", got.Body, wantBody)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	t.Parallel()

	req := domain.NotificationRequest{
		RecipientEmail: "reader@example.com",
		BookTitle:      "Dune",
		LoanDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	first := Render(req)
	second := Render(req)

	if first != second {
		t.Fatalf("renders differ: %+v vs %+v", first, second)
	}
}

func TestRenderDateUsesLoanDateNotDeliveryDate(t *testing.T) {
	t.Parallel()

	// A retry days after the borrow must still show the original loan date.
	req := domain.NotificationRequest{
		RecipientEmail: "reader@example.com",
		BookTitle:      "Hyperion",
		LoanDate:       time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC),
	}

	got := Render(req)
	want := "You borrowed the book Hyperion on 2023-12-31.\nHave a good day!"
	if got.Body != want {
		t.Fatalf("Body = %q, want %q", got.Body, want)
	}
}

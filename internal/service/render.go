package service

import (
	"fmt"

	"lendingledger/internal/domain"
)

const (
	confirmationSubject = "Book borrowed!"
	loanDateLayout      = "2006-01-02"
)

// RenderedMessage is the subject/body pair handed to the mail channel.
type RenderedMessage struct {
	Subject string
	Body    string
}

// Render produces the borrow confirmation email from the snapshotted payload.
// It is deterministic: the same request always renders byte-identical output,
// so redelivered messages render exactly what the first attempt rendered.
func Render(req domain.NotificationRequest) RenderedMessage {
	return RenderedMessage{
		Subject: confirmationSubject,
		Body: fmt.Sprintf(
			"You borrowed the book %s on %s.\nHave a good day!",
			req.BookTitle,
			req.LoanDate.Format(loanDateLayout),
		),
	}
}

package mailer

import "context"

// Email is a rendered message bound to a recipient address.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the outbound delivery channel port.
type Mailer interface {
	Send(ctx context.Context, email Email) (*SendReceipt, error)
}

// SendReceipt stores delivery call metadata for audit and persistence.
type SendReceipt struct {
	StatusCode int
	Body       string
	MessageID  string
}

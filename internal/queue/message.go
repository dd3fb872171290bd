package queue

import (
	"fmt"
	"strings"
)

// ConfirmationMessage is the broker payload. It carries only the outbox row
// id; the durable snapshot stays in the notifications table so a lost broker
// message is recoverable by the outbox scanner.
type ConfirmationMessage struct {
	MessageID     string `json:"messageId"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func (m ConfirmationMessage) Validate() error {
	if strings.TrimSpace(m.MessageID) == "" {
		return fmt.Errorf("messageId is required")
	}
	return nil
}

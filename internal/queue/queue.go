package queue

import "context"

const (
	// WorkQueueName is the borrow confirmation work queue.
	WorkQueueName = "borrow-confirmations"
	// DLQName receives messages the broker dead-letters.
	DLQName = "dlq.borrow-confirmations"
)

// Publisher publishes confirmation messages to the work queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg ConfirmationMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg ConfirmationMessage) error

// Consumer consumes confirmation messages from the work queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lendingledger/internal/domain"
	"lendingledger/internal/repository"
)

// NotificationHandler exposes read-only delivery state for operators chasing
// a missing confirmation email.
type NotificationHandler struct {
	outbox   repository.OutboxRepository
	attempts repository.AttemptRepository
}

func NewNotificationHandler(outbox repository.OutboxRepository, attempts repository.AttemptRepository) *NotificationHandler {
	return &NotificationHandler{outbox: outbox, attempts: attempts}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/notifications/:id", h.Get)
}

type attemptResponse struct {
	AttemptNumber int       `json:"attempt_number"`
	StatusCode    *int      `json:"status_code"`
	Error         *string   `json:"error"`
	CreatedAt     time.Time `json:"created_at"`
}

type notificationResponse struct {
	ID            string            `json:"id"`
	CorrelationID string            `json:"correlation_id"`
	Recipient     string            `json:"recipient"`
	Status        string            `json:"status"`
	AttemptCount  int               `json:"attempt_count"`
	MaxAttempts   int               `json:"max_attempts"`
	EnqueuedAt    time.Time         `json:"enqueued_at"`
	NextAttemptAt *time.Time        `json:"next_attempt_at"`
	LastError     *string           `json:"last_error"`
	Attempts      []attemptResponse `json:"attempts"`
}

func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	message, err := h.outbox.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}

	attempts, err := h.attempts.GetByMessageID(c.Context(), message.ID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toNotificationResponse(message, attempts))
}

func toNotificationResponse(m *domain.QueuedMessage, attempts []domain.DeliveryAttempt) notificationResponse {
	resp := notificationResponse{
		ID:            m.ID,
		CorrelationID: m.CorrelationID,
		Recipient:     m.RecipientEmail,
		Status:        m.Status.String(),
		AttemptCount:  m.AttemptCount,
		MaxAttempts:   m.MaxAttempts,
		EnqueuedAt:    m.EnqueuedAt,
		NextAttemptAt: m.NextAttemptAt,
		LastError:     m.LastError,
		Attempts:      make([]attemptResponse, 0, len(attempts)),
	}
	for _, a := range attempts {
		resp.Attempts = append(resp.Attempts, attemptResponse{
			AttemptNumber: a.AttemptNumber,
			StatusCode:    a.StatusCode,
			Error:         a.Error,
			CreatedAt:     a.CreatedAt,
		})
	}
	return resp
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"lendingledger/internal/domain"
)

// toHTTPError maps domain errors onto HTTP statuses. Persistence details stay
// out of response bodies.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}

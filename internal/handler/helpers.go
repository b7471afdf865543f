package handler

import (
	"errors"
	"strconv"

	"go-stocktrack/internal/service"
	"go-stocktrack/pkg/apperror"
	"go-stocktrack/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actorFromCtx builds the explicit actor identity from the claims the auth middleware
// stored in the context.
func actorFromCtx(c *fiber.Ctx) service.Actor {
	actor := service.Actor{Name: "Unknown"}
	if id, ok := c.Locals("user_id").(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			actor.ID = parsed
		}
	}
	if name, ok := c.Locals("user_name").(string); ok && name != "" {
		actor.Name = name
	}
	return actor
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// pagination reads ?page and ?limit with the defaults the UI expects.
func pagination(c *fiber.Ctx) (offset, limit int) {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	return (page - 1) * limit, limit
}

// respondError maps the service error taxonomy to HTTP responses. Unexpected errors are
// logged for operators and returned as a generic failure.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": validationErr.Fields})
	}
	var notFoundErr *apperror.NotFoundError
	if errors.As(err, &notFoundErr) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFoundErr.Error()})
	}
	var stockErr *apperror.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     "Insufficient stock",
			"available": stockErr.Available,
		})
	}
	var conflictErr *apperror.ConflictError
	if errors.As(err, &conflictErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflictErr.Error()})
	}

	logger.LogError("handler", c.Route().Path, err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

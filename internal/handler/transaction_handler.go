package handler

import (
	"go-stocktrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	ledger service.LedgerService
}

func NewTransactionHandler(ledger service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	transactions, total, err := h.ledger.ListTransactions(offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": transactions, "total": total})
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	transaction, err := h.ledger.GetTransaction(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transaction)
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var input service.TransactionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	transaction, err := h.ledger.CreateTransaction(&input, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": transaction})
}

func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	var input service.TransactionUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	transaction, err := h.ledger.UpdateTransaction(id, &input, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": transaction})
}

func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	if err := h.ledger.DeleteTransaction(id, actorFromCtx(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(204)
}

package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go-stocktrack/internal/service"
	"go-stocktrack/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog service.CatalogService
}

func NewProductHandler(catalog service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	offset, limit := pagination(c)
	products, total, err := h.catalog.ListProducts(offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": products, "total": total})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	product, err := h.catalog.GetProduct(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.catalog.ListLowStock()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	input, err := h.parseInput(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.catalog.CreateProduct(input, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	input, err := h.parseInput(c)
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.catalog.UpdateProduct(id, input, actorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	if err := h.catalog.DeleteProduct(id, actorFromCtx(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(204)
}

// parseInput accepts JSON bodies and multipart forms. Multipart carries the optional
// product image, which is stored on local disk; only the stored path reaches the service.
func (h *ProductHandler) parseInput(c *fiber.Ctx) (*service.ProductInput, error) {
	if !strings.Contains(c.Get(fiber.HeaderContentType), "multipart/form-data") {
		var input service.ProductInput
		if err := c.BodyParser(&input); err != nil {
			return nil, apperror.NewValidationError("body", "invalid JSON")
		}
		return &input, nil
	}

	input := &service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}
	if v := c.FormValue("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperror.NewValidationError("category_id", "must be a valid UUID")
		}
		input.CategoryID = id
	}
	if v := c.FormValue("barcode"); v != "" {
		input.Barcode = &v
	}

	fields := map[string]*decimal.Decimal{
		"price":          &input.Price,
		"purchase_price": &input.PurchasePrice,
		"sale_price":     &input.SalePrice,
	}
	for name, dst := range fields {
		v := c.FormValue(name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, apperror.NewValidationError(name, "must be a number")
		}
		*dst = d
	}
	for name, dst := range map[string]*int{
		"stock_quantity": &input.StockQuantity,
		"minimum_stock":  &input.MinimumStock,
	} {
		v := c.FormValue(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperror.NewValidationError(name, "must be an integer")
		}
		*dst = n
	}

	file, err := c.FormFile("image")
	if err == nil && file != nil {
		dir := os.Getenv("UPLOAD_DIR")
		if dir == "" {
			dir = "./storage/products"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s%s", uuid.New(), filepath.Ext(file.Filename)))
		if err := c.SaveFile(file, path); err != nil {
			return nil, err
		}
		input.ImagePath = path
	}

	return input, nil
}

package service

import (
	"fmt"
	"time"

	"go-stocktrack/internal/model"
	"go-stocktrack/internal/repository"
	"go-stocktrack/pkg/apperror"
	"go-stocktrack/pkg/validator"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type ProductInput struct {
	CategoryID    uuid.UUID       `json:"category_id" validate:"uuid_required"`
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description"`
	Barcode       *string         `json:"barcode,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockQuantity int             `json:"stock_quantity"`
	MinimumStock  int             `json:"minimum_stock"`
	ImagePath     string          `json:"-"`
}

// CatalogService owns Category and Product CRUD: slug derivation, uniqueness and the
// category referential guard. Stock counters and current prices belong to the ledger;
// product updates here never touch them.
type CatalogService interface {
	CreateCategory(input *CategoryInput, actor Actor) (*model.Category, error)
	UpdateCategory(id uuid.UUID, input *CategoryInput, actor Actor) (*model.Category, error)
	DeleteCategory(id uuid.UUID, actor Actor) error
	GetCategory(id uuid.UUID) (*model.Category, error)
	ListCategories() ([]model.Category, error)

	CreateProduct(input *ProductInput, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, input *ProductInput, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(offset, limit int) ([]model.Product, int64, error)
	ListLowStock() ([]model.Product, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logRepo      repository.ActionLogRepository
}

func NewCatalogService(cRepo repository.CategoryRepository, pRepo repository.ProductRepository, lRepo repository.ActionLogRepository) CatalogService {
	return &catalogService{
		categoryRepo: cRepo,
		productRepo:  pRepo,
		logRepo:      lRepo,
	}
}

func (s *catalogService) CreateCategory(input *CategoryInput, actor Actor) (*model.Category, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	if existing, _ := s.categoryRepo.FindByName(input.Name); existing != nil {
		return nil, apperror.NewValidationError("name", "has already been taken")
	}

	category := &model.Category{
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
	}
	category.CreatedBy = actor.ID.String()
	category.UpdatedBy = actor.ID.String()

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	s.logAction(actor, fmt.Sprintf("Category %s created by %s", category.ID, actor.Name))
	return category, nil
}

func (s *catalogService) UpdateCategory(id uuid.UUID, input *CategoryInput, actor Actor) (*model.Category, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing, _ := s.categoryRepo.FindByName(input.Name); existing != nil && existing.ID != id {
		return nil, apperror.NewValidationError("name", "has already been taken")
	}

	category.Name = input.Name
	category.Slug = slug.Make(input.Name)
	category.Description = input.Description
	category.UpdatedBy = actor.ID.String()

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	s.logAction(actor, fmt.Sprintf("Category %s updated by %s", category.ID, actor.Name))
	return category, nil
}

func (s *catalogService) DeleteCategory(id uuid.UUID, actor Actor) error {
	if _, err := s.categoryRepo.FindByID(id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &apperror.ConflictError{
			Message: fmt.Sprintf("cannot delete category that still owns %d products", count),
		}
	}
	if err := s.categoryRepo.Delete(id, actor.ID.String()); err != nil {
		return err
	}
	s.logAction(actor, fmt.Sprintf("Category %s deleted by %s", id, actor.Name))
	return nil
}

func (s *catalogService) GetCategory(id uuid.UUID) (*model.Category, error) {
	return s.categoryRepo.FindByID(id)
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *catalogService) CreateProduct(input *ProductInput, actor Actor) (*model.Product, error) {
	if err := s.validateProduct(input); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		// Unknown category is an input problem, not a missing-resource response.
		return nil, apperror.NewValidationError("category_id", "does not reference an existing category")
	}
	if input.Barcode != nil && *input.Barcode != "" {
		if existing, _ := s.productRepo.FindByBarcode(*input.Barcode); existing != nil {
			return nil, apperror.NewValidationError("barcode", "has already been taken")
		}
	}

	product := &model.Product{
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Slug:          slug.Make(input.Name),
		Description:   input.Description,
		Barcode:       normalizeBarcode(input.Barcode),
		ImagePath:     input.ImagePath,
		Price:         input.Price,
		PurchasePrice: input.PurchasePrice,
		SalePrice:     input.SalePrice,
		StockQuantity: input.StockQuantity,
		MinimumStock:  input.MinimumStock,

		// Baseline for reconciliation and delete reversal.
		OpeningStock:         input.StockQuantity,
		OpeningPurchasePrice: input.PurchasePrice,
		OpeningSalePrice:     input.SalePrice,
	}
	product.CreatedBy = actor.ID.String()
	product.UpdatedBy = actor.ID.String()

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	s.logAction(actor, fmt.Sprintf("Product %s created by %s", product.ID, actor.Name))
	return product, nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, input *ProductInput, actor Actor) (*model.Product, error) {
	if err := s.validateProduct(input); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(input.CategoryID); err != nil {
		return nil, apperror.NewValidationError("category_id", "does not reference an existing category")
	}
	if input.Barcode != nil && *input.Barcode != "" {
		if existing, _ := s.productRepo.FindByBarcode(*input.Barcode); existing != nil && existing.ID != id {
			return nil, apperror.NewValidationError("barcode", "has already been taken")
		}
	}

	// StockQuantity, PurchasePrice and SalePrice are deliberately not copied: only the
	// ledger mutates them.
	product.CategoryID = input.CategoryID
	product.Name = input.Name
	product.Slug = slug.Make(input.Name)
	product.Description = input.Description
	product.Barcode = normalizeBarcode(input.Barcode)
	product.Price = input.Price
	product.MinimumStock = input.MinimumStock
	if input.ImagePath != "" {
		product.ImagePath = input.ImagePath
	}
	product.UpdatedBy = actor.ID.String()

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	s.logAction(actor, fmt.Sprintf("Product %s updated by %s", product.ID, actor.Name))
	return product, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID, actor Actor) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(id, actor.ID.String()); err != nil {
		return err
	}
	s.logAction(actor, fmt.Sprintf("Product %s deleted by %s", id, actor.Name))
	return nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	return s.productRepo.FindByID(id)
}

func (s *catalogService) ListProducts(offset, limit int) ([]model.Product, int64, error) {
	return s.productRepo.FindAll(offset, limit)
}

func (s *catalogService) ListLowStock() ([]model.Product, error) {
	return s.productRepo.FindLowStock()
}

func (s *catalogService) validateProduct(input *ProductInput) error {
	if err := validator.ValidateStruct(input); err != nil {
		return err
	}
	fields := map[string]string{}
	for name, d := range map[string]decimal.Decimal{
		"price":          input.Price,
		"purchase_price": input.PurchasePrice,
		"sale_price":     input.SalePrice,
	} {
		if d.IsNegative() {
			fields[name] = "must not be negative"
		}
	}
	if input.StockQuantity < 0 {
		fields["stock_quantity"] = "must not be negative"
	}
	if input.MinimumStock < 0 {
		fields["minimum_stock"] = "must not be negative"
	}
	if len(fields) > 0 {
		return &apperror.ValidationError{Fields: fields}
	}
	return nil
}

func (s *catalogService) logAction(actor Actor, action string) {
	_ = s.logRepo.Create(nil, &model.ActionLog{
		UserID:   actor.ID,
		Action:   action,
		LoggedAt: time.Now(),
	})
}

func normalizeBarcode(barcode *string) *string {
	if barcode == nil || *barcode == "" {
		return nil
	}
	return barcode
}

package repository

import (
	"errors"

	"go-stocktrack/internal/model"
	"go-stocktrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(offset, limit int) ([]model.Product, int64, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	// FindByIDForUpdate loads the product inside tx with a row lock, so the
	// check-then-update sequence of a ledger mutation is race free.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindByBarcode(barcode string) (*model.Product, error)
	FindLowStock() ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID, deletedBy string) error
	// UpdateStock writes the counter inside tx; it must only be called by the ledger.
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	// UpdateStockAndPrice additionally moves the product's current price for one side.
	UpdateStockAndPrice(tx *gorm.DB, id uuid.UUID, newStock int, priceColumn string, price decimal.Decimal, updatedBy string) error
	CountAll() (int64, error)
	TotalInventoryValue() (decimal.Decimal, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(offset, limit int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64
	if err := r.db.Model(&model.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.db.Preload("Category").Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.NotFoundError{Resource: "product"}
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.NotFoundError{Resource: "product"}
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "barcode = ?", barcode).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.NotFoundError{Resource: "product"}
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindLowStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").
		Where("stock_quantity <= minimum_stock").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		// Transactions follow the product, matching the schema's cascade.
		if err := tx.Delete(&model.Transaction{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, "id = ?", id).Error
	})
}

func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": newStock,
			"updated_by":     updatedBy,
		}).Error
}

func (r *productRepo) UpdateStockAndPrice(tx *gorm.DB, id uuid.UUID, newStock int, priceColumn string, price decimal.Decimal, updatedBy string) error {
	if priceColumn != "purchase_price" && priceColumn != "sale_price" {
		return errors.New("invalid price column: " + priceColumn)
	}
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": newStock,
			priceColumn:      price,
			"updated_by":     updatedBy,
		}).Error
}

func (r *productRepo) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) TotalInventoryValue() (decimal.Decimal, error) {
	var value decimal.Decimal
	err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(price * stock_quantity), 0)").
		Scan(&value).Error
	return value, err
}

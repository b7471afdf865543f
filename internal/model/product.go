package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product carries the denormalized stock counter plus current pricing. StockQuantity,
// PurchasePrice and SalePrice are mutated only by the ledger; the Opening* fields record
// the creation-time values and are the baseline for reconciliation and delete reversal.
type Product struct {
	BaseModel
	CategoryID  uuid.UUID `gorm:"type:uuid;not null" json:"category_id" validate:"uuid_required"`
	Category    *Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty" validate:"-"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Slug        string    `gorm:"type:varchar(255);index" json:"slug"`
	Description string    `json:"description"`
	Barcode     *string   `gorm:"type:varchar(100);uniqueIndex" json:"barcode,omitempty"`
	ImagePath   string    `gorm:"type:varchar(255)" json:"image_path"`

	Price         decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"sale_price"`

	StockQuantity int `gorm:"default:0" json:"stock_quantity"`
	MinimumStock  int `gorm:"default:0" json:"minimum_stock"`

	OpeningStock         int             `gorm:"default:0" json:"opening_stock"`
	OpeningPurchasePrice decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"opening_purchase_price"`
	OpeningSalePrice     decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"opening_sale_price"`

	Transactions []Transaction `gorm:"constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

// IsLowStock reports whether the product has reached its alert threshold.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinimumStock
}

// InventoryValue is the current stock valued at the list price.
func (p *Product) InventoryValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

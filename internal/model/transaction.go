package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeIn  TransactionType = "in"  // stock-in: acquisition, records purchase price
	TypeOut TransactionType = "out" // stock-out: sale, records sale price
)

// Transaction is one stock movement. PurchasePrice and SalePrice are point-in-time
// snapshots: the side matching Type is the movement's unit price, the other side is the
// product's current value when the row was written. Reports only ever read the snapshots.
type Transaction struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty" validate:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty" validate:"-"`

	Type     TransactionType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=in out"`
	Quantity int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`

	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_price"`

	Notes string `json:"notes"`
}

// SignedQuantity is the movement's effect on the stock counter.
func (t *Transaction) SignedQuantity() int {
	if t.Type == TypeIn {
		return t.Quantity
	}
	return -t.Quantity
}

// Profit is (sale − purchase) × quantity for stock-outs, zero otherwise. Derived, never stored.
func (t *Transaction) Profit() decimal.Decimal {
	if t.Type != TypeOut {
		return decimal.Zero
	}
	return t.SalePrice.Sub(t.PurchasePrice).Mul(decimal.NewFromInt(int64(t.Quantity)))
}

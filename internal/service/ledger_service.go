package service

import (
	"database/sql"
	"fmt"
	"time"

	"go-stocktrack/internal/model"
	"go-stocktrack/internal/repository"
	"go-stocktrack/internal/ws"
	"go-stocktrack/pkg/apperror"
	"go-stocktrack/pkg/logger"
	"go-stocktrack/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor identifies who performs a mutation. Handlers build it from the JWT claims; the
// services never read ambient auth state.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// TxRunner is the slice of *gorm.DB the ledger needs to run an atomic unit.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type TransactionInput struct {
	ProductID uuid.UUID             `json:"product_id" validate:"uuid_required"`
	Type      model.TransactionType `json:"type" validate:"required,oneof=in out"`
	Quantity  int                   `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal       `json:"unit_price"`
	Notes     string                `json:"notes"`
}

// TransactionUpdateInput carries the editable fields of a transaction. Type is immutable.
type TransactionUpdateInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
}

// LedgerService is the only component allowed to mutate Product.StockQuantity,
// Product.PurchasePrice, Product.SalePrice and transaction rows. Every mutation runs as
// one database transaction with the product row locked, so the stock counter can never
// go negative under concurrent writes.
type LedgerService interface {
	CreateTransaction(input *TransactionInput, actor Actor) (*model.Transaction, error)
	UpdateTransaction(id uuid.UUID, input *TransactionUpdateInput, actor Actor) (*model.Transaction, error)
	DeleteTransaction(id uuid.UUID, actor Actor) error
	GetTransaction(id uuid.UUID) (*model.Transaction, error)
	ListTransactions(offset, limit int) ([]model.Transaction, int64, error)
	ReconcileStock(actor Actor) (int, error)
}

type ledgerService struct {
	db          TxRunner
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	logRepo     repository.ActionLogRepository
	hub         *ws.Hub
}

func NewLedgerService(db TxRunner, pRepo repository.ProductRepository, tRepo repository.TransactionRepository, lRepo repository.ActionLogRepository, hub *ws.Hub) LedgerService {
	return &ledgerService{
		db:          db,
		productRepo: pRepo,
		txRepo:      tRepo,
		logRepo:     lRepo,
		hub:         hub,
	}
}

func (s *ledgerService) CreateTransaction(input *TransactionInput, actor Actor) (*model.Transaction, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.UnitPrice.IsNegative() {
		return nil, apperror.NewValidationError("unit_price", "must not be negative")
	}

	var record *model.Transaction
	var product *model.Product
	var newStock int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.FindByIDForUpdate(tx, input.ProductID)
		if err != nil {
			return err
		}

		newStock = product.StockQuantity
		if input.Type == model.TypeOut {
			if product.StockQuantity < input.Quantity {
				return &apperror.InsufficientStockError{Available: product.StockQuantity}
			}
			newStock -= input.Quantity
		} else {
			newStock += input.Quantity
		}

		record = &model.Transaction{
			ProductID: product.ID,
			UserID:    actor.ID,
			Type:      input.Type,
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			TotalPrice: input.UnitPrice.Mul(
				decimal.NewFromInt(int64(input.Quantity))),
			Notes: input.Notes,
		}
		record.CreatedBy = actor.ID.String()
		record.UpdatedBy = actor.ID.String()

		// Snapshot policy: both sides are stored. The side matching the movement takes
		// the unit price and also becomes the product's new current price; the other
		// side freezes the product's current value.
		priceColumn := "purchase_price"
		if input.Type == model.TypeIn {
			record.PurchasePrice = input.UnitPrice
			record.SalePrice = product.SalePrice
		} else {
			record.SalePrice = input.UnitPrice
			record.PurchasePrice = product.PurchasePrice
			priceColumn = "sale_price"
		}

		if err := s.txRepo.Create(tx, record); err != nil {
			return err
		}
		if err := s.productRepo.UpdateStockAndPrice(tx, product.ID, newStock, priceColumn, input.UnitPrice, actor.ID.String()); err != nil {
			return err
		}

		return s.logRepo.Create(tx, &model.ActionLog{
			UserID:   actor.ID,
			Action:   fmt.Sprintf("Transaction %s created by %s", record.ID, actor.Name),
			LoggedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishStockUpdate("transaction_created", product, newStock, actor)

	created, err := s.txRepo.FindByID(record.ID)
	if err != nil {
		// The mutation committed; returning the bare record beats failing the call.
		return record, nil
	}
	return created, nil
}

func (s *ledgerService) UpdateTransaction(id uuid.UUID, input *TransactionUpdateInput, actor Actor) (*model.Transaction, error) {
	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.UnitPrice.IsNegative() {
		return nil, apperror.NewValidationError("unit_price", "must not be negative")
	}

	var record *model.Transaction
	var target *model.Product
	var targetStock int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.txRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			return err
		}
		target, err = s.productRepo.FindByIDForUpdate(tx, input.ProductID)
		if err != nil {
			return err
		}

		oldQuantity := record.Quantity

		if record.ProductID == input.ProductID {
			// Same product: adjust by the signed difference between old and new quantity.
			if record.Type == model.TypeOut {
				stockDifference := oldQuantity - input.Quantity
				if target.StockQuantity+stockDifference < 0 {
					return &apperror.InsufficientStockError{Available: target.StockQuantity}
				}
				targetStock = target.StockQuantity + stockDifference
			} else {
				targetStock = target.StockQuantity + (input.Quantity - oldQuantity)
				if targetStock < 0 {
					return &apperror.ConflictError{
						Message: fmt.Sprintf("cannot reduce stock-in below consumed stock, available: %d", target.StockQuantity),
					}
				}
			}
			if err := s.productRepo.UpdateStock(tx, target.ID, targetStock, actor.ID.String()); err != nil {
				return err
			}
		} else {
			// Product changed: reverse the old effect on the old product, then apply the
			// new effect to the new product.
			old, err := s.productRepo.FindByIDForUpdate(tx, record.ProductID)
			if err != nil {
				return err
			}
			oldStock := old.StockQuantity - record.SignedQuantity()
			if oldStock < 0 {
				return &apperror.ConflictError{
					Message: fmt.Sprintf("cannot reverse stock-in already consumed, available: %d", old.StockQuantity),
				}
			}
			if record.Type == model.TypeOut {
				if target.StockQuantity < input.Quantity {
					return &apperror.InsufficientStockError{Available: target.StockQuantity}
				}
				targetStock = target.StockQuantity - input.Quantity
			} else {
				targetStock = target.StockQuantity + input.Quantity
			}
			if err := s.productRepo.UpdateStock(tx, old.ID, oldStock, actor.ID.String()); err != nil {
				return err
			}
			if err := s.productRepo.UpdateStock(tx, target.ID, targetStock, actor.ID.String()); err != nil {
				return err
			}
		}

		record.ProductID = input.ProductID
		record.Quantity = input.Quantity
		record.UnitPrice = input.UnitPrice
		record.TotalPrice = input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))
		record.Notes = input.Notes
		record.UpdatedBy = actor.ID.String()
		if record.Type == model.TypeIn {
			record.PurchasePrice = input.UnitPrice
			record.SalePrice = target.SalePrice
		} else {
			record.SalePrice = input.UnitPrice
			record.PurchasePrice = target.PurchasePrice
		}
		if err := s.txRepo.Update(tx, record); err != nil {
			return err
		}

		return s.logRepo.Create(tx, &model.ActionLog{
			UserID:   actor.ID,
			Action:   fmt.Sprintf("Transaction %s updated by %s", record.ID, actor.Name),
			LoggedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishStockUpdate("transaction_updated", target, targetStock, actor)

	updated, err := s.txRepo.FindByID(record.ID)
	if err != nil {
		return record, nil
	}
	return updated, nil
}

func (s *ledgerService) DeleteTransaction(id uuid.UUID, actor Actor) error {
	var product *model.Product
	var newStock int

	err := s.db.Transaction(func(tx *gorm.DB) error {
		record, err := s.txRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			return err
		}
		product, err = s.productRepo.FindByIDForUpdate(tx, record.ProductID)
		if err != nil {
			return err
		}

		newStock = product.StockQuantity - record.SignedQuantity()
		if newStock < 0 {
			// Reversing a stock-in whose units were already sold would drive the counter
			// negative; the deletion is rejected rather than clamped.
			return &apperror.ConflictError{
				Message: fmt.Sprintf("cannot delete transaction, reversal would drive stock negative, available: %d", product.StockQuantity),
			}
		}

		// Roll the product's current price for the movement's side back to the most
		// recent remaining snapshot, or to the opening value when none remains. This is
		// what makes create-then-delete restore the product exactly.
		restored, ok, err := s.txRepo.LatestSnapshot(tx, product.ID, record.Type, record.ID)
		if err != nil {
			return err
		}
		priceColumn := "purchase_price"
		if record.Type == model.TypeOut {
			priceColumn = "sale_price"
			if !ok {
				restored = product.OpeningSalePrice
			}
		} else if !ok {
			restored = product.OpeningPurchasePrice
		}

		if err := s.productRepo.UpdateStockAndPrice(tx, product.ID, newStock, priceColumn, restored, actor.ID.String()); err != nil {
			return err
		}
		if err := s.txRepo.SoftDelete(tx, record, actor.ID.String()); err != nil {
			return err
		}

		return s.logRepo.Create(tx, &model.ActionLog{
			UserID:   actor.ID,
			Action:   fmt.Sprintf("Transaction %s deleted by %s", record.ID, actor.Name),
			LoggedAt: time.Now(),
		})
	})
	if err != nil {
		return err
	}

	s.publishStockUpdate("transaction_deleted", product, newStock, actor)
	return nil
}

func (s *ledgerService) GetTransaction(id uuid.UUID) (*model.Transaction, error) {
	return s.txRepo.FindByID(id)
}

func (s *ledgerService) ListTransactions(offset, limit int) ([]model.Transaction, int64, error) {
	return s.txRepo.FindAll(offset, limit)
}

// ReconcileStock recomputes every product's counter from its opening stock plus the
// signed sum of its live transactions, repairing any drift. Idempotent; meant for
// operational recovery, not the hot path.
func (s *ledgerService) ReconcileStock(actor Actor) (int, error) {
	products, _, err := s.productRepo.FindAll(0, 0)
	if err != nil {
		return 0, err
	}
	totals, err := s.txRepo.SignedQuantityTotals()
	if err != nil {
		return 0, err
	}

	repaired := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			p := &products[i]
			expected := p.OpeningStock + totals[p.ID]
			if expected == p.StockQuantity {
				continue
			}
			logger.Get().WithFields(logrus.Fields{
				"product":  p.ID,
				"current":  p.StockQuantity,
				"expected": expected,
			}).Warn("stock drift repaired")
			if err := s.productRepo.UpdateStock(tx, p.ID, expected, actor.ID.String()); err != nil {
				return err
			}
			repaired++
		}
		if repaired == 0 {
			return nil
		}
		return s.logRepo.Create(tx, &model.ActionLog{
			UserID:   actor.ID,
			Action:   fmt.Sprintf("Stock reconciliation repaired %d products", repaired),
			LoggedAt: time.Now(),
		})
	})
	if err != nil {
		return 0, err
	}
	return repaired, nil
}

func (s *ledgerService) publishStockUpdate(action string, product *model.Product, newStock int, actor Actor) {
	if s.hub == nil || product == nil {
		return
	}
	s.hub.Publish(ws.Event{
		Type:   "stock_update",
		Action: action,
		Payload: map[string]interface{}{
			"product_id": product.ID,
			"name":       product.Name,
			"new_stock":  newStock,
			"actor":      actor.Name,
		},
	})
	if newStock <= product.MinimumStock {
		s.hub.Publish(ws.Event{
			Type:   "low_stock_alert",
			Action: "threshold_reached",
			Payload: map[string]interface{}{
				"product_id":    product.ID,
				"name":          product.Name,
				"stock":         newStock,
				"minimum_stock": product.MinimumStock,
			},
			Message: fmt.Sprintf("Low stock for %s: %d units remaining", product.Name, newStock),
		})
	}
}

package repository

import (
	"errors"
	"time"

	"go-stocktrack/internal/model"
	"go-stocktrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	// Mutations run inside the ledger's database transaction.
	Create(tx *gorm.DB, transaction *model.Transaction) error
	Update(tx *gorm.DB, transaction *model.Transaction) error
	SoftDelete(tx *gorm.DB, transaction *model.Transaction, deletedBy string) error
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error)
	// LatestSnapshot returns the most recent live snapshot price of the given side for a
	// product, excluding one transaction (the row being reversed). ok is false when the
	// product has no other movement of that type.
	LatestSnapshot(tx *gorm.DB, productID uuid.UUID, txType model.TransactionType, excludeID uuid.UUID) (decimal.Decimal, bool, error)

	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindAll(offset, limit int) ([]model.Transaction, int64, error)
	FindRecent(n int) ([]model.Transaction, error)
	// FindInRange returns live transactions for the period, optionally filtered by type,
	// ordered chronologically. Reporting derives everything else from these rows.
	FindInRange(start, end time.Time, txType model.TransactionType) ([]model.Transaction, error)

	CountAll() (int64, error)
	CountByType(txType model.TransactionType) (int64, error)
	CountSince(since time.Time) (int64, error)
	CountBetween(start, end time.Time) (int64, error)
	SumTotalByType(txType model.TransactionType) (decimal.Decimal, error)

	// FinancialTotals sums purchases, sales and profit from the recorded snapshots.
	// Zero start/end means all time.
	FinancialTotals(start, end time.Time) (*FinancialTotals, error)
	// TopProducts returns the n best sellers by quantity sold.
	TopProducts(n int) ([]TopProduct, error)

	// SignedQuantityTotals is the reconciliation sum: per product, Σ(+qty for in, −qty
	// for out) over live rows.
	SignedQuantityTotals() (map[uuid.UUID]int, error)
}

// FinancialTotals are snapshot-priced rollups for the dashboard.
type FinancialTotals struct {
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
}

type TopProduct struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Name          string          `json:"name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Create(transaction).Error
}

func (r *transactionRepo) Update(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Save(transaction).Error
}

func (r *transactionRepo) SoftDelete(tx *gorm.DB, transaction *model.Transaction, deletedBy string) error {
	if err := tx.Model(&model.Transaction{}).Where("id = ?", transaction.ID).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return tx.Delete(transaction).Error
}

func (r *transactionRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperror.NotFoundError{Resource: "transaction"}
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) LatestSnapshot(tx *gorm.DB, productID uuid.UUID, txType model.TransactionType, excludeID uuid.UUID) (decimal.Decimal, bool, error) {
	column := "purchase_price"
	if txType == model.TypeOut {
		column = "sale_price"
	}
	var last model.Transaction
	err := tx.Where("product_id = ? AND type = ? AND id <> ?", productID, txType, excludeID).
		Order("created_at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	if column == "sale_price" {
		return last.SalePrice, true, nil
	}
	return last.PurchasePrice, true, nil
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Preload("Product").Preload("User").First(&transaction, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperror.NotFoundError{Resource: "transaction"}
	}
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) FindAll(offset, limit int) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64
	if err := r.db.Model(&model.Transaction{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := r.db.Preload("Product").Preload("User").Order("created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *transactionRepo) FindRecent(n int) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.Preload("Product").Preload("User").
		Order("created_at DESC").
		Limit(n).
		Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindInRange(start, end time.Time, txType model.TransactionType) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.Preload("Product").
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC")
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	if err := q.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *transactionRepo) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).Count(&count).Error
	return count, err
}

func (r *transactionRepo) CountByType(txType model.TransactionType) (int64, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).Where("type = ?", txType).Count(&count).Error
	return count, err
}

func (r *transactionRepo) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func (r *transactionRepo) CountBetween(start, end time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Transaction{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *transactionRepo) SumTotalByType(txType model.TransactionType) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Transaction{}).
		Where("type = ?", txType).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	return total, err
}

func (r *transactionRepo) FinancialTotals(start, end time.Time) (*FinancialTotals, error) {
	q := r.db.Model(&model.Transaction{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = 'in' THEN purchase_price * quantity ELSE 0 END), 0) as total_purchases,
			COALESCE(SUM(CASE WHEN type = 'out' THEN sale_price * quantity ELSE 0 END), 0) as total_sales,
			COALESCE(SUM(CASE WHEN type = 'out' THEN (sale_price - purchase_price) * quantity ELSE 0 END), 0) as total_profit
		`)
	if !start.IsZero() || !end.IsZero() {
		q = q.Where("created_at BETWEEN ? AND ?", start, end)
	}
	var totals FinancialTotals
	if err := q.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *transactionRepo) TopProducts(n int) ([]TopProduct, error) {
	var results []TopProduct
	err := r.db.Model(&model.Transaction{}).
		Select(`
			transactions.product_id,
			products.name,
			SUM(transactions.quantity) as total_quantity,
			SUM(transactions.sale_price * transactions.quantity) as total_sales,
			SUM((transactions.sale_price - transactions.purchase_price) * transactions.quantity) as total_profit
		`).
		Joins("JOIN products ON products.id = transactions.product_id").
		Where("transactions.type = ?", model.TypeOut).
		Group("transactions.product_id, products.name").
		Order("total_quantity DESC").
		Limit(n).
		Scan(&results).Error
	return results, err
}

func (r *transactionRepo) SignedQuantityTotals() (map[uuid.UUID]int, error) {
	rows, err := r.db.Model(&model.Transaction{}).
		Select(`product_id, COALESCE(SUM(CASE WHEN type = 'in' THEN quantity ELSE -quantity END), 0) as total`).
		Group("product_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]int)
	for rows.Next() {
		var productID uuid.UUID
		var total int
		if err := rows.Scan(&productID, &total); err != nil {
			return nil, err
		}
		totals[productID] = total
	}
	return totals, rows.Err()
}

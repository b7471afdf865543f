package service

import (
	"database/sql"
	"sort"
	"time"

	"go-stocktrack/internal/model"
	"go-stocktrack/internal/repository"
	"go-stocktrack/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeTxRunner executes the unit of work directly; the mocks below ignore the tx handle.
type fakeTxRunner struct{}

func (fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	return fc(nil)
}

type mockProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newMockProductRepo(products ...*model.Product) *mockProductRepo {
	m := &mockProductRepo{products: map[uuid.UUID]*model.Product{}}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) FindAll(offset, limit int) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *mockProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, &apperror.NotFoundError{Resource: "product"}
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return m.FindByID(id)
}

func (m *mockProductRepo) FindByBarcode(barcode string) (*model.Product, error) {
	for _, p := range m.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, &apperror.NotFoundError{Resource: "product"}
}

func (m *mockProductRepo) FindLowStock() ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(product *model.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Delete(id uuid.UUID, deletedBy string) error {
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	p, ok := m.products[id]
	if !ok {
		return &apperror.NotFoundError{Resource: "product"}
	}
	p.StockQuantity = newStock
	p.UpdatedBy = updatedBy
	return nil
}

func (m *mockProductRepo) UpdateStockAndPrice(tx *gorm.DB, id uuid.UUID, newStock int, priceColumn string, price decimal.Decimal, updatedBy string) error {
	p, ok := m.products[id]
	if !ok {
		return &apperror.NotFoundError{Resource: "product"}
	}
	p.StockQuantity = newStock
	if priceColumn == "sale_price" {
		p.SalePrice = price
	} else {
		p.PurchasePrice = price
	}
	p.UpdatedBy = updatedBy
	return nil
}

func (m *mockProductRepo) CountAll() (int64, error) {
	return int64(len(m.products)), nil
}

func (m *mockProductRepo) TotalInventoryValue() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.products {
		total = total.Add(p.InventoryValue())
	}
	return total, nil
}

type mockTransactionRepo struct {
	records []*model.Transaction
	deleted map[uuid.UUID]bool
}

func newMockTransactionRepo(records ...*model.Transaction) *mockTransactionRepo {
	m := &mockTransactionRepo{deleted: map[uuid.UUID]bool{}}
	for _, r := range records {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		m.records = append(m.records, r)
	}
	return m
}

func (m *mockTransactionRepo) live() []*model.Transaction {
	var out []*model.Transaction
	for _, r := range m.records {
		if !m.deleted[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func (m *mockTransactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}
	m.records = append(m.records, transaction)
	return nil
}

func (m *mockTransactionRepo) Update(tx *gorm.DB, transaction *model.Transaction) error {
	for i, r := range m.records {
		if r.ID == transaction.ID {
			m.records[i] = transaction
			return nil
		}
	}
	return &apperror.NotFoundError{Resource: "transaction"}
}

func (m *mockTransactionRepo) SoftDelete(tx *gorm.DB, transaction *model.Transaction, deletedBy string) error {
	m.deleted[transaction.ID] = true
	return nil
}

func (m *mockTransactionRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Transaction, error) {
	for _, r := range m.live() {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, &apperror.NotFoundError{Resource: "transaction"}
}

func (m *mockTransactionRepo) LatestSnapshot(tx *gorm.DB, productID uuid.UUID, txType model.TransactionType, excludeID uuid.UUID) (decimal.Decimal, bool, error) {
	var latest *model.Transaction
	for _, r := range m.live() {
		if r.ProductID != productID || r.Type != txType || r.ID == excludeID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return decimal.Zero, false, nil
	}
	if txType == model.TypeOut {
		return latest.SalePrice, true, nil
	}
	return latest.PurchasePrice, true, nil
}

func (m *mockTransactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	for _, r := range m.live() {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, &apperror.NotFoundError{Resource: "transaction"}
}

func (m *mockTransactionRepo) FindAll(offset, limit int) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	for _, r := range m.live() {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *mockTransactionRepo) FindRecent(n int) ([]model.Transaction, error) {
	live := m.live()
	sort.Slice(live, func(i, j int) bool { return live[i].CreatedAt.After(live[j].CreatedAt) })
	if len(live) > n {
		live = live[:n]
	}
	var out []model.Transaction
	for _, r := range live {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockTransactionRepo) FindInRange(start, end time.Time, txType model.TransactionType) ([]model.Transaction, error) {
	live := m.live()
	sort.Slice(live, func(i, j int) bool { return live[i].CreatedAt.Before(live[j].CreatedAt) })
	var out []model.Transaction
	for _, r := range live {
		if r.CreatedAt.Before(start) || r.CreatedAt.After(end) {
			continue
		}
		if txType != "" && r.Type != txType {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockTransactionRepo) CountAll() (int64, error) {
	return int64(len(m.live())), nil
}

func (m *mockTransactionRepo) CountByType(txType model.TransactionType) (int64, error) {
	var count int64
	for _, r := range m.live() {
		if r.Type == txType {
			count++
		}
	}
	return count, nil
}

func (m *mockTransactionRepo) CountSince(since time.Time) (int64, error) {
	var count int64
	for _, r := range m.live() {
		if !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockTransactionRepo) CountBetween(start, end time.Time) (int64, error) {
	var count int64
	for _, r := range m.live() {
		if !r.CreatedAt.Before(start) && !r.CreatedAt.After(end) {
			count++
		}
	}
	return count, nil
}

func (m *mockTransactionRepo) SumTotalByType(txType model.TransactionType) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, r := range m.live() {
		if r.Type == txType {
			total = total.Add(r.TotalPrice)
		}
	}
	return total, nil
}

func (m *mockTransactionRepo) FinancialTotals(start, end time.Time) (*repository.FinancialTotals, error) {
	totals := &repository.FinancialTotals{
		TotalPurchases: decimal.Zero,
		TotalSales:     decimal.Zero,
		TotalProfit:    decimal.Zero,
	}
	for _, r := range m.live() {
		if !start.IsZero() && (r.CreatedAt.Before(start) || r.CreatedAt.After(end)) {
			continue
		}
		qty := decimal.NewFromInt(int64(r.Quantity))
		if r.Type == model.TypeIn {
			totals.TotalPurchases = totals.TotalPurchases.Add(r.PurchasePrice.Mul(qty))
		} else {
			totals.TotalSales = totals.TotalSales.Add(r.SalePrice.Mul(qty))
			totals.TotalProfit = totals.TotalProfit.Add(r.Profit())
		}
	}
	return totals, nil
}

func (m *mockTransactionRepo) TopProducts(n int) ([]repository.TopProduct, error) {
	return nil, nil
}

func (m *mockTransactionRepo) SignedQuantityTotals() (map[uuid.UUID]int, error) {
	totals := map[uuid.UUID]int{}
	for _, r := range m.live() {
		totals[r.ProductID] += r.SignedQuantity()
	}
	return totals, nil
}

type mockActionLogRepo struct {
	entries []*model.ActionLog
}

func (m *mockActionLogRepo) Create(tx *gorm.DB, entry *model.ActionLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockActionLogRepo) FindRecent(n int) ([]model.ActionLog, error) {
	var out []model.ActionLog
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out, nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
	productCnt map[uuid.UUID]int64
}

func newMockCategoryRepo(categories ...*model.Category) *mockCategoryRepo {
	m := &mockCategoryRepo{
		categories: map[uuid.UUID]*model.Category{},
		productCnt: map[uuid.UUID]int64{},
	}
	for _, c := range categories {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepo) Create(category *model.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) FindAll() ([]model.Category, error) {
	var out []model.Category
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCategoryRepo) FindByID(id uuid.UUID) (*model.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, &apperror.NotFoundError{Resource: "category"}
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) FindByName(name string) (*model.Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, &apperror.NotFoundError{Resource: "category"}
}

func (m *mockCategoryRepo) Update(category *model.Category) error {
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) Delete(id uuid.UUID, deletedBy string) error {
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) CountProducts(id uuid.UUID) (int64, error) {
	return m.productCnt[id], nil
}

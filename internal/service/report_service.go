package service

import (
	"sort"
	"time"

	"go-stocktrack/internal/model"
	"go-stocktrack/internal/repository"
	"go-stocktrack/pkg/apperror"

	"github.com/shopspring/decimal"
)

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

type TypeFilter string

const (
	FilterAll       TypeFilter = "all"
	FilterSales     TypeFilter = "sales"     // stock-out
	FilterPurchases TypeFilter = "purchases" // stock-in
)

// ReportRow is one bucket of the period report. All amounts come from the rows' recorded
// snapshots, never from current product prices, so historical reports stay stable.
type ReportRow struct {
	Date             string          `json:"date"`
	SalesQuantity    int             `json:"sales_quantity"`
	PurchaseQuantity int             `json:"purchase_quantity"`
	SalesAmount      decimal.Decimal `json:"sales_amount"`
	PurchaseAmount   decimal.Decimal `json:"purchase_amount"`
	Profit           decimal.Decimal `json:"profit"`
}

type ReportSummary struct {
	TotalSalesQuantity    int             `json:"total_sales_quantity"`
	TotalPurchaseQuantity int             `json:"total_purchase_quantity"`
	TotalSales            decimal.Decimal `json:"total_sales"`
	TotalPurchases        decimal.Decimal `json:"total_purchases"`
	TotalProfit           decimal.Decimal `json:"total_profit"`
}

// ProductReportRow carries the same metric shape grouped by product.
type ProductReportRow struct {
	Name             string          `json:"name"`
	SalesQuantity    int             `json:"sales_quantity"`
	PurchaseQuantity int             `json:"purchase_quantity"`
	SalesAmount      decimal.Decimal `json:"sales_amount"`
	PurchaseAmount   decimal.Decimal `json:"purchase_amount"`
	Profit           decimal.Decimal `json:"profit"`
}

type TransactionStatistics struct {
	TotalIn            decimal.Decimal     `json:"total_in"`
	TotalOut           decimal.Decimal     `json:"total_out"`
	TotalTransactions  int64               `json:"total_transactions"`
	RecentTransactions []model.Transaction `json:"recent_transactions"`
}

type TransactionCounts struct {
	Total     int64 `json:"total"`
	In        int64 `json:"in"`
	Out       int64 `json:"out"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"this_week"`
	ThisMonth int64 `json:"this_month"`
}

type StockAlerts struct {
	Total    int `json:"total"`
	Critical int `json:"critical"` // stock exhausted
	Warning  int `json:"warning"`  // low but not zero
}

type Dashboard struct {
	TotalProducts      int64                       `json:"total_products"`
	TotalValue         decimal.Decimal             `json:"total_value"`
	LowStockProducts   []model.Product             `json:"low_stock_products"`
	StockAlerts        StockAlerts                 `json:"stock_alerts"`
	TransactionStats   TransactionCounts           `json:"transaction_stats"`
	FinancialStats     repository.FinancialTotals  `json:"financial_stats"`
	MonthlySales       decimal.Decimal             `json:"monthly_sales"`
	MonthlyProfit      decimal.Decimal             `json:"monthly_profit"`
	TopProducts        []repository.TopProduct     `json:"top_products"`
	RecentTransactions []model.Transaction         `json:"recent_transactions"`
}

// ReportService computes read-only rollups over the transaction history. It never
// mutates state.
type ReportService interface {
	PeriodReport(start, end time.Time, groupBy GroupBy, filter TypeFilter) ([]ReportRow, *ReportSummary, error)
	ProductReport(start, end time.Time) ([]ProductReportRow, error)
	Statistics() (*TransactionStatistics, error)
	Dashboard() (*Dashboard, error)
}

type reportService struct {
	txRepo      repository.TransactionRepository
	productRepo repository.ProductRepository
}

func NewReportService(tRepo repository.TransactionRepository, pRepo repository.ProductRepository) ReportService {
	return &reportService{txRepo: tRepo, productRepo: pRepo}
}

func (s *reportService) PeriodReport(start, end time.Time, groupBy GroupBy, filter TypeFilter) ([]ReportRow, *ReportSummary, error) {
	layout, err := bucketLayout(groupBy)
	if err != nil {
		return nil, nil, err
	}
	txType, err := filterType(filter)
	if err != nil {
		return nil, nil, err
	}

	transactions, err := s.txRepo.FindInRange(start, end, txType)
	if err != nil {
		return nil, nil, err
	}

	buckets := map[string]*ReportRow{}
	for i := range transactions {
		t := &transactions[i]
		key := t.CreatedAt.Format(layout)
		row, ok := buckets[key]
		if !ok {
			row = &ReportRow{
				Date:           key,
				SalesAmount:    decimal.Zero,
				PurchaseAmount: decimal.Zero,
				Profit:         decimal.Zero,
			}
			buckets[key] = row
		}
		accumulate(t, &row.SalesQuantity, &row.PurchaseQuantity, &row.SalesAmount, &row.PurchaseAmount, &row.Profit)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]ReportRow, 0, len(keys))
	summary := &ReportSummary{
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		TotalProfit:    decimal.Zero,
	}
	for _, k := range keys {
		row := buckets[k]
		rows = append(rows, *row)
		summary.TotalSalesQuantity += row.SalesQuantity
		summary.TotalPurchaseQuantity += row.PurchaseQuantity
		summary.TotalSales = summary.TotalSales.Add(row.SalesAmount)
		summary.TotalPurchases = summary.TotalPurchases.Add(row.PurchaseAmount)
		summary.TotalProfit = summary.TotalProfit.Add(row.Profit)
	}
	return rows, summary, nil
}

func (s *reportService) ProductReport(start, end time.Time) ([]ProductReportRow, error) {
	transactions, err := s.txRepo.FindInRange(start, end, "")
	if err != nil {
		return nil, err
	}

	byProduct := map[string]*ProductReportRow{}
	for i := range transactions {
		t := &transactions[i]
		name := ""
		if t.Product != nil {
			name = t.Product.Name
		}
		row, ok := byProduct[name]
		if !ok {
			row = &ProductReportRow{
				Name:           name,
				SalesAmount:    decimal.Zero,
				PurchaseAmount: decimal.Zero,
				Profit:         decimal.Zero,
			}
			byProduct[name] = row
		}
		accumulate(t, &row.SalesQuantity, &row.PurchaseQuantity, &row.SalesAmount, &row.PurchaseAmount, &row.Profit)
	}

	names := make([]string, 0, len(byProduct))
	for n := range byProduct {
		names = append(names, n)
	}
	sort.Strings(names)

	rows := make([]ProductReportRow, 0, len(names))
	for _, n := range names {
		rows = append(rows, *byProduct[n])
	}
	return rows, nil
}

func (s *reportService) Statistics() (*TransactionStatistics, error) {
	totalIn, err := s.txRepo.SumTotalByType(model.TypeIn)
	if err != nil {
		return nil, err
	}
	totalOut, err := s.txRepo.SumTotalByType(model.TypeOut)
	if err != nil {
		return nil, err
	}
	count, err := s.txRepo.CountAll()
	if err != nil {
		return nil, err
	}
	recent, err := s.txRepo.FindRecent(5)
	if err != nil {
		return nil, err
	}
	return &TransactionStatistics{
		TotalIn:            totalIn,
		TotalOut:           totalOut,
		TotalTransactions:  count,
		RecentTransactions: recent,
	}, nil
}

func (s *reportService) Dashboard() (*Dashboard, error) {
	now := time.Now()

	totalProducts, err := s.productRepo.CountAll()
	if err != nil {
		return nil, err
	}
	totalValue, err := s.productRepo.TotalInventoryValue()
	if err != nil {
		return nil, err
	}
	lowStock, err := s.productRepo.FindLowStock()
	if err != nil {
		return nil, err
	}

	alerts := StockAlerts{Total: len(lowStock)}
	for i := range lowStock {
		if lowStock[i].StockQuantity == 0 {
			alerts.Critical++
		} else {
			alerts.Warning++
		}
	}

	counts := TransactionCounts{}
	if counts.Total, err = s.txRepo.CountAll(); err != nil {
		return nil, err
	}
	if counts.In, err = s.txRepo.CountByType(model.TypeIn); err != nil {
		return nil, err
	}
	if counts.Out, err = s.txRepo.CountByType(model.TypeOut); err != nil {
		return nil, err
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if counts.Today, err = s.txRepo.CountSince(startOfDay); err != nil {
		return nil, err
	}
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // weeks start on Monday
	}
	startOfWeek := startOfDay.AddDate(0, 0, -(weekday - 1))
	if counts.ThisWeek, err = s.txRepo.CountBetween(startOfWeek, now); err != nil {
		return nil, err
	}
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if counts.ThisMonth, err = s.txRepo.CountBetween(startOfMonth, now); err != nil {
		return nil, err
	}

	financial, err := s.txRepo.FinancialTotals(time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	monthly, err := s.txRepo.FinancialTotals(startOfMonth, now)
	if err != nil {
		return nil, err
	}

	top, err := s.txRepo.TopProducts(5)
	if err != nil {
		return nil, err
	}
	recent, err := s.txRepo.FindRecent(5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		TotalProducts:      totalProducts,
		TotalValue:         totalValue,
		LowStockProducts:   lowStock,
		StockAlerts:        alerts,
		TransactionStats:   counts,
		FinancialStats:     *financial,
		MonthlySales:       monthly.TotalSales,
		MonthlyProfit:      monthly.TotalProfit,
		TopProducts:        top,
		RecentTransactions: recent,
	}, nil
}

func accumulate(t *model.Transaction, salesQty, purchaseQty *int, salesAmount, purchaseAmount, profit *decimal.Decimal) {
	if t.Type == model.TypeOut {
		*salesQty += t.Quantity
		*salesAmount = salesAmount.Add(t.TotalPrice)
		*profit = profit.Add(t.Profit())
	} else {
		*purchaseQty += t.Quantity
		*purchaseAmount = purchaseAmount.Add(t.TotalPrice)
	}
}

func bucketLayout(groupBy GroupBy) (string, error) {
	switch groupBy {
	case GroupByDay, "":
		return "2006-01-02", nil
	case GroupByMonth:
		return "2006-01", nil
	case GroupByYear:
		return "2006", nil
	default:
		return "", apperror.NewValidationError("group_by", "must be one of: day month year")
	}
}

func filterType(filter TypeFilter) (model.TransactionType, error) {
	switch filter {
	case FilterAll, "":
		return "", nil
	case FilterSales:
		return model.TypeOut, nil
	case FilterPurchases:
		return model.TypeIn, nil
	default:
		return "", apperror.NewValidationError("type", "must be one of: all sales purchases")
	}
}

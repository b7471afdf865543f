package service

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Date", "Sales Qty", "Purchase Qty", "Sales Amount", "Purchase Amount", "Profit"}

// WriteReportCSV streams the period report with a trailing Total row.
func WriteReportCSV(w io.Writer, rows []ReportRow, summary *ReportSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Date,
			fmt.Sprint(row.SalesQuantity),
			fmt.Sprint(row.PurchaseQuantity),
			row.SalesAmount.StringFixed(2),
			row.PurchaseAmount.StringFixed(2),
			row.Profit.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{
		"Total",
		fmt.Sprint(summary.TotalSalesQuantity),
		fmt.Sprint(summary.TotalPurchaseQuantity),
		summary.TotalSales.StringFixed(2),
		summary.TotalPurchases.StringFixed(2),
		summary.TotalProfit.StringFixed(2),
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportXLSX streams the same layout as a spreadsheet.
func WriteReportXLSX(w io.Writer, rows []ReportRow, summary *ReportSummary) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}

	writeRow := func(rowNo int, values []interface{}) error {
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNo)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	for i, row := range rows {
		values := []interface{}{
			row.Date,
			row.SalesQuantity,
			row.PurchaseQuantity,
			row.SalesAmount.InexactFloat64(),
			row.PurchaseAmount.InexactFloat64(),
			row.Profit.InexactFloat64(),
		}
		if err := writeRow(i+2, values); err != nil {
			return err
		}
	}

	if err := writeRow(len(rows)+3, []interface{}{
		"Total",
		summary.TotalSalesQuantity,
		summary.TotalPurchaseQuantity,
		summary.TotalSales.InexactFloat64(),
		summary.TotalPurchases.InexactFloat64(),
		summary.TotalProfit.InexactFloat64(),
	}); err != nil {
		return err
	}

	return f.Write(w)
}

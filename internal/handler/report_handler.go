package handler

import (
	"bytes"
	"fmt"
	"time"

	"go-stocktrack/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Index returns the period report and its summary.
// GET /api/v1/reports?start_date=...&end_date=...&group_by=day&type=all
func (h *ReportHandler) Index(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	rows, summary, err := h.reports.PeriodReport(start, end,
		service.GroupBy(c.Query("group_by", "day")),
		service.TypeFilter(c.Query("type", "all")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"report": rows, "summary": summary})
}

// ProductReport returns the same metrics grouped by product.
// GET /api/v1/reports/products
func (h *ReportHandler) ProductReport(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	rows, err := h.reports.ProductReport(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

// Export streams the period report as CSV or XLSX with the same column layout.
// GET /api/v1/reports/export?format=csv|xlsx
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	rows, summary, err := h.reports.PeriodReport(start, end,
		service.GroupBy(c.Query("group_by", "day")),
		service.TypeFilter(c.Query("type", "all")))
	if err != nil {
		return respondError(c, err)
	}

	format := c.Query("format", "xlsx")
	filename := fmt.Sprintf("report-%s-%s.%s", start.Format("2006-01-02"), end.Format("2006-01-02"), format)

	var buf bytes.Buffer
	switch format {
	case "csv":
		if err := service.WriteReportCSV(&buf, rows, summary); err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv")
	case "xlsx":
		if err := service.WriteReportXLSX(&buf, rows, summary); err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		return c.Status(400).JSON(fiber.Map{"error": "format must be csv or xlsx"})
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(buf.Bytes())
}

// Statistics returns the transaction totals block.
// GET /api/v1/transactions/statistics
func (h *ReportHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.reports.Statistics()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// Dashboard returns the overview rollup.
// GET /api/v1/dashboard
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.reports.Dashboard()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dashboard)
}

func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	const layout = "2006-01-02"
	now := time.Now()

	start := now.AddDate(0, -1, 0)
	if v := c.Query("start_date"); v != "" {
		parsed, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date must be YYYY-MM-DD")
		}
		start = parsed
	}
	end := now
	if v := c.Query("end_date"); v != "" {
		parsed, err := time.Parse(layout, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date must be YYYY-MM-DD")
		}
		// Include the whole end day.
		end = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}

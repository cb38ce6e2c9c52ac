package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"course-payments/internal/domains/payment/model"
	"course-payments/pkg/logger"
)

// =====================================================
// REVENUE AGGREGATION
// =====================================================

// RevenueWindow returns [start, now] for period, in UTC.
//   day   - midnight today
//   week  - now minus 7 days
//   month - now minus one calendar month
//   year  - now minus one calendar year
func RevenueWindow(period string, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	switch period {
	case model.PeriodDay:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), now, nil
	case model.PeriodWeek:
		return now.AddDate(0, 0, -7), now, nil
	case model.PeriodMonth:
		return now.AddDate(0, -1, 0), now, nil
	case model.PeriodYear:
		return now.AddDate(-1, 0, 0), now, nil
	}
	return time.Time{}, time.Time{}, model.NewValidationError(
		fmt.Sprintf("invalid period %q: must be one of day, week, month, year", period))
}

func (s *paymentService) GetRevenueStats(ctx context.Context, period string) (*model.RevenueStats, error) {
	start, end, err := RevenueWindow(period, s.now())
	if err != nil {
		return nil, err
	}

	cacheKey := model.CacheKeyStatsPrefix + period
	if s.cache != nil {
		var cached model.RevenueStats
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warn("stats cache read failed", map[string]interface{}{"period": period, "error": err.Error()})
		} else if found {
			return &cached, nil
		}
	}

	breakdown, err := s.paymentRepo.AggregateByStatus(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	stats := &model.RevenueStats{
		Period:       period,
		StartDate:    start,
		EndDate:      end,
		ByStatus:     breakdown,
		TotalRevenue: decimal.Zero,
	}
	if stats.ByStatus == nil {
		stats.ByStatus = []model.RevenueStatusBreakdown{}
	}
	for _, b := range breakdown {
		stats.TotalCount += b.Count
		if b.Status == model.PaymentStatusSuccess {
			stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalAmount)
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.StatsTTL); err != nil {
			logger.Warn("stats cache write failed", map[string]interface{}{"period": period, "error": err.Error()})
		}
	}

	return stats, nil
}

// ExportRevenueStats renders the revenue aggregate for period as a workbook.
func (s *paymentService) ExportRevenueStats(ctx context.Context, period string) (*excelize.File, error) {
	stats, err := s.GetRevenueStats(ctx, period)
	if err != nil {
		return nil, err
	}

	f, err := buildRevenueExcelFile(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildRevenueExcelFile(stats *model.RevenueStats) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Revenue"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	// Summary block
	f.SetCellValue(sheetName, "A1", "Period")
	f.SetCellValue(sheetName, "B1", stats.Period)
	f.SetCellValue(sheetName, "A2", "From")
	f.SetCellValue(sheetName, "B2", stats.StartDate.Format(time.RFC3339))
	f.SetCellValue(sheetName, "A3", "To")
	f.SetCellValue(sheetName, "B3", stats.EndDate.Format(time.RFC3339))
	f.SetCellValue(sheetName, "A4", "Total payments")
	f.SetCellValue(sheetName, "B4", stats.TotalCount)
	f.SetCellValue(sheetName, "A5", "Total revenue")
	f.SetCellValue(sheetName, "B5", stats.TotalRevenue.InexactFloat64())

	// Breakdown table from row 7
	headers := []string{"Status", "Count", "Total Amount"}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 7)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A7", "C7", headerStyle)
		f.SetCellStyle(sheetName, "A1", "A5", headerStyle)
	}

	for i, b := range stats.ByStatus {
		rowNum := i + 8
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}
		f.SetCellValue(sheetName, cell(1), b.Status)
		f.SetCellValue(sheetName, cell(2), b.Count)
		f.SetCellValue(sheetName, cell(3), b.TotalAmount.InexactFloat64())
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "C", 26)

	return f, nil
}

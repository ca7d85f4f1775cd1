package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"grocery-backend/internal/domains/promotion/model"
)

const (
	usageReportSheet    = "Usages"
	usageReportPageSize = 500
)

var usageReportHeaders = []string{
	"Usage ID",
	"Order ID",
	"User ID",
	"Order Amount",
	"Discount Amount",
	"Used At",
}

// ExportUsageReport builds a spreadsheet of the whole ledger of one code, newest first.
func (s *promotionService) ExportUsageReport(ctx context.Context, id uuid.UUID) (*model.UsageReport, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var usages []*model.PromoCodeUsage
	for page := 1; ; page++ {
		batch, total, err := s.repo.ListUsages(ctx, id, page, usageReportPageSize)
		if err != nil {
			return nil, fmt.Errorf("usage report: %w", err)
		}
		usages = append(usages, batch...)
		if len(batch) == 0 || len(usages) >= total {
			break
		}
	}

	f, err := buildUsageWorkbook(promo, usages)
	if err != nil {
		return nil, fmt.Errorf("failed to build usage workbook: %w", err)
	}

	return &model.UsageReport{
		Code:     promo.Code,
		Rows:     len(usages),
		Workbook: f,
	}, nil
}

func buildUsageWorkbook(promo *model.PromoCode, usages []*model.PromoCodeUsage) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", usageReportSheet); err != nil {
		return nil, err
	}

	// Row 1: header
	for col, header := range usageReportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(usageReportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(usageReportHeaders), 1)
		_ = f.SetCellStyle(usageReportSheet, "A1", last, headerStyle)
	}

	// Data rows start at row 2
	for i, u := range usages {
		userID := ""
		if u.UserID != nil {
			userID = u.UserID.String()
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			u.ID.String(),
			u.OrderID.String(),
			userID,
			u.OrderAmount.InexactFloat64(),
			u.DiscountAmount.InexactFloat64(),
			u.UsedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(usageReportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	f.SetDocProps(&excelize.DocProperties{
		Title:   "Usage report " + promo.Code,
		Creator: "grocery-backend",
	})

	return f, nil
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery-backend/internal/domains/promotion/model"
)

func usageRow(promoID uuid.UUID, userID *uuid.UUID) *model.PromoCodeUsage {
	return &model.PromoCodeUsage{
		ID:             uuid.New(),
		PromoCodeID:    promoID,
		OrderID:        uuid.New(),
		UserID:         userID,
		OrderAmount:    dec("40.00"),
		DiscountAmount: dec("4.00"),
		UsedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestExportUsageReport_ReadsEveryPage(t *testing.T) {
	promo := &model.PromoCode{ID: uuid.New(), Code: "SAVE10"}
	user := uuid.New()
	first := []*model.PromoCodeUsage{usageRow(promo.ID, &user), usageRow(promo.ID, nil)}
	second := []*model.PromoCodeUsage{usageRow(promo.ID, &user)}

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, promo.ID).Return(promo, nil)
	repo.On("ListUsages", mock.Anything, promo.ID, 1, usageReportPageSize).Return(first, 3, nil)
	repo.On("ListUsages", mock.Anything, promo.ID, 2, usageReportPageSize).Return(second, 3, nil)
	svc := newTestService(repo)

	report, err := svc.ExportUsageReport(context.Background(), promo.ID)

	require.NoError(t, err)
	defer report.Workbook.Close()
	assert.Equal(t, "SAVE10", report.Code)
	assert.Equal(t, 3, report.Rows)

	rows, err := report.Workbook.GetRows(usageReportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, usageReportHeaders, rows[0])
	assert.Equal(t, first[0].ID.String(), rows[1][0])
	assert.Equal(t, user.String(), rows[1][2])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, second[0].OrderID.String(), rows[3][1])
	assert.Equal(t, "2026-03-01 12:00:00", rows[3][5])
	repo.AssertExpectations(t)
}

func TestExportUsageReport_EmptyLedger(t *testing.T) {
	promo := &model.PromoCode{ID: uuid.New(), Code: "NEW"}
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, promo.ID).Return(promo, nil)
	repo.On("ListUsages", mock.Anything, promo.ID, 1, usageReportPageSize).Return([]*model.PromoCodeUsage{}, 0, nil)
	svc := newTestService(repo)

	report, err := svc.ExportUsageReport(context.Background(), promo.ID)

	require.NoError(t, err)
	defer report.Workbook.Close()
	rows, err := report.Workbook.GetRows(usageReportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportUsageReport_UnknownCode(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, id).Return(nil, model.ErrPromoNotFound)
	svc := newTestService(repo)

	_, err := svc.ExportUsageReport(context.Background(), id)

	assert.ErrorIs(t, err, model.ErrPromoNotFound)
	repo.AssertNotCalled(t, "ListUsages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

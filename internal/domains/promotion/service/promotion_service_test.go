package service

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grocery-backend/internal/domains/promotion/model"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PromoCode, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.PromoCode)
	return p, args.Error(1)
}

func (m *mockRepo) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*model.PromoCode)
	return p, args.Error(1)
}

func (m *mockRepo) FindByCodeTx(ctx context.Context, tx pgx.Tx, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, tx, code)
	p, _ := args.Get(0).(*model.PromoCode)
	return p, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter model.ListFilter, now time.Time) ([]*model.PromoCode, int, error) {
	args := m.Called(ctx, filter, now)
	p, _ := args.Get(0).([]*model.PromoCode)
	return p, args.Int(1), args.Error(2)
}

func (m *mockRepo) Create(ctx context.Context, promo *model.PromoCode) error {
	return m.Called(ctx, promo).Error(0)
}

func (m *mockRepo) Update(ctx context.Context, promo *model.PromoCode) error {
	return m.Called(ctx, promo).Error(0)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	return m.Called(ctx, id, isActive).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) IncrementUsage(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int, model.Reason, error) {
	args := m.Called(ctx, tx, id)
	return args.Int(0), args.Get(1).(model.Reason), args.Error(2)
}

func (m *mockRepo) CreateUsage(ctx context.Context, tx pgx.Tx, usage *model.PromoCodeUsage) error {
	return m.Called(ctx, tx, usage).Error(0)
}

func (m *mockRepo) ListUsages(ctx context.Context, promoID uuid.UUID, page, limit int) ([]*model.PromoCodeUsage, int, error) {
	args := m.Called(ctx, promoID, page, limit)
	u, _ := args.Get(0).([]*model.PromoCodeUsage)
	return u, args.Int(1), args.Error(2)
}

func (m *mockRepo) GetUsageStats(ctx context.Context, promoID uuid.UUID) (*model.UsageStats, error) {
	args := m.Called(ctx, promoID)
	s, _ := args.Get(0).(*model.UsageStats)
	return s, args.Error(1)
}

func (m *mockRepo) CountUsages(ctx context.Context, promoID uuid.UUID) (int, error) {
	args := m.Called(ctx, promoID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) CheckCodeExists(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func newTestService(repo *mockRepo) ServiceInterface {
	return NewPromotionService(repo, dec("5.99"))
}

// -------------------------------------------------------------------
// PREVIEW
// -------------------------------------------------------------------

func TestPreview_InvalidInputSkipsLookup(t *testing.T) {
	cases := []struct {
		name string
		req  model.PreviewRequest
	}{
		{"empty code", model.PreviewRequest{Code: "   ", OrderAmount: dec("10")}},
		{"zero amount", model.PreviewRequest{Code: "SAVE", OrderAmount: dec("0")}},
		{"negative amount", model.PreviewRequest{Code: "SAVE", OrderAmount: dec("-1")}},
		{"negative delivery", model.PreviewRequest{Code: "SAVE", OrderAmount: dec("10"), DeliveryCost: decPtr("-0.01")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockRepo)
			svc := newTestService(repo)

			req := tc.req
			_, err := svc.Preview(context.Background(), &req)

			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			repo.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
		})
	}
}

func TestPreview_UnknownCodeIsNotFound(t *testing.T) {
	repo := new(mockRepo)
	repo.On("FindByCode", mock.Anything, "NOPE").Return(nil, model.ErrPromoNotFound)
	svc := newTestService(repo)

	_, err := svc.Preview(context.Background(), &model.PreviewRequest{Code: " nope ", OrderAmount: dec("10")})

	assert.ErrorIs(t, err, model.ErrPromoNotFound)
	repo.AssertExpectations(t)
}

func TestPreview_UsesDefaultDeliveryCost(t *testing.T) {
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")

	repo := new(mockRepo)
	repo.On("FindByCode", mock.Anything, "SAVE").Return(promo, nil)
	svc := newTestService(repo)

	resp, err := svc.Preview(context.Background(), &model.PreviewRequest{Code: "save", OrderAmount: dec("20")})

	require.NoError(t, err)
	assert.Equal(t, "SAVE", resp.Code)
	assert.True(t, resp.DeliveryCost.Equal(dec("5.99")))
	assert.True(t, resp.DiscountAmount.Equal(dec("5")))
	assert.True(t, resp.FinalAmount.Equal(dec("20.99")))
	assert.False(t, resp.FreeShipping)
}

func TestPreview_FreeShippingWaivesQuotedDelivery(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)

	repo := new(mockRepo)
	repo.On("FindByCode", mock.Anything, "SAVE").Return(promo, nil)
	svc := newTestService(repo)

	resp, err := svc.Preview(context.Background(), &model.PreviewRequest{
		Code:         "SAVE",
		OrderAmount:  dec("30"),
		DeliveryCost: decPtr("7.50"),
	})

	require.NoError(t, err)
	assert.True(t, resp.FreeShipping)
	assert.True(t, resp.DeliveryCost.Equal(dec("7.5")))
	assert.True(t, resp.FinalAmount.Equal(dec("30")))
}

func TestPreview_IneligibleCode(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)
	promo.IsActive = false

	repo := new(mockRepo)
	repo.On("FindByCode", mock.Anything, "SAVE").Return(promo, nil)
	svc := newTestService(repo)

	_, err := svc.Preview(context.Background(), &model.PreviewRequest{Code: "SAVE", OrderAmount: dec("30")})

	assert.ErrorIs(t, err, model.ErrPromoInactive)
}

// -------------------------------------------------------------------
// REDEEM
// -------------------------------------------------------------------

func TestRedeem_LostRace(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)
	repo := new(mockRepo)
	repo.On("IncrementUsage", mock.Anything, nil, promo.ID).Return(0, model.ReasonLimitReached, nil)
	svc := newTestService(repo)

	eval := &model.Evaluation{Promo: promo, OrderAmount: dec("10"), DeliveryCost: dec("5.99"), FreeShipping: true}
	_, err := svc.Redeem(context.Background(), nil, eval, uuid.New(), nil)

	assert.ErrorIs(t, err, model.ErrPromoRedemptionLost)
	repo.AssertNotCalled(t, "CreateUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeem_IncrementFailure(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)
	repo := new(mockRepo)
	repo.On("IncrementUsage", mock.Anything, nil, promo.ID).Return(0, model.Reason(""), errors.New("deadlock detected"))
	svc := newTestService(repo)

	eval := &model.Evaluation{Promo: promo, OrderAmount: dec("10")}
	_, err := svc.Redeem(context.Background(), nil, eval, uuid.New(), nil)

	require.Error(t, err)
	assert.False(t, IsIneligible(err))
	repo.AssertNotCalled(t, "CreateUsage", mock.Anything, mock.Anything, mock.Anything)
}

// -------------------------------------------------------------------
// ADMIN
// -------------------------------------------------------------------

func TestCreatePromoCode_Duplicate(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CheckCodeExists", mock.Anything, "SUMMER10", (*uuid.UUID)(nil)).Return(true, nil)
	svc := newTestService(repo)

	_, err := svc.CreatePromoCode(context.Background(), &model.CreatePromoCodeRequest{
		Code:               "summer10",
		DiscountType:       model.DiscountTypePercentage,
		DiscountPercentage: decPtr("10"),
	})

	assert.ErrorIs(t, err, model.ErrPromoDuplicateCode)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreatePromoCode_RejectsMismatchedValue(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	_, err := svc.CreatePromoCode(context.Background(), &model.CreatePromoCodeRequest{
		Code:           "SHIPFREE",
		DiscountType:   model.DiscountTypePercentage,
		DiscountAmount: decPtr("5"),
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "discount_percentage")
	assert.Contains(t, verrs, "discount_amount")
}

func TestCreatePromoCode_DefaultsActive(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CheckCodeExists", mock.Anything, "WELCOME", (*uuid.UUID)(nil)).Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.PromoCode) bool {
		return p.Code == "WELCOME" && p.IsActive && p.MinimumOrderAmount.IsZero()
	})).Return(nil)
	svc := newTestService(repo)

	view, err := svc.CreatePromoCode(context.Background(), &model.CreatePromoCodeRequest{
		Code:           " welcome ",
		DiscountType:   model.DiscountTypeFixed,
		DiscountAmount: decPtr("10"),
	})

	require.NoError(t, err)
	assert.Equal(t, model.StateLive, view.State)
	repo.AssertExpectations(t)
}

func TestUpdatePromoCode_DiscountFrozenAfterRedemption(t *testing.T) {
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.TimesUsed = 2

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, promo.ID).Return(promo, nil)
	svc := newTestService(repo)

	_, err := svc.UpdatePromoCode(context.Background(), promo.ID, &model.UpdatePromoCodeRequest{
		DiscountAmount: decPtr("50"),
	})

	assert.ErrorIs(t, err, model.ErrPromoFrozen)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdatePromoCode_LimitBelowUsage(t *testing.T) {
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.TimesUsed = 4

	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, promo.ID).Return(promo, nil)
	svc := newTestService(repo)

	_, err := svc.UpdatePromoCode(context.Background(), promo.ID, &model.UpdatePromoCodeRequest{
		UsageLimit: intPtr(3),
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "usage_limit")
}

func TestUpdatePromoCode_ExtendsWindow(t *testing.T) {
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.TimesUsed = 1
	promo.ValidUntil = timePtr(time.Now().Add(-time.Hour))

	until := time.Now().Add(48 * time.Hour)
	repo := new(mockRepo)
	repo.On("FindByID", mock.Anything, promo.ID).Return(promo, nil)
	repo.On("Update", mock.Anything, promo).Return(nil)
	svc := newTestService(repo)

	view, err := svc.UpdatePromoCode(context.Background(), promo.ID, &model.UpdatePromoCodeRequest{
		ValidUntil: &until,
	})

	require.NoError(t, err)
	assert.Equal(t, model.StateLive, view.State)
}

func TestDeletePromoCode_InUse(t *testing.T) {
	id := uuid.New()
	repo := new(mockRepo)
	repo.On("CountUsages", mock.Anything, id).Return(3, nil)
	svc := newTestService(repo)

	err := svc.DeletePromoCode(context.Background(), id)

	assert.ErrorIs(t, err, model.ErrPromoInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListPromoCodes_RejectsUnknownState(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	_, _, err := svc.ListPromoCodes(context.Background(), model.ListFilter{State: "ARCHIVED", Page: 1, Limit: 20})

	require.Error(t, err)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-backend/internal/domains/promotion/model"
)

// memoryUsageStore mimics the conditional UPDATE under a mutex.
type memoryUsageStore struct {
	mu        sync.Mutex
	promos    map[uuid.UUID]*model.PromoCode
	usages    []*model.PromoCodeUsage
	createErr error
}

func newMemoryUsageStore(promos ...*model.PromoCode) *memoryUsageStore {
	s := &memoryUsageStore{promos: make(map[uuid.UUID]*model.PromoCode)}
	for _, p := range promos {
		cp := *p
		s.promos[p.ID] = &cp
	}
	return s
}

func (s *memoryUsageStore) IncrementUsage(_ context.Context, _ pgx.Tx, id uuid.UUID) (int, model.Reason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promos[id]
	switch {
	case !ok || !p.IsActive:
		return 0, model.ReasonInactive, nil
	case p.IsExhausted():
		return 0, model.ReasonLimitReached, nil
	}
	p.TimesUsed++
	return p.TimesUsed, model.ReasonOK, nil
}

func (s *memoryUsageStore) CreateUsage(_ context.Context, _ pgx.Tx, usage *model.PromoCodeUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	s.usages = append(s.usages, usage)
	return nil
}

func (s *memoryUsageStore) timesUsed(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promos[id].TimesUsed
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func livePromo(discountType model.DiscountType) *model.PromoCode {
	return &model.PromoCode{
		ID:                 uuid.New(),
		Code:               "SAVE",
		DiscountType:       discountType,
		MinimumOrderAmount: decimal.Zero,
		IsActive:           true,
	}
}

func fixedClock(e *Engine, now time.Time) {
	e.now = func() time.Time { return now }
}

// -------------------------------------------------------------------
// CALCULATION
// -------------------------------------------------------------------

func TestCalculateDiscount_PercentageCapped(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypePercentage)
	promo.DiscountPercentage = decPtr("20")
	promo.MaxDiscountAmount = decPtr("50")

	result := engine.CalculateDiscount(promo, dec("500"), dec("5.99"))

	assert.True(t, result.MinimumMet)
	assert.False(t, result.FreeShipping)
	assert.True(t, result.Amount.Equal(dec("50")), "got %s", result.Amount)
}

func TestCalculateDiscount_PercentageUncapped(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypePercentage)
	promo.DiscountPercentage = decPtr("15")

	result := engine.CalculateDiscount(promo, dec("33.33"), decimal.Zero)

	// 4.9995 rounds half-up to 5.00
	assert.True(t, result.Amount.Equal(dec("5")), "got %s", result.Amount)
	assert.Equal(t, "15% off", result.Description)
}

func TestCalculateDiscount_FixedClampedToOrder(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("25")

	result := engine.CalculateDiscount(promo, dec("10"), dec("5.99"))

	assert.True(t, result.Amount.Equal(dec("10")), "got %s", result.Amount)
	assert.True(t, FinalAmount(dec("10"), result.Amount, dec("5.99"), result.FreeShipping).Equal(dec("5.99")))
}

func TestCalculateDiscount_FixedBelowOrder(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("25")

	result := engine.CalculateDiscount(promo, dec("80"), decimal.Zero)

	assert.True(t, result.Amount.Equal(dec("25")))
	assert.Equal(t, "25.00 off your order", result.Description)
}

func TestCalculateDiscount_MinimumNotMet(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypePercentage)
	promo.DiscountPercentage = decPtr("10")
	promo.MinimumOrderAmount = dec("100")

	result := engine.CalculateDiscount(promo, dec("99.99"), dec("5.99"))

	assert.False(t, result.MinimumMet)
	assert.False(t, result.FreeShipping)
	assert.True(t, result.Amount.IsZero())
	assert.Equal(t, "minimum order amount not met: 100", result.Description)
}

func TestCalculateDiscount_MinimumBoundaryIsInclusive(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.MinimumOrderAmount = dec("100")

	result := engine.CalculateDiscount(promo, dec("100"), decimal.Zero)

	assert.True(t, result.MinimumMet)
	assert.True(t, result.Amount.Equal(dec("5")))
}

func TestCalculateDiscount_FreeShipping(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypeFreeShipping)

	result := engine.CalculateDiscount(promo, dec("42"), dec("5.99"))

	assert.True(t, result.MinimumMet)
	assert.True(t, result.FreeShipping)
	assert.True(t, result.Amount.IsZero())
	assert.True(t, FinalAmount(dec("42"), result.Amount, dec("5.99"), result.FreeShipping).Equal(dec("42")))
}

func TestCalculateDiscount_AdminDescriptionWins(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypeFreeShipping)
	promo.Description = "Free delivery weekend"

	result := engine.CalculateDiscount(promo, dec("42"), dec("5.99"))

	assert.Equal(t, "Free delivery weekend", result.Description)
}

func TestCalculateDiscount_NeverExceedsOrder(t *testing.T) {
	engine := NewEngine(nil)

	cases := []struct {
		name  string
		promo func() *model.PromoCode
	}{
		{"percentage 100", func() *model.PromoCode {
			p := livePromo(model.DiscountTypePercentage)
			p.DiscountPercentage = decPtr("100")
			return p
		}},
		{"fixed huge", func() *model.PromoCode {
			p := livePromo(model.DiscountTypeFixed)
			p.DiscountAmount = decPtr("1000000")
			return p
		}},
		{"free shipping", func() *model.PromoCode {
			return livePromo(model.DiscountTypeFreeShipping)
		}},
	}

	amounts := []string{"0.01", "1", "19.99", "250", "9999.99"}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			promo := tc.promo()
			for _, a := range amounts {
				result := engine.CalculateDiscount(promo, dec(a), dec("5.99"))
				assert.False(t, result.Amount.IsNegative(), "amount %s", a)
				assert.True(t, result.Amount.LessThanOrEqual(dec(a)), "amount %s discount %s", a, result.Amount)
			}
		})
	}
}

// -------------------------------------------------------------------
// ELIGIBILITY
// -------------------------------------------------------------------

func TestCheckEligibility_Order(t *testing.T) {
	engine := NewEngine(nil)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(p *model.PromoCode)
		want   model.Reason
	}{
		{"live", func(p *model.PromoCode) {}, model.ReasonOK},
		{"inactive", func(p *model.PromoCode) { p.IsActive = false }, model.ReasonInactive},
		{"not started", func(p *model.PromoCode) { p.ValidFrom = timePtr(now.Add(time.Hour)) }, model.ReasonNotYetActive},
		{"expired", func(p *model.PromoCode) { p.ValidUntil = timePtr(now.Add(-time.Hour)) }, model.ReasonExpired},
		{"limit reached", func(p *model.PromoCode) {
			p.UsageLimit = intPtr(3)
			p.TimesUsed = 3
		}, model.ReasonLimitReached},
		{"inactive beats expired and exhausted", func(p *model.PromoCode) {
			p.IsActive = false
			p.ValidUntil = timePtr(now.Add(-time.Hour))
			p.UsageLimit = intPtr(1)
			p.TimesUsed = 1
		}, model.ReasonInactive},
		{"not started beats expired", func(p *model.PromoCode) {
			p.ValidFrom = timePtr(now.Add(time.Hour))
			p.ValidUntil = timePtr(now.Add(-time.Hour))
		}, model.ReasonNotYetActive},
		{"expired beats limit", func(p *model.PromoCode) {
			p.ValidUntil = timePtr(now.Add(-time.Minute))
			p.UsageLimit = intPtr(1)
			p.TimesUsed = 1
		}, model.ReasonExpired},
		{"window bounds are inclusive", func(p *model.PromoCode) {
			p.ValidFrom = timePtr(now)
			p.ValidUntil = timePtr(now)
		}, model.ReasonOK},
		{"unlimited", func(p *model.PromoCode) { p.TimesUsed = 1_000_000 }, model.ReasonOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			promo := livePromo(model.DiscountTypeFreeShipping)
			tc.mutate(promo)

			ok, reason := engine.CheckEligibility(promo, now)

			assert.Equal(t, tc.want, reason)
			assert.Equal(t, tc.want == model.ReasonOK, ok)
		})
	}
}

func TestEvaluate_ReasonsMapToErrors(t *testing.T) {
	engine := NewEngine(nil)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(engine, now)

	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.ValidUntil = timePtr(now.Add(-time.Second))

	_, err := engine.Evaluate(promo, dec("50"), dec("5.99"))

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPromoExpired)
	assert.True(t, IsIneligible(err))
}

func TestEvaluate_MinimumNotMetCarriesMessage(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.MinimumOrderAmount = dec("100")

	_, err := engine.Evaluate(promo, dec("99.99"), dec("5.99"))

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPromoMinOrderNotMet)
	assert.Equal(t, "minimum order amount not met: 100", err.Error())
}

func TestEvaluate_PreviewMatchesFinalAmount(t *testing.T) {
	engine := NewEngine(nil)
	promo := livePromo(model.DiscountTypePercentage)
	promo.DiscountPercentage = decPtr("10")

	eval, err := engine.Evaluate(promo, dec("80"), dec("5.99"))
	require.NoError(t, err)

	resp := eval.ToPreviewResponse()
	assert.True(t, resp.DiscountAmount.Equal(dec("8")))
	assert.True(t, resp.FinalAmount.Equal(dec("77.99")))
	assert.True(t, resp.OriginalAmount.Equal(dec("80")))
	assert.Equal(t, model.DiscountTypePercentage, resp.DiscountType)
}

func TestEvaluate_DoesNotMutatePromo(t *testing.T) {
	engine := NewEngine(newMemoryUsageStore())
	promo := livePromo(model.DiscountTypeFreeShipping)
	promo.UsageLimit = intPtr(1)

	for i := 0; i < 3; i++ {
		_, err := engine.Evaluate(promo, dec("20"), dec("5.99"))
		require.NoError(t, err)
	}

	assert.Equal(t, 0, promo.TimesUsed)
}

// -------------------------------------------------------------------
// COMMIT
// -------------------------------------------------------------------

func TestCommit_SecondRedemptionOfSingleUseCodeFails(t *testing.T) {
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.UsageLimit = intPtr(1)

	store := newMemoryUsageStore(promo)
	engine := NewEngine(store)
	ctx := context.Background()

	first, err := engine.Evaluate(promo, dec("50"), dec("5.99"))
	require.NoError(t, err)

	// A second shopper evaluated before the first one committed.
	second, err := engine.Evaluate(promo, dec("60"), dec("5.99"))
	require.NoError(t, err)

	usage, err := engine.Commit(ctx, nil, first, uuid.New(), nil)
	require.NoError(t, err)
	assert.True(t, usage.DiscountAmount.Equal(dec("5")))
	assert.True(t, usage.OrderAmount.Equal(dec("50")))

	_, err = engine.Commit(ctx, nil, second, uuid.New(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPromoRedemptionLost)
	assert.ErrorIs(t, err, model.ErrPromoLimitReached)

	assert.Equal(t, 1, store.timesUsed(promo.ID))
	assert.Len(t, store.usages, 1)
}

func TestCommit_SingleUseCodeIsIneligibleOnceRedeemed(t *testing.T) {
	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("5")
	promo.UsageLimit = intPtr(1)

	store := newMemoryUsageStore(promo)
	engine := NewEngine(store)

	eval, err := engine.Evaluate(promo, dec("50"), dec("5.99"))
	require.NoError(t, err)
	_, err = engine.Commit(context.Background(), nil, eval, uuid.New(), nil)
	require.NoError(t, err)

	// Checkout re-reads the code, so the next attempt sees the new counter.
	reloaded := *store.promos[promo.ID]
	ok, reason := engine.CheckEligibility(&reloaded, time.Now())
	assert.False(t, ok)
	assert.Equal(t, model.ReasonLimitReached, reason)

	_, err = engine.Evaluate(&reloaded, dec("50"), dec("5.99"))
	assert.ErrorIs(t, err, model.ErrPromoLimitReached)

	assert.Equal(t, 1, store.timesUsed(promo.ID))
	assert.Len(t, store.usages, 1)
}

func TestCommit_RecordsUserAndOrder(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)
	store := newMemoryUsageStore(promo)
	engine := NewEngine(store)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(engine, now)

	eval, err := engine.Evaluate(promo, dec("20"), dec("5.99"))
	require.NoError(t, err)

	orderID := uuid.New()
	userID := uuid.New()
	usage, err := engine.Commit(context.Background(), nil, eval, orderID, &userID)

	require.NoError(t, err)
	assert.Equal(t, orderID, usage.OrderID)
	assert.Equal(t, promo.ID, usage.PromoCodeID)
	require.NotNil(t, usage.UserID)
	assert.Equal(t, userID, *usage.UserID)
	assert.Equal(t, now, usage.UsedAt)
	assert.Equal(t, 1, store.timesUsed(promo.ID))
}

func TestCommit_DeactivatedAfterEvaluation(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)
	store := newMemoryUsageStore(promo)
	engine := NewEngine(store)

	eval, err := engine.Evaluate(promo, dec("20"), dec("5.99"))
	require.NoError(t, err)

	store.promos[promo.ID].IsActive = false

	_, err = engine.Commit(context.Background(), nil, eval, uuid.New(), nil)
	assert.ErrorIs(t, err, model.ErrPromoDeactivated)
	assert.NotErrorIs(t, err, model.ErrPromoRedemptionLost)
	assert.Contains(t, err.Error(), "deactivated")
	assert.Empty(t, store.usages)
}

func TestCommit_LedgerFailureIsWrapped(t *testing.T) {
	promo := livePromo(model.DiscountTypeFreeShipping)
	store := newMemoryUsageStore(promo)
	store.createErr = errors.New("connection reset")
	engine := NewEngine(store)

	eval, err := engine.Evaluate(promo, dec("20"), dec("5.99"))
	require.NoError(t, err)

	_, err = engine.Commit(context.Background(), nil, eval, uuid.New(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "record promo usage")
	assert.False(t, IsIneligible(err))
}

func TestCommit_ConcurrentRedemptionsNeverExceedLimit(t *testing.T) {
	const limit = 5
	const shoppers = 50

	promo := livePromo(model.DiscountTypeFixed)
	promo.DiscountAmount = decPtr("3")
	promo.UsageLimit = intPtr(limit)

	store := newMemoryUsageStore(promo)
	engine := NewEngine(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		lost      int
	)

	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Every shopper sees the stale snapshot and therefore passes eligibility.
			eval, err := engine.Evaluate(promo, dec("30"), dec("5.99"))
			if err != nil {
				t.Errorf("evaluate: %v", err)
				return
			}

			_, err = engine.Commit(context.Background(), nil, eval, uuid.New(), nil)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, model.ErrPromoRedemptionLost):
				lost++
			default:
				t.Errorf("unexpected commit error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, succeeded)
	assert.Equal(t, shoppers-limit, lost)
	assert.Equal(t, limit, store.timesUsed(promo.ID))
	assert.Len(t, store.usages, limit)
}

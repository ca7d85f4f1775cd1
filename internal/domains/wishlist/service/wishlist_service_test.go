package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartModel "grocery-backend/internal/domains/cart/model"
	catalogModel "grocery-backend/internal/domains/catalog/model"
	"grocery-backend/internal/domains/wishlist/model"
)

type fakeRepo struct {
	mu    sync.Mutex
	saved map[uuid.UUID]map[uuid.UUID]time.Time
	names map[uuid.UUID]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(map[uuid.UUID]map[uuid.UUID]time.Time), names: make(map[uuid.UUID]string)}
}

func (r *fakeRepo) Add(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved[userID] == nil {
		r.saved[userID] = make(map[uuid.UUID]time.Time)
	}
	if _, ok := r.saved[userID][productID]; ok {
		return false, nil
	}
	r.saved[userID][productID] = time.Now()
	return true, nil
}

func (r *fakeRepo) List(_ context.Context, userID uuid.UUID) ([]model.ItemView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ItemView, 0)
	for id, at := range r.saved[userID] {
		out = append(out, model.ItemView{ProductID: id, Name: r.names[id], Price: decimal.NewFromInt(1), AddedAt: at})
	}
	return out, nil
}

func (r *fakeRepo) Contains(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.saved[userID][productID]
	return ok, nil
}

func (r *fakeRepo) Remove(_ context.Context, userID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.saved[userID][productID]; !ok {
		return model.ErrItemNotFound
	}
	delete(r.saved[userID], productID)
	return nil
}

type fakeProducts map[uuid.UUID]*catalogModel.Product

func (f fakeProducts) GetProduct(_ context.Context, id uuid.UUID) (*catalogModel.Product, error) {
	p, ok := f[id]
	if !ok {
		return nil, catalogModel.ErrProductNotFound
	}
	return p, nil
}

type fakeCarts struct {
	added []cartModel.AddItemRequest
	owner cartModel.Owner
	err   error
}

func (f *fakeCarts) AddItem(_ context.Context, owner cartModel.Owner, req *cartModel.AddItemRequest) (*cartModel.CartResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.owner = owner
	f.added = append(f.added, *req)
	return &cartModel.CartResponse{}, nil
}

func setup() (ServiceInterface, *fakeRepo, fakeProducts, *fakeCarts) {
	repo := newFakeRepo()
	products := fakeProducts{}
	carts := &fakeCarts{}
	return NewWishlistService(repo, products, carts), repo, products, carts
}

func TestAdd_IsIdempotent(t *testing.T) {
	svc, _, products, _ := setup()
	userID := uuid.New()
	productID := uuid.New()
	products[productID] = &catalogModel.Product{ID: productID, Name: "Pears"}

	_, err := svc.Add(context.Background(), userID, &model.AddItemRequest{ProductID: productID})
	require.NoError(t, err)
	items, err := svc.Add(context.Background(), userID, &model.AddItemRequest{ProductID: productID})
	require.NoError(t, err)

	assert.Len(t, items, 1)
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc, repo, _, _ := setup()

	_, err := svc.Add(context.Background(), uuid.New(), &model.AddItemRequest{ProductID: uuid.New()})
	assert.ErrorIs(t, err, catalogModel.ErrProductNotFound)
	assert.Empty(t, repo.saved)
}

func TestAdd_MissingProductID(t *testing.T) {
	svc, _, _, _ := setup()

	_, err := svc.Add(context.Background(), uuid.New(), &model.AddItemRequest{})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "product_id")
}

func TestRemove_NotSaved(t *testing.T) {
	svc, _, _, _ := setup()

	err := svc.Remove(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestMoveToCart(t *testing.T) {
	svc, repo, products, carts := setup()
	userID := uuid.New()
	productID := uuid.New()
	products[productID] = &catalogModel.Product{ID: productID}
	_, err := svc.Add(context.Background(), userID, &model.AddItemRequest{ProductID: productID})
	require.NoError(t, err)

	_, err = svc.MoveToCart(context.Background(), userID, productID)
	require.NoError(t, err)

	require.Len(t, carts.added, 1)
	assert.Equal(t, 1, carts.added[0].Quantity)
	assert.Equal(t, cartModel.UserOwner(userID), carts.owner)
	saved, _ := repo.Contains(context.Background(), userID, productID)
	assert.False(t, saved)
}

func TestMoveToCart_NotSaved(t *testing.T) {
	svc, _, _, carts := setup()

	_, err := svc.MoveToCart(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	assert.Empty(t, carts.added)
}

func TestMoveToCart_CartFailureKeepsWishlist(t *testing.T) {
	svc, repo, products, carts := setup()
	userID := uuid.New()
	productID := uuid.New()
	products[productID] = &catalogModel.Product{ID: productID}
	_, err := svc.Add(context.Background(), userID, &model.AddItemRequest{ProductID: productID})
	require.NoError(t, err)
	carts.err = errors.New("cart unavailable")

	_, err = svc.MoveToCart(context.Background(), userID, productID)
	require.Error(t, err)

	saved, _ := repo.Contains(context.Background(), userID, productID)
	assert.True(t, saved)
}

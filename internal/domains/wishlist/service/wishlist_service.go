package service

import (
	"context"

	"github.com/google/uuid"

	cartModel "grocery-backend/internal/domains/cart/model"
	catalogModel "grocery-backend/internal/domains/catalog/model"
	"grocery-backend/internal/domains/wishlist/model"
	"grocery-backend/internal/domains/wishlist/repository"
	"grocery-backend/pkg/logger"
)

type ServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.ItemView, error)
	Add(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) ([]model.ItemView, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error

	// MoveToCart adds one unit to the user's cart and drops the product from the wishlist.
	MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*cartModel.CartResponse, error)
}

// ProductLookup is implemented by the catalog service.
type ProductLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogModel.Product, error)
}

// CartAdder is implemented by the cart service.
type CartAdder interface {
	AddItem(ctx context.Context, owner cartModel.Owner, req *cartModel.AddItemRequest) (*cartModel.CartResponse, error)
}

type wishlistService struct {
	repo     repository.WishlistRepository
	products ProductLookup
	carts    CartAdder
}

func NewWishlistService(repo repository.WishlistRepository, products ProductLookup, carts CartAdder) ServiceInterface {
	return &wishlistService{repo: repo, products: products, carts: carts}
}

func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]model.ItemView, error) {
	return s.repo.List(ctx, userID)
}

func (s *wishlistService) Add(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) ([]model.ItemView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Unknown products are a 404, not a foreign key error
	if _, err := s.products.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	added, err := s.repo.Add(ctx, userID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if added {
		logger.Info("wishlist item added", map[string]interface{}{
			"user_id":    userID.String(),
			"product_id": req.ProductID.String(),
		})
	}

	return s.repo.List(ctx, userID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, productID)
}

// MoveToCart works like this:
//
//	Make sure the product is saved
//	Add one unit to the cart (the cart caps the quantity)
//	Remove it from the wishlist
//
// If the cart add fails the wishlist is left untouched.
func (s *wishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*cartModel.CartResponse, error) {
	saved, err := s.repo.Contains(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !saved {
		return nil, model.ErrItemNotFound
	}

	cart, err := s.carts.AddItem(ctx, cartModel.UserOwner(userID), &cartModel.AddItemRequest{
		ProductID: productID,
		Quantity:  1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}

	return cart, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

type CartService struct {
	Repo *repo.GormRepo
}

func NewCartService(r *repo.GormRepo) *CartService {
	return &CartService{Repo: r}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*transport.CartResponse, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, repoErr(err, "cart")
	}
	total := decimal.Zero
	for _, it := range items {
		if it.Product != nil {
			total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return &transport.CartResponse{Items: items, Total: total}, nil
}

// AddItem merges quantities when the product is already in the cart.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req transport.AddCartItemRequest) (*transport.CartResponse, error) {
	if req.ProductID == uuid.Nil {
		return nil, invalid("product_id", "is required")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := s.ensureProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if err := s.Repo.AddToCart(ctx, userID, req.ProductID, req.Quantity); err != nil {
		logging.FromContext(ctx).With("svc", "cart.add").Error("cart_add_error", "status", 500, "error", err)
		return nil, repoErr(err, "cart item")
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem sets an absolute quantity; zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req transport.UpdateCartItemRequest) (*transport.CartResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var err error
	if req.Quantity == 0 {
		err = s.Repo.RemoveFromCart(ctx, userID, productID)
	} else {
		err = s.Repo.SetCartQuantity(ctx, userID, productID, req.Quantity)
	}
	if err != nil {
		return nil, repoErr(err, "cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*transport.CartResponse, error) {
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return nil, repoErr(err, "cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return repoErr(s.Repo.ClearCart(ctx, userID), "cart")
}

func (s *CartService) ensureProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return repoErr(err, "product")
	}
	if !p.IsActive {
		return invalid("product_id", "product is not available")
	}
	return nil
}

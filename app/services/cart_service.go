package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// CartService puts catalog rules in front of a CartStore: requested
// quantities are checked against the stock the catalog reports.
type CartService struct {
	catalog CatalogClient
}

func NewCartService(catalog CatalogClient) *CartService {
	return &CartService{catalog: catalog}
}

// AddItemToCart adds qty of the product, rejecting the request when the line
// would end up above the available stock.
func (s *CartService) AddItemToCart(ctx context.Context, store *CartStore, productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	book, err := s.catalog.GetBook(ctx, productID)
	if err != nil {
		return fmt.Errorf("AddItemToCart: %w", err)
	}

	inCart := 0
	for _, item := range store.Items() {
		if item.Product.ID == book.ID {
			inCart = item.Quantity
			break
		}
	}
	if inCart+qty > book.Stock {
		log.Info().Str("product", productID).Int("requested", inCart+qty).Int("stock", book.Stock).Msg("AddItemToCart: not enough stock")
		return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, book.Title, book.Stock)
	}

	return store.AddItem(ctx, book.ToProductRef(), qty)
}

// UpdateCartItemQty sets the line quantity. Zero or less removes the line
// without asking the catalog.
func (s *CartService) UpdateCartItemQty(ctx context.Context, store *CartStore, productID string, qty int) error {
	if qty > 0 {
		book, err := s.catalog.GetBook(ctx, productID)
		if err != nil {
			return fmt.Errorf("UpdateCartItemQty: %w", err)
		}
		if qty > book.Stock {
			return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, book.Title, book.Stock)
		}
	}

	store.UpdateQuantity(ctx, productID, qty)
	return nil
}

func (s *CartService) RemoveItemFromCart(ctx context.Context, store *CartStore, productID string) {
	store.RemoveItem(ctx, productID)
}

// IsValidationError reports whether err was caused by the caller's input
// rather than a failing collaborator.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidQuantity, ErrInvalidProduct, ErrInvalidPromotion, ErrInsufficientStock,
		ErrInvalidShippingAddress, ErrInvalidAddress, ErrInvalidPaymentMethod, ErrEmptyCart,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

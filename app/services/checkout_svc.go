package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// CheckoutService turns a cart into an order in two steps: Prepare freezes
// the cart and shipping details into a draft, Confirm hands the draft to the
// order backend and purges the cart once it is accepted.
type CheckoutService struct {
	orders   OrderClient
	payments PaymentRedirector
	validate *validator.Validate
	now      func() time.Time
}

func NewCheckoutService(orders OrderClient, payments PaymentRedirector, validate *validator.Validate) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		payments: payments,
		validate: validate,
		now:      time.Now,
	}
}

// Prepare validates the shipping form and saves a checkout draft. Location
// fields left blank are taken from the selected delivery address.
func (s *CheckoutService) Prepare(ctx context.Context, store *CartStore, form models.ShippingAddress, method models.PaymentMethod) (*models.CheckoutDraft, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	snap := store.Snapshot()
	if addr := snap.SelectedAddress; addr != nil {
		fillFromAddress(&form, *addr)
	}

	if err := s.validate.Struct(&form); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShippingAddress, err)
	}
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}

	draft := models.CheckoutDraft{
		Items:           snap.Items,
		ShippingAddress: form,
		Summary:         snap.Summary,
		PaymentMethod:   method,
		Owner:           snap.Identity.Key(),
		CreatedAt:       s.now().UTC(),
	}
	if snap.Promotion != nil && snap.Summary.Discount > 0 {
		draft.PromotionCode = snap.Promotion.Code
	}

	if err := store.SaveCheckoutDraft(ctx, draft); err != nil {
		return nil, fmt.Errorf("save checkout draft: %w", err)
	}
	return &draft, nil
}

// Confirm places the prepared order. The cart is only purged after the
// backend accepted it; on any error the cart and draft are left untouched.
func (s *CheckoutService) Confirm(ctx context.Context, store *CartStore) (*models.OrderResult, error) {
	identity := store.Identity()
	draft, err := store.CheckoutDraft(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkout draft: %w", err)
	}
	if draft == nil || draft.Owner != identity.Key() {
		return nil, ErrNoCheckoutDraft
	}

	order := s.buildOrder(identity, *draft)
	result := &models.OrderResult{
		OrderCode:     order.OrderCode,
		PaymentMethod: order.PaymentMethod,
		Summary:       draft.Summary,
	}

	switch draft.PaymentMethod {
	case models.PaymentCOD:
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return nil, err
		}
	case models.PaymentBankTransfer:
		url, err := s.payments.Redirect(ctx, order)
		if err != nil {
			return nil, err
		}
		if url == "" {
			log.Error().Str("order", order.OrderCode).Msg("Confirm: payment provider returned no redirect url")
			return nil, ErrPaymentRedirectMissing
		}
		result.PaymentURL = url
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, draft.PaymentMethod)
	}

	store.CompleteCheckout(ctx)
	log.Info().Str("order", order.OrderCode).Str("method", string(order.PaymentMethod)).Int64("total", order.Total).Msg("Confirm: order placed")
	return result, nil
}

func (s *CheckoutService) buildOrder(identity models.Identity, draft models.CheckoutDraft) models.OrderPayload {
	items := make([]models.OrderItem, 0, len(draft.Items))
	for _, it := range draft.Items {
		items = append(items, models.OrderItem{
			ProductID: it.Product.ID,
			Title:     it.Product.Title,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Image:     it.Product.CoverImage,
		})
	}

	return models.OrderPayload{
		OrderCode:       fmt.Sprintf("ORD-%d", s.now().UnixMilli()),
		User:            identity.ID,
		Email:           identity.Email,
		Items:           items,
		ShippingAddress: draft.ShippingAddress,
		Subtotal:        draft.Summary.Subtotal,
		Discount:        draft.Summary.Discount,
		ShippingFee:     draft.Summary.ShippingFee,
		Tax:             draft.Summary.Tax,
		Total:           draft.Summary.Total,
		PromotionCode:   draft.PromotionCode,
		PaymentMethod:   draft.PaymentMethod,
	}
}

func fillFromAddress(form *models.ShippingAddress, addr models.DeliveryAddress) {
	if form.Address == "" {
		form.Address = addr.Street
	}
	if form.Ward == "" {
		form.Ward = addr.Ward
	}
	if form.District == "" {
		form.District = addr.District
	}
	if form.City == "" {
		form.City = addr.City
	}
}

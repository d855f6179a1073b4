package services

import "errors"

var (
	ErrInvalidQuantity        = errors.New("quantity must be a positive integer")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrProductNotFound        = errors.New("product not found")
	ErrInvalidProduct         = errors.New("invalid product")
	ErrInvalidPromotion       = errors.New("invalid promotion")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidShippingAddress = errors.New("invalid shipping address")
	ErrInvalidAddress         = errors.New("invalid delivery address")
	ErrAddressNotFound        = errors.New("address not found")
	ErrInvalidPaymentMethod   = errors.New("invalid payment method")
	ErrNoCheckoutDraft        = errors.New("no checkout in progress")
	ErrCheckoutOwnerChanged   = errors.New("signed in user changed during checkout")
	ErrPaymentRedirectMissing = errors.New("payment provider returned no redirect url")
	ErrOrderRejected          = errors.New("order rejected")
	ErrRemoteCart             = errors.New("remote cart request failed")
)

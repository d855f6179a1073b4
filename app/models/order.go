package models

import "time"

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentBankTransfer
}

type OrderItem struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image"`
}

// OrderPayload is what the order backend receives on confirmation.
type OrderPayload struct {
	OrderCode       string          `json:"orderCode"`
	User            string          `json:"user"`
	Email           string          `json:"email,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Subtotal        int64           `json:"subtotal"`
	Discount        int64           `json:"discount"`
	ShippingFee     int64           `json:"shippingFee"`
	Tax             int64           `json:"tax"`
	Total           int64           `json:"total"`
	PromotionCode   string          `json:"promotionCode,omitempty"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
}

// CheckoutDraft is persisted between preparing and confirming a checkout.
// Owner is the identity key it was prepared for, empty for guests.
type CheckoutDraft struct {
	Items           []CartItem      `json:"items" validate:"min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Summary         PriceSummary    `json:"summary"`
	PromotionCode   string          `json:"promotionCode,omitempty"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" validate:"oneof=cod bank_transfer"`
	Owner           string          `json:"owner"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrderResult struct {
	OrderCode     string        `json:"orderCode"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	Summary       PriceSummary  `json:"summary"`
}

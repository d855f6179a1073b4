package models

// PriceSummary is the derived pricing of a cart, all amounts in whole VND.
type PriceSummary struct {
	TotalItems  int   `json:"totalItems"`
	Subtotal    int64 `json:"subtotal"`
	Discount    int64 `json:"discount"`
	ShippingFee int64 `json:"shippingFee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

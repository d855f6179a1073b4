package models

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type Promotion struct {
	ID            string `json:"id" validate:"required"`
	Code          string `json:"code" validate:"required"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	DiscountType  string `json:"discountType" validate:"oneof=percentage fixed"`
	DiscountValue int64  `json:"discountValue" validate:"gte=0"`
	MinOrderValue int64  `json:"minOrderValue" validate:"gte=0"`
	MaxDiscount   *int64 `json:"maxDiscount,omitempty" validate:"omitempty,gte=0"`
	Active        bool   `json:"active"`
}

package calc

import "github.com/Rakhulsr/go-bookstore/app/models"

func CalculateSubtotal(items []models.CartItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

func CountItems(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func CalculateGrandTotal(subtotal, discount, shippingFee, tax int64) int64 {
	return subtotal - discount + shippingFee + tax
}

// Quote derives the full price summary of a cart. It has no side effects and
// is safe to call on every read.
func Quote(items []models.CartItem, promo *models.Promotion) models.PriceSummary {
	subtotal := CalculateSubtotal(items)
	discount := CalculateDiscount(subtotal, promo)
	shipping := CalculateShippingFee(subtotal)
	tax := CalculateTax(subtotal)

	return models.PriceSummary{
		TotalItems:  CountItems(items),
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       CalculateGrandTotal(subtotal, discount, shipping, tax),
	}
}

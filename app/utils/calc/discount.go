package calc

import (
	"github.com/Rakhulsr/go-bookstore/app/models"
	"github.com/shopspring/decimal"
)

// CalculateDiscount yields zero when no promotion is applied or the subtotal
// has dropped below its threshold. The promotion itself stays applied.
func CalculateDiscount(subtotal int64, promo *models.Promotion) int64 {
	if promo == nil || subtotal < promo.MinOrderValue {
		return 0
	}

	var discount int64
	if promo.DiscountType == models.DiscountPercentage {
		discount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(promo.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	} else {
		discount = promo.DiscountValue
	}

	if promo.MaxDiscount != nil && *promo.MaxDiscount > 0 && discount > *promo.MaxDiscount {
		discount = *promo.MaxDiscount
	}
	return discount
}

// PartitionPromotions splits the active promotions into the ones the subtotal
// qualifies for and the ones still out of reach. Inactive ones are dropped.
func PartitionPromotions(promos []models.Promotion, subtotal int64) (available, unavailable []models.Promotion) {
	for _, p := range promos {
		if !p.Active {
			continue
		}
		if subtotal >= p.MinOrderValue {
			available = append(available, p)
		} else {
			unavailable = append(unavailable, p)
		}
	}
	return available, unavailable
}

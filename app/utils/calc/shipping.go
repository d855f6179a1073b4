package calc

const (
	FreeShippingThreshold    int64 = 200_000
	ReducedShippingThreshold int64 = 100_000
	ReducedShippingFee       int64 = 15_000
	StandardShippingFee      int64 = 30_000
)

// CalculateShippingFee is tiered on the raw subtotal, promotions do not move
// an order between tiers.
func CalculateShippingFee(subtotal int64) int64 {
	switch {
	case subtotal >= FreeShippingThreshold:
		return 0
	case subtotal >= ReducedShippingThreshold:
		return ReducedShippingFee
	default:
		return StandardShippingFee
	}
}

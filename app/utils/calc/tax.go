package calc

import "github.com/shopspring/decimal"

func GetTaxPercent() decimal.Decimal {
	var taxPercent = decimal.NewFromInt(10)

	return taxPercent
}

// CalculateTax rounds to the nearest whole đồng, halves away from zero.
func CalculateTax(subtotal int64) int64 {

	taxPercent := GetTaxPercent()

	return decimal.NewFromInt(subtotal).Mul(taxPercent).Div(decimal.NewFromInt(100)).Round(0).IntPart()

}

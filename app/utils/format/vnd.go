package format

import "github.com/leekchan/accounting"

var vnd = accounting.Accounting{
	Symbol:    "₫",
	Precision: 0,
	Thousand:  ".",
	Decimal:   ",",
	Format:    "%v %s",
}

// FormatVND renders whole đồng the way the storefront displays prices,
// e.g. 150000 -> "150.000 ₫".
func FormatVND(amount int64) string {
	return vnd.FormatMoney(amount)
}

package invoice

import "github.com/shopspring/decimal"

// FormatAmount renders an amount with zero decimals behind a currency marker.
// Halves round away from zero.
func FormatAmount(marker string, amount decimal.Decimal) string {
	return marker + amount.Round(0).StringFixed(0)
}

// FormatDeduction renders an amount that is subtracted from the total.
func FormatDeduction(marker string, amount decimal.Decimal) string {
	return "-" + FormatAmount(marker, amount)
}

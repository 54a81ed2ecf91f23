package gateway

import (
	"fmt"
	"math"
	"strconv"
)

// Money helpers. Providers disagree on the wire unit: some take integer
// penny amounts (PayTR, Paynet), others take two-decimal strings
// (Iyzico, Vepara, ParamPos). Conversions always round half away from
// zero at two decimals so 10.005 TRY becomes 1001 penny, not 1000.

// ToPenny converts a decimal amount to an integer penny amount
func ToPenny(amount float64) int {
	return int(math.Round(amount * 100))
}

// PennyToDecimal formats an integer penny amount as a two-decimal string
func PennyToDecimal(penny int) string {
	return fmt.Sprintf("%.2f", float64(penny)/100)
}

// ToDecimalString formats a decimal amount with exactly two decimals,
// "." separator and no thousands grouping.
func ToDecimalString(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// Round2 rounds an amount to two decimals
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

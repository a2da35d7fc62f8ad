package output

import (
	"strconv"

	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal with thousands separators and 2 decimals.
func FormatCurrency(amount decimal.Decimal) string { return money.Format(amount) }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

func intToString(i int) string { return strconv.Itoa(i) }

func optionalYear(y *int) string {
	if y == nil {
		return "never"
	}
	return intToString(*y)
}

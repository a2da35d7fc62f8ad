// Package money holds the small set of decimal helpers shared by the
// calculators: percentage conversion, compounding, annuity payments and
// display rounding.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Rate converts a percentage (3 meaning 3%) to a fractional rate.
func Rate(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(hundred)
}

// Percent is the inverse of Rate.
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// Compound returns (1+rate)^periods for an integer number of periods.
// Negative periods yield the discount factor.
func Compound(rate decimal.Decimal, periods int) decimal.Decimal {
	base := one.Add(rate)
	n := periods
	if n < 0 {
		n = -n
	}
	factor := one
	for i := 0; i < n; i++ {
		factor = factor.Mul(base)
	}
	if periods < 0 {
		return one.Div(factor)
	}
	return factor
}

// Grow escalates amount by a percentage growth rate over the given number of years.
func Grow(amount, growthPercent decimal.Decimal, years int) decimal.Decimal {
	if years == 0 || growthPercent.IsZero() {
		return amount
	}
	return amount.Mul(Compound(Rate(growthPercent), years))
}

// PMT returns the level payment that exhausts balance over periods at rate.
// When due is true payments are made at the start of each period.
// A zero rate degenerates to balance/periods. periods must be positive.
func PMT(balance, rate decimal.Decimal, periods int, due bool) decimal.Decimal {
	n := decimal.NewFromInt(int64(periods))
	if rate.IsZero() {
		return balance.Div(n)
	}
	denom := one.Sub(Compound(rate, -periods))
	if due {
		denom = denom.Mul(one.Add(rate))
	}
	return balance.Mul(rate).Div(denom)
}

// Round rounds to cents using banker's rounding.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Within reports whether a and b differ by strictly less than tolerance.
func Within(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}

// NonNegative clamps negative values to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Format renders an amount with thousands separators and two decimals,
// e.g. -1234567.891 -> "-1,234,567.89".
func Format(d decimal.Decimal) string {
	s := Round(d).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

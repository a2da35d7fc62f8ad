package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// DebtTerms are the inputs of an amortization schedule. InterestRate is a percentage.
type DebtTerms struct {
	Amount       decimal.Decimal `json:"debtAmount"`
	InterestRate decimal.Decimal `json:"interestRate"`
	StartYear    int             `json:"startYear"`
	EndYear      int             `json:"endYear"`
	Type         domain.DebtType `json:"debtType"`
	GracePeriod  int             `json:"gracePeriod"`
}

// DebtTermsFrom extracts the schedule inputs of a debt entity.
func DebtTermsFrom(d domain.Debt) DebtTerms {
	return DebtTerms{
		Amount:       d.DebtAmount,
		InterestRate: d.InterestRate,
		StartYear:    d.StartYear,
		EndYear:      d.EndYear,
		Type:         d.DebtType,
		GracePeriod:  d.GracePeriod,
	}
}

// DebtYear is one row of an amortization schedule.
type DebtYear struct {
	Year             int             `json:"year"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal"`
	Payment          decimal.Decimal `json:"payment"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}

// DebtSummary aggregates a schedule.
type DebtSummary struct {
	TotalInterest decimal.Decimal `json:"totalInterest"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	FirstPayment  decimal.Decimal `json:"firstPayment"`
	MaxPayment    decimal.Decimal `json:"maxPayment"`
}

// AmortizeDebt produces one row per year of [StartYear, EndYear].
//
// bullet pays interest only and the whole balance in the final year; equal
// pays a level annuity; principal repays a fixed share of the original amount;
// grace pays interest only for GracePeriod years and then amortizes the
// untouched balance with a level annuity. The final row always clears the balance.
func AmortizeDebt(t DebtTerms) ([]DebtYear, error) {
	n := dateutil.Span(t.StartYear, t.EndYear)
	if n <= 0 {
		return nil, fmt.Errorf("%w: debt window %d-%d is empty", ErrDegenerateSchedule, t.StartYear, t.EndYear)
	}
	if t.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: debt amount cannot be negative", ErrMalformedEntity)
	}
	if t.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", ErrMalformedEntity)
	}
	r := money.Rate(t.InterestRate)

	// Years of interest-only service before amortization starts.
	interestOnly := 0
	switch t.Type {
	case domain.DebtBullet:
		interestOnly = n
	case domain.DebtEqual, domain.DebtPrincipal:
	case domain.DebtGrace:
		if t.GracePeriod < 0 || t.GracePeriod >= n {
			return nil, fmt.Errorf("%w: grace period %d must be shorter than the %d-year term",
				ErrDegenerateSchedule, t.GracePeriod, n)
		}
		interestOnly = t.GracePeriod
	default:
		return nil, fmt.Errorf("%w: unknown debt type %q", ErrMalformedEntity, t.Type)
	}

	rows := make([]DebtYear, 0, n)
	balance := t.Amount
	var level, fixedPrincipal decimal.Decimal
	for i := 0; i < n; i++ {
		year := t.StartYear + i
		interest := balance.Mul(r)
		var principal decimal.Decimal

		switch {
		case i == n-1:
			principal = balance
		case i < interestOnly:
			principal = decimal.Zero
		case t.Type == domain.DebtPrincipal:
			if fixedPrincipal.IsZero() {
				fixedPrincipal = t.Amount.Div(decimal.NewFromInt(int64(n)))
			}
			principal = fixedPrincipal
		default:
			// equal, or the amortizing phase of grace
			if level.IsZero() {
				level = money.PMT(balance, r, n-interestOnly, false)
			}
			principal = level.Sub(interest)
		}

		balance = balance.Sub(principal)
		rows = append(rows, DebtYear{
			Year:             year,
			Interest:         interest,
			Principal:        principal,
			Payment:          interest.Add(principal),
			RemainingBalance: balance,
		})
	}
	return rows, nil
}

// SummarizeDebt totals a schedule.
func SummarizeDebt(rows []DebtYear) DebtSummary {
	var s DebtSummary
	for i, row := range rows {
		s.TotalInterest = s.TotalInterest.Add(row.Interest)
		s.TotalPaid = s.TotalPaid.Add(row.Payment)
		if i == 0 {
			s.FirstPayment = row.Payment
		}
		s.MaxPayment = decimal.Max(s.MaxPayment, row.Payment)
	}
	return s
}

// debtRowFor returns the schedule row for year, if the debt is active then.
func debtRowFor(rows []DebtYear, year int) (DebtYear, bool) {
	if len(rows) == 0 {
		return DebtYear{}, false
	}
	idx := year - rows[0].Year
	if idx < 0 || idx >= len(rows) {
		return DebtYear{}, false
	}
	return rows[idx], true
}

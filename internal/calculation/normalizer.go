package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// leg is one scheduled cash movement of an entity, e.g. a property's rent.
type leg struct {
	label    string
	category domain.Category
	inflow   bool
	amount   func(year int) decimal.Decimal
}

// Stream is the canonical, balance-independent view of one entity: whether
// it is active in a year and which scheduled cash flows it produces then.
// Flows that depend on carried balances (yields, annuity payouts, maturities)
// are produced by the accounts the driver threads through the fold.
type Stream struct {
	entity     domain.Entity
	start, end int
	legs       []leg
	debt       []DebtYear
}

// ActiveInYear reports whether year is inside the entity's activation window.
func (s Stream) ActiveInYear(year int) bool {
	return dateutil.InWindow(year, s.start, s.end)
}

// DebtBalance returns the remaining balance of a debt stream at the end of year.
func (s Stream) DebtBalance(year int) (decimal.Decimal, bool) {
	row, ok := debtRowFor(s.debt, year)
	return row.RemainingBalance, ok
}

// FlowInYear returns the signed nominal annual cash amount of the entity in
// year: inflows are positive, outflows negative.
func (s Stream) FlowInYear(year int) decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.legs {
		amt := l.amount(year)
		if l.inflow {
			total = total.Add(amt)
		} else {
			total = total.Sub(amt)
		}
	}
	return total
}

// Items splits the year's scheduled flows into positive and negative line items.
// Zero amounts are omitted.
func (s Stream) Items(year int) (positives, negatives []domain.LineItem) {
	for _, l := range s.legs {
		amt := l.amount(year)
		if amt.IsZero() {
			continue
		}
		item := domain.LineItem{
			EntityID: s.entity.EntityID(),
			Title:    itemTitle(s.entity.EntityTitle(), l.label),
			Category: l.category,
			Amount:   amt,
		}
		if l.inflow {
			positives = append(positives, item)
		} else {
			negatives = append(negatives, item)
		}
	}
	return positives, negatives
}

func itemTitle(title, label string) string {
	if label == "" {
		return title
	}
	return title + " (" + label + ")"
}

// escalating returns amount×periods×(1+growth)^(year−start) inside [start, end] and zero outside.
func escalating(amount decimal.Decimal, periods int, growth decimal.Decimal, start, end int) func(int) decimal.Decimal {
	annual := amount.Mul(decimal.NewFromInt(int64(periods)))
	return func(year int) decimal.Decimal {
		if !dateutil.InWindow(year, start, end) {
			return decimal.Zero
		}
		return money.Grow(annual, growth, year-start)
	}
}

// once returns amount in year only.
func once(amount decimal.Decimal, at int) func(int) decimal.Decimal {
	return func(year int) decimal.Decimal {
		if year != at {
			return decimal.Zero
		}
		return amount
	}
}

func periodsOf(id string, f domain.Frequency) (int, error) {
	n, ok := f.PeriodsPerYear()
	if !ok {
		return 0, atEntity(id, fmt.Errorf("%w: unknown frequency %q", ErrMalformedEntity, f))
	}
	return n, nil
}

// Normalize converts raw entities into one Stream per entity. profile.CurrentYear
// must already be resolved: debts taken out on or after it book their principal
// as a cash inflow in their first year.
func Normalize(profile domain.Profile, entities []domain.Entity) ([]Stream, error) {
	seen := make(map[string]struct{}, len(entities))
	streams := make([]Stream, 0, len(entities))
	for _, e := range entities {
		id := e.EntityID()
		if id == "" {
			return nil, fmt.Errorf("%w: %s %q has no id", ErrMalformedEntity, e.Kind(), e.EntityTitle())
		}
		if _, dup := seen[id]; dup {
			return nil, atEntity(id, fmt.Errorf("%w: duplicate id", ErrMalformedEntity))
		}
		seen[id] = struct{}{}

		s, err := normalizeEntity(profile, e)
		if err != nil {
			return nil, err
		}
		if s.start > s.end {
			return nil, atEntity(id, fmt.Errorf("%w: window %d-%d is inverted", ErrMalformedEntity, s.start, s.end))
		}
		streams = append(streams, s)
	}
	return streams, nil
}

func normalizeEntity(profile domain.Profile, e domain.Entity) (Stream, error) {
	start, end := e.Window()
	s := Stream{entity: e, start: start, end: end}
	id := e.EntityID()

	switch v := e.(type) {
	case domain.Income:
		n, err := periodsOf(id, v.Frequency)
		if err != nil {
			return s, err
		}
		s.legs = []leg{{category: domain.CategoryIncome, inflow: true,
			amount: escalating(v.Amount, n, v.GrowthRate, v.StartYear, v.EndYear)}}

	case domain.Expense:
		n, err := periodsOf(id, v.Frequency)
		if err != nil {
			return s, err
		}
		s.legs = []leg{{category: domain.CategoryExpense,
			amount: escalating(v.Amount, n, v.GrowthRate, v.StartYear, v.EndYear)}}

	case domain.Saving:
		n, err := periodsOf(id, v.Frequency)
		if err != nil {
			return s, err
		}
		s.legs = []leg{{label: "contribution", category: domain.CategorySaving,
			amount: escalating(v.Amount, n, v.YearlyGrowthRate, v.StartYear, v.EndYear)}}

	case domain.Pension:
		if err := validatePension(v); err != nil {
			return s, atEntity(id, err)
		}
		if v.Type == domain.PensionNational {
			s.legs = []leg{{category: domain.CategoryPension, inflow: true,
				amount: escalating(v.MonthlyAmount, 12, v.InflationRate, v.StartYear, v.EndYear)}}
			break
		}
		if v.HasContributionPhase() {
			n, _ := v.ContributionFrequency.PeriodsPerYear()
			s.legs = []leg{{label: "contribution", category: domain.CategoryPension,
				amount: escalating(v.ContributionAmount, n, decimal.Zero, v.ContributionStartYear, v.ContributionEndYear)}}
		}

	case domain.RealEstate:
		if v.IsPurchase {
			s.legs = append(s.legs, leg{label: "purchase", category: domain.CategoryRealEstate,
				amount: once(v.CurrentValue, v.StartYear)})
		}
		if v.HasRental() {
			rentEnd := v.RentalIncomeEndYear
			if rentEnd == 0 {
				rentEnd = v.EndYear
			}
			if v.RentalIncomeStartYear > rentEnd {
				return s, atEntity(id, fmt.Errorf("%w: rental window %d-%d is inverted", ErrMalformedEntity, v.RentalIncomeStartYear, rentEnd))
			}
			s.legs = append(s.legs, leg{label: "rent", category: domain.CategoryRealEstate, inflow: true,
				amount: escalating(v.MonthlyRentalIncome, 12, decimal.Zero, v.RentalIncomeStartYear, rentEnd)})
		}
		if v.HasPensionConversion() {
			pensionEnd := v.PensionEndYear
			if pensionEnd == 0 {
				pensionEnd = v.EndYear
			}
			if v.PensionStartYear > pensionEnd {
				return s, atEntity(id, fmt.Errorf("%w: home pension window %d-%d is inverted", ErrMalformedEntity, v.PensionStartYear, pensionEnd))
			}
			s.legs = append(s.legs, leg{label: "home pension", category: domain.CategoryPension, inflow: true,
				amount: escalating(v.MonthlyPensionAmount, 12, decimal.Zero, v.PensionStartYear, pensionEnd)})
		}

	case domain.Debt:
		rows, err := AmortizeDebt(DebtTermsFrom(v))
		if err != nil {
			return s, atEntity(id, err)
		}
		s.debt = rows
		if v.StartYear >= profile.CurrentYear {
			s.legs = append(s.legs, leg{label: "loan", category: domain.CategoryDebt, inflow: true,
				amount: once(v.DebtAmount, v.StartYear)})
		}
		s.legs = append(s.legs, leg{label: "repayment", category: domain.CategoryDebt,
			amount: func(year int) decimal.Decimal {
				row, ok := debtRowFor(rows, year)
				if !ok {
					return decimal.Zero
				}
				return row.Payment
			}})

	case domain.Asset:
		if v.IsPurchase {
			s.legs = []leg{{label: "purchase", category: domain.CategoryAsset,
				amount: once(v.CurrentValue, v.StartYear)}}
		}

	default:
		return s, atEntity(id, fmt.Errorf("%w: unsupported entity %T", ErrMalformedEntity, e))
	}
	return s, nil
}

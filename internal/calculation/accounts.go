package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// SavingYear is the balance-dependent outcome of a saving for one year.
type SavingYear struct {
	Year         int
	Contribution decimal.Decimal
	Yield        decimal.Decimal
	Proceeds     decimal.Decimal
	Tax          decimal.Decimal
	Balance      decimal.Decimal
}

// SavingAccount carries a saving balance and its contributed principal through the fold.
type SavingAccount struct {
	saving       domain.Saving
	contribution func(int) decimal.Decimal
	Balance      decimal.Decimal
	Principal    decimal.Decimal
	Closed       bool
}

// NewSavingAccount opens a saving at its declared current amount.
func NewSavingAccount(s domain.Saving) (SavingAccount, error) {
	n, ok := s.Frequency.PeriodsPerYear()
	if !ok {
		return SavingAccount{}, fmt.Errorf("%w: unknown frequency %q", ErrMalformedEntity, s.Frequency)
	}
	return SavingAccount{
		saving:       s,
		contribution: escalating(s.Amount, n, s.YearlyGrowthRate, s.StartYear, s.EndYear),
		Balance:      s.CurrentAmount,
		Principal:    s.CurrentAmount,
	}, nil
}

// AcceptsDeposits reports whether surplus can be routed into the saving in year.
func (a SavingAccount) AcceptsDeposits(year int) bool {
	return !a.Closed && dateutil.InWindow(year, a.saving.StartYear, a.saving.EndYear)
}

// Deposit adds allocated surplus; it counts as principal for the maturity gain.
func (a SavingAccount) Deposit(amount decimal.Decimal) SavingAccount {
	a.Balance = a.Balance.Add(amount)
	a.Principal = a.Principal.Add(amount)
	return a
}

// Withdraw draws amount from the balance, reducing principal first.
func (a SavingAccount) Withdraw(amount decimal.Decimal) (SavingAccount, error) {
	if amount.GreaterThan(a.Balance) {
		return a, fmt.Errorf("%w: requested %s, balance %s",
			ErrWithdrawalExceedsBalance, money.Format(amount), money.Format(a.Balance))
	}
	a.Balance = a.Balance.Sub(amount)
	a.Principal = money.NonNegative(a.Principal.Sub(amount))
	return a, nil
}

// Step advances the saving through year. Inside its window the balance
// compounds at InterestRate and receives the year's contribution; the
// cash-yield variant pays balance×IncomeRate out instead of compounding. In
// EndYear the balance is liquidated and the gain over principal taxed.
func (a SavingAccount) Step(year int) (SavingAccount, SavingYear) {
	s := a.saving
	row := SavingYear{Year: year}
	switch {
	case a.Closed:
		return a, row
	case year > s.EndYear:
		// matured before the projection started
		a.Closed, a.Balance, a.Principal = true, decimal.Zero, decimal.Zero
		return a, row
	case year < s.StartYear:
		row.Balance = a.Balance
		return a, row
	}

	row.Contribution = a.contribution(year)
	if s.IncomeRate != nil {
		row.Yield = a.Balance.Mul(money.Rate(*s.IncomeRate))
		a.Balance = a.Balance.Add(row.Contribution)
	} else {
		a.Balance = a.Balance.Mul(decimal.NewFromInt(1).Add(money.Rate(s.InterestRate))).Add(row.Contribution)
	}
	a.Principal = a.Principal.Add(row.Contribution)

	if year == s.EndYear {
		row.Proceeds = a.Balance
		if gain := a.Balance.Sub(a.Principal); gain.IsPositive() {
			row.Tax = gain.Mul(money.Rate(s.CapitalGainsTaxRate))
		}
		a.Closed, a.Balance, a.Principal = true, decimal.Zero, decimal.Zero
	}
	row.Balance = a.Balance
	return a, row
}

// HoldingYear is the outcome of a valued holding for one year.
type HoldingYear struct {
	Year     int
	Yield    decimal.Decimal
	Proceeds decimal.Decimal
	Tax      decimal.Decimal
	Value    decimal.Decimal
	Held     bool
}

// Holding carries the value of an asset or property. It appears at its
// current value in its first active year and appreciates once per active year.
type Holding struct {
	id, title  string
	source     domain.SourceType
	category   domain.Category
	start, end int
	openValue  decimal.Decimal
	growth     decimal.Decimal
	incomeRate *decimal.Decimal
	cgtRate    decimal.Decimal
	liquidate  bool

	Value  decimal.Decimal
	Basis  decimal.Decimal
	opened bool
	Closed bool
}

// NewAssetHolding builds the holding of a general asset; assets are liquidated in EndYear.
func NewAssetHolding(a domain.Asset) Holding {
	return Holding{
		id: a.ID, title: a.Title,
		source: domain.SourceAsset, category: domain.CategoryAsset,
		start: a.StartYear, end: a.EndYear,
		openValue: a.CurrentValue, growth: a.GrowthRate,
		incomeRate: a.IncomeRate, cgtRate: a.CapitalGainsTaxRate,
		liquidate: true,
	}
}

// NewRealEstateHolding builds the holding of a property; it is sold in EndYear only when SellAtEnd is set.
func NewRealEstateHolding(r domain.RealEstate) Holding {
	return Holding{
		id: r.ID, title: r.Title,
		source: domain.SourceRealEstate, category: domain.CategoryRealEstate,
		start: r.StartYear, end: r.EndYear,
		openValue: r.CurrentValue, growth: r.GrowthRate,
		liquidate: r.SellAtEnd,
	}
}

// Step advances the holding through year.
func (h Holding) Step(year int) (Holding, HoldingYear) {
	row := HoldingYear{Year: year}
	if h.Closed || year < h.start {
		return h, row
	}
	if year > h.end {
		h.Closed, h.Value = true, decimal.Zero
		return h, row
	}
	if !h.opened {
		h.Value, h.Basis, h.opened = h.openValue, h.openValue, true
	}
	if h.incomeRate != nil {
		row.Yield = h.Value.Mul(money.Rate(*h.incomeRate))
	}
	h.Value = money.Grow(h.Value, h.growth, 1)
	row.Held = true

	if year == h.end && h.liquidate {
		row.Proceeds = h.Value
		if gain := h.Value.Sub(h.Basis); gain.IsPositive() {
			row.Tax = gain.Mul(money.Rate(h.cgtRate))
		}
		h.Closed, h.Value = true, decimal.Zero
		row.Held = false
	}
	row.Value = h.Value
	return h, row
}

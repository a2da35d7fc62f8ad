package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Profile describes the household head the projection is built around.
type Profile struct {
	Name          string          `yaml:"name,omitempty" json:"name,omitempty"`
	BirthYear     int             `yaml:"birth_year" json:"birthYear" validate:"required,gte=1900,lte=2100"`
	RetirementAge int             `yaml:"retirement_age" json:"retirementAge" validate:"gte=0,lte=120"`
	CurrentCash   decimal.Decimal `yaml:"current_cash" json:"currentCash"`
	TargetAssets  decimal.Decimal `yaml:"target_assets" json:"targetAssets" validate:"gte=0"`
	// CurrentYear is the first projected year; zero means "this calendar year".
	CurrentYear    int `yaml:"current_year,omitempty" json:"currentYear,omitempty" validate:"omitempty,gtefield=BirthYear"`
	LifeExpectancy int `yaml:"life_expectancy,omitempty" json:"lifeExpectancy,omitempty" validate:"omitempty,gte=1,lte=120"`
}

// TargetType names where an allocated surplus share is routed.
type TargetType string

const (
	TargetCash    TargetType = "cash"
	TargetSaving  TargetType = "saving"
	TargetPension TargetType = "pension"
)

// AllocationRule routes Ratio percent of a year's surplus to a target.
// The ratios of one year must sum to exactly 100.
type AllocationRule struct {
	TargetType TargetType      `yaml:"target_type" json:"targetType" validate:"required,oneof=cash saving pension"`
	TargetID   string          `yaml:"target_id,omitempty" json:"targetId,omitempty"`
	Ratio      decimal.Decimal `yaml:"ratio" json:"ratio" validate:"gt=0,lte=100"`
}

// WithdrawalRule draws Amount from a saving balance to cover a shortfall.
type WithdrawalRule struct {
	SourceType SourceType      `yaml:"source_type" json:"sourceType" validate:"required,oneof=saving"`
	SourceID   string          `yaml:"source_id" json:"sourceId" validate:"required"`
	Amount     decimal.Decimal `yaml:"amount" json:"amount" validate:"gt=0"`
}

// Household is the complete input of one projection.
type Household struct {
	Profile     Profile      `yaml:"profile" json:"profile"`
	Incomes     []Income     `yaml:"incomes,omitempty" json:"incomes,omitempty" validate:"dive"`
	Expenses    []Expense    `yaml:"expenses,omitempty" json:"expenses,omitempty" validate:"dive"`
	Savings     []Saving     `yaml:"savings,omitempty" json:"savings,omitempty" validate:"dive"`
	Pensions    []Pension    `yaml:"pensions,omitempty" json:"pensions,omitempty" validate:"dive"`
	RealEstates []RealEstate `yaml:"real_estates,omitempty" json:"realEstates,omitempty" validate:"dive"`
	Debts       []Debt       `yaml:"debts,omitempty" json:"debts,omitempty" validate:"dive"`
	Assets      []Asset      `yaml:"assets,omitempty" json:"assets,omitempty" validate:"dive"`

	AllocationRules map[int][]AllocationRule `yaml:"allocation_rules,omitempty" json:"allocationRules,omitempty" validate:"dive,dive"`
	WithdrawalRules map[int][]WithdrawalRule `yaml:"withdrawal_rules,omitempty" json:"withdrawalRules,omitempty" validate:"dive,dive"`
}

// Entities flattens the typed slices into the engine's entity list, in a
// stable order: incomes, expenses, savings, pensions, real estate, debts, assets.
func (h *Household) Entities() []Entity {
	out := make([]Entity, 0, len(h.Incomes)+len(h.Expenses)+len(h.Savings)+len(h.Pensions)+
		len(h.RealEstates)+len(h.Debts)+len(h.Assets))
	for _, e := range h.Incomes {
		out = append(out, e)
	}
	for _, e := range h.Expenses {
		out = append(out, e)
	}
	for _, e := range h.Savings {
		out = append(out, e)
	}
	for _, e := range h.Pensions {
		out = append(out, e)
	}
	for _, e := range h.RealEstates {
		out = append(out, e)
	}
	for _, e := range h.Debts {
		out = append(out, e)
	}
	for _, e := range h.Assets {
		out = append(out, e)
	}
	return out
}

// RuleYears returns the sorted years that carry an allocation or withdrawal rule.
func (h *Household) RuleYears() []int {
	seen := make(map[int]struct{}, len(h.AllocationRules)+len(h.WithdrawalRules))
	for y := range h.AllocationRules {
		seen[y] = struct{}{}
	}
	for y := range h.WithdrawalRules {
		seen[y] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

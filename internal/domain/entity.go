package domain

import (
	"github.com/shopspring/decimal"
)

// Category labels a cash-flow line item for stacked visualizations.
type Category string

const (
	CategoryIncome     Category = "income"
	CategoryExpense    Category = "expense"
	CategorySaving     Category = "saving"
	CategoryPension    Category = "pension"
	CategoryRealEstate Category = "realEstate"
	CategoryDebt       Category = "debt"
	CategoryTax        Category = "tax"
	CategoryAsset      Category = "asset"
)

// SourceType labels a balance item for composition views.
type SourceType string

const (
	SourceCash       SourceType = "cash"
	SourceSaving     SourceType = "saving"
	SourcePension    SourceType = "pension"
	SourceRealEstate SourceType = "realEstate"
	SourceAsset      SourceType = "asset"
	SourceDebt       SourceType = "debt"
)

// Frequency is the payment cadence of a recurring amount.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// PeriodsPerYear returns how many payments a year holds, and false for an unknown cadence.
func (f Frequency) PeriodsPerYear() (int, bool) {
	switch f {
	case FrequencyMonthly:
		return 12, true
	case FrequencyYearly:
		return 1, true
	}
	return 0, false
}

// PensionType distinguishes the pension variants.
type PensionType string

const (
	PensionNational   PensionType = "national"
	PensionRetirement PensionType = "retirement"
	PensionPersonal   PensionType = "personal"
	PensionSeverance  PensionType = "severance"
)

// DebtType selects the repayment scheme of a debt.
type DebtType string

const (
	DebtBullet    DebtType = "bullet"
	DebtEqual     DebtType = "equal"
	DebtPrincipal DebtType = "principal"
	DebtGrace     DebtType = "grace"
)

// Entity is the closed set of financial records the engine understands:
// Income, Expense, Saving, Pension, RealEstate, Debt and Asset.
type Entity interface {
	EntityID() string
	EntityTitle() string
	Kind() Category
	// Window returns the inclusive activation window.
	Window() (start, end int)
	isEntity()
}

// Income is a recurring inflow escalating geometrically from StartYear.
type Income struct {
	ID         string          `yaml:"id" json:"id"`
	Title      string          `yaml:"title" json:"title" validate:"required"`
	Amount     decimal.Decimal `yaml:"amount" json:"amount" validate:"gte=0"`
	Frequency  Frequency       `yaml:"frequency" json:"frequency" validate:"required,oneof=monthly yearly"`
	StartYear  int             `yaml:"start_year" json:"startYear" validate:"required"`
	EndYear    int             `yaml:"end_year" json:"endYear" validate:"required,gtefield=StartYear"`
	GrowthRate decimal.Decimal `yaml:"growth_rate" json:"growthRate" validate:"gte=-100,lte=100"`
}

// Expense is a recurring outflow escalating geometrically from StartYear.
type Expense struct {
	ID         string          `yaml:"id" json:"id"`
	Title      string          `yaml:"title" json:"title" validate:"required"`
	Amount     decimal.Decimal `yaml:"amount" json:"amount" validate:"gte=0"`
	Frequency  Frequency       `yaml:"frequency" json:"frequency" validate:"required,oneof=monthly yearly"`
	StartYear  int             `yaml:"start_year" json:"startYear" validate:"required"`
	EndYear    int             `yaml:"end_year" json:"endYear" validate:"required,gtefield=StartYear"`
	GrowthRate decimal.Decimal `yaml:"growth_rate" json:"growthRate" validate:"gte=-100,lte=100"`
}

// Saving is a contribution account. When IncomeRate is set the account pays
// its yield out as income each year instead of compounding.
type Saving struct {
	ID                  string           `yaml:"id" json:"id"`
	Title               string           `yaml:"title" json:"title" validate:"required"`
	Amount              decimal.Decimal  `yaml:"amount" json:"amount" validate:"gte=0"`
	Frequency           Frequency        `yaml:"frequency" json:"frequency" validate:"required,oneof=monthly yearly"`
	CurrentAmount       decimal.Decimal  `yaml:"current_amount" json:"currentAmount" validate:"gte=0"`
	InterestRate        decimal.Decimal  `yaml:"interest_rate" json:"interestRate" validate:"gte=-100,lte=100"`
	YearlyGrowthRate    decimal.Decimal  `yaml:"yearly_growth_rate" json:"yearlyGrowthRate" validate:"gte=-100,lte=100"`
	IncomeRate          *decimal.Decimal `yaml:"income_rate,omitempty" json:"incomeRate,omitempty"`
	CapitalGainsTaxRate decimal.Decimal  `yaml:"capital_gains_tax_rate" json:"capitalGainsTaxRate" validate:"gte=0,lte=100"`
	StartYear           int              `yaml:"start_year" json:"startYear" validate:"required"`
	EndYear             int              `yaml:"end_year" json:"endYear" validate:"required,gtefield=StartYear"`
}

// Pension covers the national annuity and balance-backed retirement,
// personal and severance pensions.
type Pension struct {
	ID    string      `yaml:"id" json:"id"`
	Title string      `yaml:"title" json:"title" validate:"required"`
	Type  PensionType `yaml:"type" json:"type" validate:"required,oneof=national retirement personal severance"`

	// national
	MonthlyAmount decimal.Decimal `yaml:"monthly_amount" json:"monthlyAmount" validate:"gte=0"`
	InflationRate decimal.Decimal `yaml:"inflation_rate" json:"inflationRate" validate:"gte=-100,lte=100"`
	StartYear     int             `yaml:"start_year" json:"startYear"`
	EndYear       int             `yaml:"end_year" json:"endYear"`

	// retirement, personal and severance
	ContributionAmount    decimal.Decimal `yaml:"contribution_amount" json:"contributionAmount" validate:"gte=0"`
	ContributionFrequency Frequency       `yaml:"contribution_frequency" json:"contributionFrequency" validate:"omitempty,oneof=monthly yearly"`
	ContributionStartYear int             `yaml:"contribution_start_year" json:"contributionStartYear"`
	ContributionEndYear   int             `yaml:"contribution_end_year" json:"contributionEndYear"`
	ReturnRate            decimal.Decimal `yaml:"return_rate" json:"returnRate" validate:"gte=-100,lte=100"`
	CurrentAmount         decimal.Decimal `yaml:"current_amount" json:"currentAmount" validate:"gte=0"`
	PaymentStartYear      int             `yaml:"payment_start_year" json:"paymentStartYear"`
	PaymentYears          int             `yaml:"payment_years" json:"paymentYears"`
	AnnuityDue            bool            `yaml:"annuity_due" json:"annuityDue"`

	// severance
	AverageSalary            decimal.Decimal `yaml:"average_salary" json:"averageSalary" validate:"gte=0"`
	YearsOfService           decimal.Decimal `yaml:"years_of_service" json:"yearsOfService" validate:"gte=0"`
	NoAdditionalContribution bool            `yaml:"no_additional_contribution" json:"noAdditionalContribution"`
}

// HasContributionPhase reports whether the pension accumulates contributions.
func (p Pension) HasContributionPhase() bool {
	if p.Type == PensionSeverance && p.NoAdditionalContribution {
		return false
	}
	return p.ContributionStartYear > 0 && p.ContributionEndYear > 0
}

// OpeningBalance returns the balance the pension starts from. Severance
// pensions derive it from salary and service whenever both are set, whether
// or not further contributions follow.
func (p Pension) OpeningBalance() decimal.Decimal {
	if p.Type == PensionSeverance && p.AverageSalary.IsPositive() && p.YearsOfService.IsPositive() {
		return p.AverageSalary.Mul(p.YearsOfService)
	}
	return p.CurrentAmount
}

// EffectivePaymentYears returns the payout length; a lump-sum severance always pays once.
func (p Pension) EffectivePaymentYears() int {
	if p.Type == PensionSeverance && p.NoAdditionalContribution {
		return 1
	}
	return p.PaymentYears
}

// RealEstate is a property with optional rental and home-equity pension sub-windows.
type RealEstate struct {
	ID           string          `yaml:"id" json:"id"`
	Title        string          `yaml:"title" json:"title" validate:"required"`
	CurrentValue decimal.Decimal `yaml:"current_value" json:"currentValue" validate:"gte=0"`
	GrowthRate   decimal.Decimal `yaml:"growth_rate" json:"growthRate" validate:"gte=-100,lte=100"`
	StartYear    int             `yaml:"start_year" json:"startYear" validate:"required"`
	EndYear      int             `yaml:"end_year" json:"endYear" validate:"required,gtefield=StartYear"`
	IsPurchase   bool            `yaml:"is_purchase" json:"isPurchase"`
	SellAtEnd    bool            `yaml:"sell_at_end" json:"sellAtEnd"`

	RentalIncomeStartYear int             `yaml:"rental_income_start_year" json:"rentalIncomeStartYear"`
	RentalIncomeEndYear   int             `yaml:"rental_income_end_year" json:"rentalIncomeEndYear"`
	MonthlyRentalIncome   decimal.Decimal `yaml:"monthly_rental_income" json:"monthlyRentalIncome" validate:"gte=0"`

	PensionStartYear     int             `yaml:"pension_start_year" json:"pensionStartYear"`
	PensionEndYear       int             `yaml:"pension_end_year" json:"pensionEndYear"`
	MonthlyPensionAmount decimal.Decimal `yaml:"monthly_pension_amount" json:"monthlyPensionAmount" validate:"gte=0"`
}

// HasRental reports whether a rental sub-window is configured.
func (r RealEstate) HasRental() bool {
	return r.RentalIncomeStartYear > 0 && r.MonthlyRentalIncome.IsPositive()
}

// HasPensionConversion reports whether a home-equity pension sub-window is configured.
func (r RealEstate) HasPensionConversion() bool {
	return r.PensionStartYear > 0 && r.MonthlyPensionAmount.IsPositive()
}

// Debt is a loan repaid under one of four schemes.
type Debt struct {
	ID           string          `yaml:"id" json:"id"`
	Title        string          `yaml:"title" json:"title" validate:"required"`
	DebtAmount   decimal.Decimal `yaml:"debt_amount" json:"debtAmount" validate:"gte=0"`
	InterestRate decimal.Decimal `yaml:"interest_rate" json:"interestRate" validate:"gte=0,lte=100"`
	DebtType     DebtType        `yaml:"debt_type" json:"debtType" validate:"required,oneof=bullet equal principal grace"`
	GracePeriod  int             `yaml:"grace_period" json:"gracePeriod" validate:"gte=0"`
	StartYear    int             `yaml:"start_year" json:"startYear" validate:"required"`
	EndYear      int             `yaml:"end_year" json:"endYear" validate:"required,gtefield=StartYear"`
}

// Asset is a general holding that appreciates and may pay a yield.
type Asset struct {
	ID                  string           `yaml:"id" json:"id"`
	Title               string           `yaml:"title" json:"title" validate:"required"`
	CurrentValue        decimal.Decimal  `yaml:"current_value" json:"currentValue" validate:"gte=0"`
	GrowthRate          decimal.Decimal  `yaml:"growth_rate" json:"growthRate" validate:"gte=-100,lte=100"`
	IncomeRate          *decimal.Decimal `yaml:"income_rate,omitempty" json:"incomeRate,omitempty"`
	CapitalGainsTaxRate decimal.Decimal  `yaml:"capital_gains_tax_rate" json:"capitalGainsTaxRate" validate:"gte=0,lte=100"`
	IsPurchase          bool             `yaml:"is_purchase" json:"isPurchase"`
	StartYear           int              `yaml:"start_year" json:"startYear" validate:"required"`
	EndYear             int              `yaml:"end_year" json:"endYear" validate:"required,gtefield=StartYear"`
}

func (e Income) EntityID() string     { return e.ID }
func (e Expense) EntityID() string    { return e.ID }
func (e Saving) EntityID() string     { return e.ID }
func (e Pension) EntityID() string    { return e.ID }
func (e RealEstate) EntityID() string { return e.ID }
func (e Debt) EntityID() string       { return e.ID }
func (e Asset) EntityID() string      { return e.ID }

func (e Income) EntityTitle() string     { return e.Title }
func (e Expense) EntityTitle() string    { return e.Title }
func (e Saving) EntityTitle() string     { return e.Title }
func (e Pension) EntityTitle() string    { return e.Title }
func (e RealEstate) EntityTitle() string { return e.Title }
func (e Debt) EntityTitle() string       { return e.Title }
func (e Asset) EntityTitle() string      { return e.Title }

func (Income) Kind() Category     { return CategoryIncome }
func (Expense) Kind() Category    { return CategoryExpense }
func (Saving) Kind() Category     { return CategorySaving }
func (Pension) Kind() Category    { return CategoryPension }
func (RealEstate) Kind() Category { return CategoryRealEstate }
func (Debt) Kind() Category       { return CategoryDebt }
func (Asset) Kind() Category      { return CategoryAsset }

func (e Income) Window() (int, int)     { return e.StartYear, e.EndYear }
func (e Expense) Window() (int, int)    { return e.StartYear, e.EndYear }
func (e Saving) Window() (int, int)     { return e.StartYear, e.EndYear }
func (e RealEstate) Window() (int, int) { return e.StartYear, e.EndYear }
func (e Debt) Window() (int, int)       { return e.StartYear, e.EndYear }
func (e Asset) Window() (int, int)      { return e.StartYear, e.EndYear }

// Window for a pension spans contributions through the last payout year.
// National pensions use StartYear/EndYear directly.
func (e Pension) Window() (int, int) {
	if e.Type == PensionNational {
		return e.StartYear, e.EndYear
	}
	start := e.PaymentStartYear
	if e.HasContributionPhase() && e.ContributionStartYear < start {
		start = e.ContributionStartYear
	}
	return start, e.PaymentStartYear + e.EffectivePaymentYears() - 1
}

func (Income) isEntity()     {}
func (Expense) isEntity()    {}
func (Saving) isEntity()     {}
func (Pension) isEntity()    {}
func (RealEstate) isEntity() {}
func (Debt) isEntity()       {}
func (Asset) isEntity()      {}

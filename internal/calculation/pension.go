package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// PensionPhase describes where a balance-backed pension is in its lifecycle for a year.
type PensionPhase string

const (
	PhasePending      PensionPhase = "pending"
	PhaseAccumulation PensionPhase = "accumulation"
	PhaseDeferral     PensionPhase = "deferral"
	PhasePayout       PensionPhase = "payout"
	PhaseClosed       PensionPhase = "closed"
)

// PensionYear is one row of a pension schedule. Balance is the end-of-year balance.
type PensionYear struct {
	Year         int             `json:"year"`
	Phase        PensionPhase    `json:"phase"`
	Contribution decimal.Decimal `json:"contribution"`
	Payout       decimal.Decimal `json:"payout"`
	Balance      decimal.Decimal `json:"balance"`
}

// PensionAccount is the carried state of one pension. It is a value type:
// Step and Deposit return a new account and never modify the receiver.
type PensionAccount struct {
	pension domain.Pension
	rate    decimal.Decimal
	Balance decimal.Decimal
	// Payment is the level annuity fixed at the first payout year.
	Payment decimal.Decimal
}

// NewPensionAccount validates a pension and opens its account at the declared opening balance.
func NewPensionAccount(p domain.Pension) (PensionAccount, error) {
	if err := validatePension(p); err != nil {
		return PensionAccount{}, err
	}
	rate := money.Rate(p.ReturnRate)
	if p.Type == domain.PensionSeverance && p.NoAdditionalContribution {
		// pure cash conversion
		rate = decimal.Zero
	}
	return PensionAccount{pension: p, rate: rate, Balance: p.OpeningBalance()}, nil
}

func validatePension(p domain.Pension) error {
	switch p.Type {
	case domain.PensionNational:
		if p.StartYear > p.EndYear {
			return fmt.Errorf("%w: national pension window %d-%d is inverted", ErrMalformedEntity, p.StartYear, p.EndYear)
		}
		return nil
	case domain.PensionRetirement, domain.PensionPersonal, domain.PensionSeverance:
	default:
		return fmt.Errorf("%w: unknown pension type %q", ErrMalformedEntity, p.Type)
	}

	if p.EffectivePaymentYears() <= 0 {
		return fmt.Errorf("%w: payment years must be positive, got %d", ErrDegenerateSchedule, p.PaymentYears)
	}
	if p.PaymentStartYear <= 0 {
		return fmt.Errorf("%w: payment start year is required", ErrMalformedEntity)
	}
	if p.HasContributionPhase() {
		if p.ContributionStartYear > p.ContributionEndYear {
			return fmt.Errorf("%w: contribution window %d-%d is inverted",
				ErrMalformedEntity, p.ContributionStartYear, p.ContributionEndYear)
		}
		if _, ok := p.ContributionFrequency.PeriodsPerYear(); !ok {
			return fmt.Errorf("%w: unknown contribution frequency %q", ErrMalformedEntity, p.ContributionFrequency)
		}
		if p.PaymentStartYear <= p.ContributionEndYear {
			return fmt.Errorf("%w: payout starting %d overlaps contributions ending %d",
				ErrDegenerateSchedule, p.PaymentStartYear, p.ContributionEndYear)
		}
	}
	return nil
}

// IsNational reports whether the account is a balance-less national pension.
func (a PensionAccount) IsNational() bool { return a.pension.Type == domain.PensionNational }

func (a PensionAccount) payoutEnd() int {
	return a.pension.PaymentStartYear + a.pension.EffectivePaymentYears() - 1
}

// Phase reports the lifecycle phase of the account in year.
func (a PensionAccount) Phase(year int) PensionPhase {
	p := a.pension
	if a.IsNational() {
		if dateutil.InWindow(year, p.StartYear, p.EndYear) {
			return PhasePayout
		}
		if year < p.StartYear {
			return PhasePending
		}
		return PhaseClosed
	}
	switch {
	case year > a.payoutEnd():
		return PhaseClosed
	case year >= p.PaymentStartYear:
		return PhasePayout
	case p.HasContributionPhase() && dateutil.InWindow(year, p.ContributionStartYear, p.ContributionEndYear):
		return PhaseAccumulation
	case p.HasContributionPhase() && year < p.ContributionStartYear:
		return PhasePending
	default:
		return PhaseDeferral
	}
}

// AcceptsDeposits reports whether surplus can be routed into the account in year.
func (a PensionAccount) AcceptsDeposits(year int) bool {
	if a.IsNational() {
		return false
	}
	switch a.Phase(year) {
	case PhasePending, PhaseAccumulation, PhaseDeferral:
		return true
	}
	return false
}

// Deposit adds an allocated amount to the balance.
func (a PensionAccount) Deposit(amount decimal.Decimal) PensionAccount {
	a.Balance = a.Balance.Add(amount)
	return a
}

// Step advances the account through year and returns the new account and
// the year's row. During accumulation the balance compounds and then receives
// the contribution. During payout the level payment is fixed on the first payout
// year from the balance and the years left; ordinary annuities compound before
// paying and annuities-due pay before compounding. The last payment clears the balance.
func (a PensionAccount) Step(year int) (PensionAccount, PensionYear) {
	p := a.pension
	row := PensionYear{Year: year, Phase: a.Phase(year)}

	if a.IsNational() {
		if row.Phase == PhasePayout {
			row.Payout = money.Grow(p.MonthlyAmount.Mul(decimal.NewFromInt(12)), p.InflationRate, year-p.StartYear)
		}
		return a, row
	}

	switch row.Phase {
	case PhaseAccumulation:
		periods, _ := p.ContributionFrequency.PeriodsPerYear()
		row.Contribution = p.ContributionAmount.Mul(decimal.NewFromInt(int64(periods)))
		a.Balance = a.Balance.Mul(decimal.NewFromInt(1).Add(a.rate)).Add(row.Contribution)
	case PhasePayout:
		remaining := a.payoutEnd() - year + 1
		if a.Payment.IsZero() {
			a.Payment = money.PMT(a.Balance, a.rate, remaining, p.AnnuityDue)
		}
		growth := decimal.NewFromInt(1).Add(a.rate)
		switch {
		case remaining == 1 && p.AnnuityDue:
			row.Payout = a.Balance
			a.Balance = decimal.Zero
		case remaining == 1:
			row.Payout = a.Balance.Mul(growth)
			a.Balance = decimal.Zero
		case p.AnnuityDue:
			row.Payout = a.Payment
			a.Balance = a.Balance.Sub(a.Payment).Mul(growth)
		default:
			row.Payout = a.Payment
			a.Balance = a.Balance.Mul(growth).Sub(a.Payment)
		}
	case PhaseClosed:
		a.Balance = decimal.Zero
	}
	row.Balance = a.Balance
	return a, row
}

// PensionSchedule steps a pension from the start of its window to the end of its payout.
func PensionSchedule(p domain.Pension) ([]PensionYear, error) {
	acct, err := NewPensionAccount(p)
	if err != nil {
		return nil, err
	}
	start, end := p.Window()
	rows := make([]PensionYear, 0, dateutil.Span(start, end))
	for _, y := range dateutil.Years(start, end) {
		var row PensionYear
		acct, row = acct.Step(y)
		rows = append(rows, row)
	}
	return rows, nil
}

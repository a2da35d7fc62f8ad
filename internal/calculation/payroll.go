package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
)

// PAYROLL DEDUCTION ASSUMPTIONS (2024 employee shares, monthly pay):
//
// 1. National pension: 4.5% of gross, base capped at 6,170,000/month
// 2. Health insurance: 3.545% of gross
// 3. Long-term care: 12.95% of the health insurance premium
// 4. Employment insurance: 0.9% of gross
// 5. Income tax: annual progressive brackets on 12×gross less a flat
//    1,500,000 base deduction, spread evenly over 12 months
// 6. Local income tax: 10% of income tax

// TaxBracket represents an annual income tax bracket.
type TaxBracket struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Rate decimal.Decimal `json:"rate"`
}

// PayrollRules is the deduction stack applied to a monthly gross salary.
type PayrollRules struct {
	PensionRate        decimal.Decimal
	PensionBaseCeiling decimal.Decimal
	HealthRate         decimal.Decimal
	LongTermCareRate   decimal.Decimal
	EmploymentRate     decimal.Decimal
	BaseDeduction      decimal.Decimal
	Brackets           []TaxBracket
	LocalTaxRate       decimal.Decimal
}

// NewPayrollRules2024 returns the default deduction stack.
func NewPayrollRules2024() PayrollRules {
	return PayrollRules{
		PensionRate:        decimal.NewFromFloat(0.045),
		PensionBaseCeiling: decimal.NewFromInt(6170000),
		HealthRate:         decimal.NewFromFloat(0.03545),
		LongTermCareRate:   decimal.NewFromFloat(0.1295),
		EmploymentRate:     decimal.NewFromFloat(0.009),
		BaseDeduction:      decimal.NewFromInt(1500000),
		Brackets: []TaxBracket{
			{decimal.Zero, decimal.NewFromInt(14000000), decimal.NewFromFloat(0.06)},
			{decimal.NewFromInt(14000000), decimal.NewFromInt(50000000), decimal.NewFromFloat(0.15)},
			{decimal.NewFromInt(50000000), decimal.NewFromInt(88000000), decimal.NewFromFloat(0.24)},
			{decimal.NewFromInt(88000000), decimal.NewFromInt(150000000), decimal.NewFromFloat(0.35)},
			{decimal.NewFromInt(150000000), decimal.NewFromInt(300000000), decimal.NewFromFloat(0.38)},
			{decimal.NewFromInt(300000000), decimal.NewFromInt(500000000), decimal.NewFromFloat(0.40)},
			{decimal.NewFromInt(500000000), decimal.NewFromInt(1000000000), decimal.NewFromFloat(0.42)},
			{decimal.NewFromInt(1000000000), decimal.NewFromInt(999999999999999), decimal.NewFromFloat(0.45)},
		},
		LocalTaxRate: decimal.NewFromFloat(0.10),
	}
}

// Deductions itemizes one month's payroll deductions.
type Deductions struct {
	Gross        decimal.Decimal `json:"gross"`
	Pension      decimal.Decimal `json:"pension"`
	Health       decimal.Decimal `json:"health"`
	LongTermCare decimal.Decimal `json:"longTermCare"`
	Employment   decimal.Decimal `json:"employment"`
	IncomeTax    decimal.Decimal `json:"incomeTax"`
	LocalTax     decimal.Decimal `json:"localTax"`
	Total        decimal.Decimal `json:"total"`
	Net          decimal.Decimal `json:"net"`
}

// Deductions applies the stack to a monthly gross salary.
func (r PayrollRules) Deductions(gross decimal.Decimal) Deductions {
	d := Deductions{Gross: gross}
	d.Pension = decimal.Min(gross, r.PensionBaseCeiling).Mul(r.PensionRate)
	d.Health = gross.Mul(r.HealthRate)
	d.LongTermCare = d.Health.Mul(r.LongTermCareRate)
	d.Employment = gross.Mul(r.EmploymentRate)
	d.IncomeTax = r.annualIncomeTax(gross.Mul(decimal.NewFromInt(12))).Div(decimal.NewFromInt(12))
	d.LocalTax = d.IncomeTax.Mul(r.LocalTaxRate)
	d.Total = money.Sum(d.Pension, d.Health, d.LongTermCare, d.Employment, d.IncomeTax, d.LocalTax)
	d.Net = gross.Sub(d.Total)
	return d
}

func (r PayrollRules) annualIncomeTax(annualGross decimal.Decimal) decimal.Decimal {
	taxable := annualGross.Sub(r.BaseDeduction)
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var total decimal.Decimal
	for _, bracket := range r.Brackets {
		if taxable.LessThanOrEqual(bracket.Min) {
			break
		}
		inBracket := decimal.Min(taxable, bracket.Max).Sub(bracket.Min)
		if inBracket.GreaterThan(decimal.Zero) {
			total = total.Add(inBracket.Mul(bracket.Rate))
		}
	}
	return total
}

// SolverOptions bounds the net-to-gross iteration.
type SolverOptions struct {
	Tolerance     decimal.Decimal
	MaxIterations int
}

// DefaultSolverOptions converges to within one unit in at most 100 steps.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{Tolerance: decimal.NewFromInt(1), MaxIterations: 100}
}

// GrossSolution is the tagged outcome of SolveGrossFromNet. When Converged is
// false Gross holds the last unverified estimate and must not be used as an answer.
type GrossSolution struct {
	TargetNet  decimal.Decimal `json:"targetNet"`
	Gross      decimal.Decimal `json:"gross"`
	Deductions Deductions      `json:"deductions"`
	Residual   decimal.Decimal `json:"residual"`
	Iterations int             `json:"iterations"`
	Converged  bool            `json:"converged"`
}

var (
	initialGrossFactor = decimal.NewFromFloat(1.3)
	residualDamping    = decimal.NewFromFloat(0.5)
)

// SolveGrossFromNet finds the monthly gross salary whose net pay under rules
// equals net. It starts at net×1.3 and moves the estimate by half the residual
// each step. Running out of iterations returns ErrToleranceExceeded along with
// the unconverged solution.
func SolveGrossFromNet(net decimal.Decimal, rules PayrollRules, opts SolverOptions) (GrossSolution, error) {
	if !net.IsPositive() {
		return GrossSolution{}, fmt.Errorf("%w: net pay must be positive, got %s", ErrMalformedEntity, net.String())
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultSolverOptions().MaxIterations
	}
	if !opts.Tolerance.IsPositive() {
		opts.Tolerance = DefaultSolverOptions().Tolerance
	}

	sol := GrossSolution{TargetNet: net, Gross: net.Mul(initialGrossFactor)}
	for {
		sol.Iterations++
		sol.Deductions = rules.Deductions(sol.Gross)
		sol.Residual = net.Sub(sol.Deductions.Net)
		if money.Within(sol.Deductions.Net, net, opts.Tolerance) {
			sol.Converged = true
			return sol, nil
		}
		if sol.Iterations >= opts.MaxIterations {
			break
		}
		sol.Gross = sol.Gross.Add(sol.Residual.Mul(residualDamping))
	}
	return sol, fmt.Errorf("%w: residual %s after %d iterations",
		ErrToleranceExceeded, sol.Residual.StringFixed(2), sol.Iterations)
}

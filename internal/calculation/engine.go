package calculation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// ProjectionEngine orchestrates household projections and the standalone calculators.
// It holds no per-run state and is safe for concurrent use.
type ProjectionEngine struct {
	Payroll PayrollRules
	Solver  SolverOptions
	Logger  Logger
}

// NewProjectionEngine creates an engine with the default payroll rules and solver bounds.
func NewProjectionEngine() *ProjectionEngine {
	return &ProjectionEngine{
		Payroll: NewPayrollRules2024(),
		Solver:  DefaultSolverOptions(),
		Logger:  NopLogger{},
	}
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op logger is used.
func (ce *ProjectionEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// RunProjection projects a household and summarizes the result.
func (ce *ProjectionEngine) RunProjection(ctx context.Context, h *domain.Household) (*domain.ProjectionSummary, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: household is required", ErrMalformedEntity)
	}
	snapshots, err := ce.GenerateProjection(ctx, h)
	if err != nil {
		return nil, err
	}
	summary := Summarize(h.Profile, snapshots)
	ce.Logger.Infof("projection %s: %d-%d, final net assets %s",
		summary.RunID, summary.FirstYear, summary.LastYear, summary.FinalNetAssets.StringFixed(2))
	return summary, nil
}

// SolveGross inverts the engine's payroll rules for a monthly net salary.
func (ce *ProjectionEngine) SolveGross(net decimal.Decimal) (GrossSolution, error) {
	sol, err := SolveGrossFromNet(net, ce.Payroll, ce.Solver)
	if err != nil {
		ce.Logger.Warnf("gross solver: %v", err)
		return sol, err
	}
	ce.Logger.Debugf("gross solver converged after %d iterations", sol.Iterations)
	return sol, nil
}

// AmortizeDebt builds a standalone debt schedule and its totals.
func (ce *ProjectionEngine) AmortizeDebt(terms DebtTerms) ([]DebtYear, DebtSummary, error) {
	rows, err := AmortizeDebt(terms)
	if err != nil {
		ce.Logger.Warnf("amortize %s debt: %v", terms.Type, err)
		return nil, DebtSummary{}, err
	}
	return rows, SummarizeDebt(rows), nil
}

// PensionSchedule builds a standalone pension schedule.
func (ce *ProjectionEngine) PensionSchedule(p domain.Pension) ([]PensionYear, error) {
	rows, err := PensionSchedule(p)
	if err != nil {
		ce.Logger.Warnf("pension schedule %q: %v", p.Title, err)
		return nil, err
	}
	return rows, nil
}

// Summarize derives the headline metrics of a projection.
func Summarize(profile domain.Profile, snapshots []domain.YearSnapshot) *domain.ProjectionSummary {
	summary := &domain.ProjectionSummary{
		RunID:          uuid.NewString(),
		Name:           profile.Name,
		RetirementYear: dateutil.RetirementYear(profile.BirthYear, profile.RetirementAge),
		TargetAssets:   profile.TargetAssets,
		Snapshots:      snapshots,
	}
	if len(snapshots) == 0 {
		return summary
	}
	summary.FirstYear = snapshots[0].Year
	summary.LastYear = snapshots[len(snapshots)-1].Year
	summary.FinalNetAssets = snapshots[len(snapshots)-1].NetAssets
	summary.PeakNetAssets = snapshots[0].NetAssets
	summary.PeakNetAssetsYear = snapshots[0].Year

	for _, s := range snapshots {
		if s.NetAssets.GreaterThan(summary.PeakNetAssets) {
			summary.PeakNetAssets = s.NetAssets
			summary.PeakNetAssetsYear = s.Year
		}
		if summary.TargetReachedYear == nil && profile.TargetAssets.IsPositive() &&
			s.NetAssets.GreaterThanOrEqual(profile.TargetAssets) {
			y := s.Year
			summary.TargetReachedYear = &y
		}
		if summary.FirstNegativeCashYear == nil && s.Cash.IsNegative() {
			y := s.Year
			summary.FirstNegativeCashYear = &y
		}
	}
	return summary
}

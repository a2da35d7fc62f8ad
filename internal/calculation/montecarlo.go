package calculation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// MonteCarloConfig holds configuration for Monte Carlo simulations.
type MonteCarloConfig struct {
	NumSimulations int
	Seed           int64
	// Volatility is the standard deviation, in percentage points, of the
	// shift drawn for every rate-bearing entity in each simulation.
	Volatility decimal.Decimal
	// Workers bounds the number of concurrent projections; zero means 10.
	Workers int
}

// MonteCarloResult represents the results of a Monte Carlo simulation.
type MonteCarloResult struct {
	Simulations      []SimulationOutcome `json:"simulations"`
	NumSimulations   int                 `json:"numSimulations"`
	Seed             int64               `json:"seed"`
	Volatility       decimal.Decimal     `json:"volatility"`
	SuccessRate      decimal.Decimal     `json:"successRate"`
	TargetRate       decimal.Decimal     `json:"targetRate"`
	Aborted          int                 `json:"aborted"`
	PercentileRanges PercentileRanges    `json:"percentileRanges"`
}

// SimulationOutcome represents a single Monte Carlo simulation outcome.
type SimulationOutcome struct {
	FinalNetAssets decimal.Decimal `json:"finalNetAssets"`
	LowestCash     decimal.Decimal `json:"lowestCash"`
	// Success means every year was projected and cash never went negative.
	Success       bool `json:"success"`
	TargetReached bool `json:"targetReached"`
	// AbortedYear is the year the projection stopped in, or zero.
	AbortedYear int    `json:"abortedYear,omitempty"`
	AbortedBy   string `json:"abortedBy,omitempty"`
}

// PercentileRanges represents percentile ranges of final net assets.
type PercentileRanges struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

var (
	rateFloor   = decimal.NewFromInt(-99)
	rateCeiling = decimal.NewFromInt(100)
)

// SimulateReturns projects the household NumSimulations times with every
// saving, pension, real-estate and asset rate shifted by a normal draw of
// the configured volatility. Each simulation uses its own source seeded
// from Seed and its index, so results do not depend on scheduling.
// A simulation whose projection aborts is counted as a failure; only
// cancellation of ctx stops the run.
func (ce *ProjectionEngine) SimulateReturns(ctx context.Context, h *domain.Household, config MonteCarloConfig) (*MonteCarloResult, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: household is required", ErrMalformedEntity)
	}
	if config.NumSimulations <= 0 {
		return nil, fmt.Errorf("number of simulations must be positive, got %d", config.NumSimulations)
	}
	if config.Volatility.IsNegative() {
		return nil, fmt.Errorf("volatility must not be negative, got %s", config.Volatility.String())
	}
	if config.Seed == 0 {
		config.Seed = seedFunc()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = 10
	}
	// A household that fails up front fails every simulation the same way.
	if _, _, err := ce.preparePlan(h); err != nil {
		return nil, err
	}

	results := make([]SimulationOutcome, config.NumSimulations)
	errs := make([]error, config.NumSimulations)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i := 0; i < config.NumSimulations; i++ {
		wg.Add(1)
		go func(simIndex int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rng := rand.New(rand.NewSource(config.Seed + int64(simIndex)))
			results[simIndex], errs[simIndex] = ce.runSingleSimulation(ctx, shiftRates(h, rng, config.Volatility))
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	res := &MonteCarloResult{
		Simulations:      results,
		NumSimulations:   config.NumSimulations,
		Seed:             config.Seed,
		Volatility:       config.Volatility,
		PercentileRanges: calculatePercentileRanges(results),
	}
	var success, target int
	for _, r := range results {
		if r.Success {
			success++
		}
		if r.TargetReached {
			target++
		}
		if r.AbortedYear != 0 {
			res.Aborted++
		}
	}
	n := decimal.NewFromInt(int64(config.NumSimulations))
	res.SuccessRate = decimal.NewFromInt(int64(success)).Div(n)
	res.TargetRate = decimal.NewFromInt(int64(target)).Div(n)
	ce.Logger.Infof("simulated %d projections: success rate %s", config.NumSimulations, res.SuccessRate.StringFixed(3))
	return res, nil
}

// runSingleSimulation runs one projection and reduces it to an outcome.
// Only context errors are returned.
func (ce *ProjectionEngine) runSingleSimulation(ctx context.Context, h *domain.Household) (SimulationOutcome, error) {
	snapshots, err := ce.GenerateProjection(ctx, h)
	var out SimulationOutcome
	if err != nil {
		var pe *ProjectionError
		if !errors.As(err, &pe) {
			return out, err
		}
		out.AbortedYear, out.AbortedBy = pe.Year, pe.EntityID
	}
	if len(snapshots) == 0 {
		return out, nil
	}

	summary := Summarize(h.Profile, snapshots)
	out.FinalNetAssets = summary.FinalNetAssets
	out.TargetReached = summary.TargetReachedYear != nil
	out.LowestCash = snapshots[0].Cash
	for _, s := range snapshots {
		out.LowestCash = decimal.Min(out.LowestCash, s.Cash)
	}
	out.Success = out.AbortedYear == 0 && summary.FirstNegativeCashYear == nil
	return out, nil
}

// shiftRates returns a copy of h whose growth and return rates are moved by
// one normal draw per entity. Rule maps are shared; the fold never writes them.
func shiftRates(h *domain.Household, rng *rand.Rand, volatility decimal.Decimal) *domain.Household {
	out := *h
	if volatility.IsZero() {
		return &out
	}
	shift := func(rate decimal.Decimal) decimal.Decimal {
		r := rate.Add(decimal.NewFromFloat(rng.NormFloat64()).Mul(volatility))
		return decimal.Min(decimal.Max(r, rateFloor), rateCeiling)
	}

	out.Savings = append([]domain.Saving(nil), h.Savings...)
	for i := range out.Savings {
		out.Savings[i].InterestRate = shift(out.Savings[i].InterestRate)
	}
	out.Pensions = append([]domain.Pension(nil), h.Pensions...)
	for i := range out.Pensions {
		if out.Pensions[i].Type != domain.PensionNational {
			out.Pensions[i].ReturnRate = shift(out.Pensions[i].ReturnRate)
		}
	}
	out.RealEstates = append([]domain.RealEstate(nil), h.RealEstates...)
	for i := range out.RealEstates {
		out.RealEstates[i].GrowthRate = shift(out.RealEstates[i].GrowthRate)
	}
	out.Assets = append([]domain.Asset(nil), h.Assets...)
	for i := range out.Assets {
		out.Assets[i].GrowthRate = shift(out.Assets[i].GrowthRate)
	}
	return &out
}

// calculatePercentileRanges calculates percentile ranges of final net assets.
func calculatePercentileRanges(simulations []SimulationOutcome) PercentileRanges {
	balances := make([]decimal.Decimal, len(simulations))
	for i, sim := range simulations {
		balances[i] = sim.FinalNetAssets
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].LessThan(balances[j]) })

	n := len(balances)
	return PercentileRanges{
		P10: balances[n/10],
		P25: balances[n/4],
		P50: balances[n/2],
		P75: balances[3*n/4],
		P90: balances[9*n/10],
	}
}

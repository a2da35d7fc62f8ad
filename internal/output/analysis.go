package output

import (
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Highlights are the milestones of a projection worth calling out above the year table.
type Highlights struct {
	RetirementNetAssets decimal.Decimal
	RetirementCovered   bool
	ShortfallYears      int
	DeepestCash         decimal.Decimal
	DeepestCashYear     int
	TargetGap           decimal.Decimal
}

// AnalyzeProjection derives the highlights of a summary.
// Extracted from the console formatter for testability.
func AnalyzeProjection(summary *domain.ProjectionSummary) Highlights {
	var h Highlights
	if s, ok := summary.SnapshotFor(summary.RetirementYear); ok {
		h.RetirementNetAssets = s.NetAssets
		h.RetirementCovered = true
	}
	for i, s := range summary.Snapshots {
		if s.NetCashFlow.IsNegative() {
			h.ShortfallYears++
		}
		if i == 0 || s.Cash.LessThan(h.DeepestCash) {
			h.DeepestCash = s.Cash
			h.DeepestCashYear = s.Year
		}
	}
	if summary.TargetAssets.IsPositive() && summary.TargetReachedYear == nil {
		h.TargetGap = summary.TargetAssets.Sub(summary.PeakNetAssets)
	}
	return h
}

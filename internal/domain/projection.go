package domain

import (
	"github.com/shopspring/decimal"
)

// LineItem is one labelled cash movement within a year.
type LineItem struct {
	EntityID string          `json:"entityId"`
	Title    string          `json:"title"`
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// BalanceItem is one end-of-year balance, tagged by where it is held.
type BalanceItem struct {
	EntityID   string          `json:"entityId"`
	Title      string          `json:"title"`
	SourceType SourceType      `json:"sourceType"`
	Amount     decimal.Decimal `json:"amount"`
}

// Breakdown groups a year's flows and balances.
type Breakdown struct {
	Positives  []LineItem    `json:"positives"`
	Negatives  []LineItem    `json:"negatives"`
	AssetItems []BalanceItem `json:"assetItems"`
	DebtItems  []BalanceItem `json:"debtItems"`
}

// AppliedAllocation records the share of a surplus routed to one target.
type AppliedAllocation struct {
	TargetType TargetType      `json:"targetType"`
	TargetID   string          `json:"targetId,omitempty"`
	Ratio      decimal.Decimal `json:"ratio"`
	Amount     decimal.Decimal `json:"amount"`
}

// YearSnapshot is the immutable result of one projected year.
type YearSnapshot struct {
	Year        int                 `json:"year"`
	Age         int                 `json:"age"`
	Breakdown   Breakdown           `json:"breakdown"`
	NetCashFlow decimal.Decimal     `json:"netCashFlow"`
	Cash        decimal.Decimal     `json:"cash"`
	Allocations []AppliedAllocation `json:"allocations,omitempty"`
	TotalAssets decimal.Decimal     `json:"totalAssets"`
	TotalDebt   decimal.Decimal     `json:"totalDebt"`
	NetAssets   decimal.Decimal     `json:"netAssets"`
}

// TotalPositives sums the year's inflows.
func (s YearSnapshot) TotalPositives() decimal.Decimal {
	return sumItems(s.Breakdown.Positives)
}

// TotalNegatives sums the year's outflows.
func (s YearSnapshot) TotalNegatives() decimal.Decimal {
	return sumItems(s.Breakdown.Negatives)
}

// CategoryTotal sums positives minus negatives carrying the given category.
func (s YearSnapshot) CategoryTotal(c Category) decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Breakdown.Positives {
		if it.Category == c {
			total = total.Add(it.Amount)
		}
	}
	for _, it := range s.Breakdown.Negatives {
		if it.Category == c {
			total = total.Sub(it.Amount)
		}
	}
	return total
}

// Balance returns the end-of-year balance reported for an entity id.
func (s YearSnapshot) Balance(entityID string) (decimal.Decimal, bool) {
	for _, it := range s.Breakdown.AssetItems {
		if it.EntityID == entityID {
			return it.Amount, true
		}
	}
	for _, it := range s.Breakdown.DebtItems {
		if it.EntityID == entityID {
			return it.Amount, true
		}
	}
	return decimal.Zero, false
}

func sumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}

// ProjectionSummary provides the key metrics of a projection run along with its snapshots.
type ProjectionSummary struct {
	RunID                 string          `json:"runId"`
	Name                  string          `json:"name,omitempty"`
	FirstYear             int             `json:"firstYear"`
	LastYear              int             `json:"lastYear"`
	RetirementYear        int             `json:"retirementYear"`
	PeakNetAssets         decimal.Decimal `json:"peakNetAssets"`
	PeakNetAssetsYear     int             `json:"peakNetAssetsYear"`
	FinalNetAssets        decimal.Decimal `json:"finalNetAssets"`
	TargetAssets          decimal.Decimal `json:"targetAssets"`
	TargetReachedYear     *int            `json:"targetReachedYear,omitempty"`
	FirstNegativeCashYear *int            `json:"firstNegativeCashYear,omitempty"`
	Snapshots             []YearSnapshot  `json:"snapshots"`
}

// SnapshotFor returns the snapshot of a given calendar year.
func (ps *ProjectionSummary) SnapshotFor(year int) (YearSnapshot, bool) {
	idx := year - ps.FirstYear
	if idx < 0 || idx >= len(ps.Snapshots) {
		return YearSnapshot{}, false
	}
	return ps.Snapshots[idx], true
}

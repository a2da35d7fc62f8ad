package calculation

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// projectionState is the carried state of the fold. step never mutates the
// state it receives; it clones the account maps and returns a new state.
type projectionState struct {
	cash     decimal.Decimal
	savings  map[string]SavingAccount
	pensions map[string]PensionAccount
	holdings map[string]Holding
}

func (s projectionState) clone() projectionState {
	return projectionState{
		cash:     s.cash,
		savings:  maps.Clone(s.savings),
		pensions: maps.Clone(s.pensions),
		holdings: maps.Clone(s.holdings),
	}
}

// projectionPlan is everything the fold reads but never changes.
type projectionPlan struct {
	profile     domain.Profile
	firstYear   int
	lastYear    int
	streams     []Stream
	savingIDs   []string
	pensionIDs  []string
	holdingIDs  []string
	allocations map[int][]domain.AllocationRule
	withdrawals map[int][]domain.WithdrawalRule
}

// ProjectionYears resolves the inclusive year range a profile is projected over.
func ProjectionYears(p domain.Profile) (first, last int) {
	first = p.CurrentYear
	if first == 0 {
		first = currentYear()
	}
	return first, dateutil.DeathYear(p.BirthYear, p.LifeExpectancy)
}

// GenerateProjection folds the household from its first projected year through
// the death year, emitting one snapshot per year. On failure it returns the
// snapshots completed before the failing year together with a *ProjectionError.
func (ce *ProjectionEngine) GenerateProjection(ctx context.Context, h *domain.Household) ([]domain.YearSnapshot, error) {
	plan, state, err := ce.preparePlan(h)
	if err != nil {
		return nil, err
	}
	ce.Logger.Debugf("projecting %d-%d with %d entities", plan.firstYear, plan.lastYear, len(plan.streams))

	snapshots := make([]domain.YearSnapshot, 0, dateutil.Span(plan.firstYear, plan.lastYear))
	for year := plan.firstYear; year <= plan.lastYear; year++ {
		if err := ctx.Err(); err != nil {
			return snapshots, err
		}
		next, snap, err := ce.step(plan, state, year)
		if err != nil {
			ce.Logger.Warnf("projection stopped in %d at entity %q: %v", year, failingEntity(err), err)
			return snapshots, newProjectionError(year, err)
		}
		state = next
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func newProjectionError(year int, err error) *ProjectionError {
	pe := &ProjectionError{Year: year, Err: err}
	var ee *entityError
	if errors.As(err, &ee) {
		pe.EntityID, pe.Err = ee.entityID, ee.err
	}
	return pe
}

func (ce *ProjectionEngine) preparePlan(h *domain.Household) (projectionPlan, projectionState, error) {
	profile := h.Profile
	first, last := ProjectionYears(profile)
	profile.CurrentYear = first
	if last < first {
		return projectionPlan{}, projectionState{}, newProjectionError(0,
			fmt.Errorf("%w: death year %d precedes first projected year %d", ErrMalformedEntity, last, first))
	}

	streams, err := Normalize(profile, h.Entities())
	if err != nil {
		return projectionPlan{}, projectionState{}, newProjectionError(0, err)
	}

	plan := projectionPlan{
		profile:     profile,
		firstYear:   first,
		lastYear:    last,
		streams:     streams,
		allocations: h.AllocationRules,
		withdrawals: h.WithdrawalRules,
	}
	state := projectionState{
		cash:     profile.CurrentCash,
		savings:  make(map[string]SavingAccount, len(h.Savings)),
		pensions: make(map[string]PensionAccount, len(h.Pensions)),
		holdings: make(map[string]Holding, len(h.Assets)+len(h.RealEstates)),
	}
	for _, s := range h.Savings {
		acct, err := NewSavingAccount(s)
		if err != nil {
			return plan, state, newProjectionError(0, atEntity(s.ID, err))
		}
		state.savings[s.ID] = acct
		plan.savingIDs = append(plan.savingIDs, s.ID)
	}
	for _, p := range h.Pensions {
		if p.Type == domain.PensionNational {
			continue
		}
		acct, err := NewPensionAccount(p)
		if err != nil {
			return plan, state, newProjectionError(0, atEntity(p.ID, err))
		}
		state.pensions[p.ID] = acct
		plan.pensionIDs = append(plan.pensionIDs, p.ID)
	}
	for _, r := range h.RealEstates {
		state.holdings[r.ID] = NewRealEstateHolding(r)
		plan.holdingIDs = append(plan.holdingIDs, r.ID)
	}
	for _, a := range h.Assets {
		state.holdings[a.ID] = NewAssetHolding(a)
		plan.holdingIDs = append(plan.holdingIDs, a.ID)
	}
	return plan, state, nil
}

// step computes one year: scheduled flows, balance-driven flows, surplus
// allocation or shortfall withdrawal, and the closing balances.
func (ce *ProjectionEngine) step(plan projectionPlan, prev projectionState, year int) (projectionState, domain.YearSnapshot, error) {
	st := prev.clone()
	var positives, negatives []domain.LineItem

	for _, s := range plan.streams {
		if !s.ActiveInYear(year) {
			continue
		}
		p, n := s.Items(year)
		positives = append(positives, p...)
		negatives = append(negatives, n...)
	}

	for _, id := range plan.savingIDs {
		acct, row := st.savings[id].Step(year)
		st.savings[id] = acct
		title := acct.saving.Title
		positives = appendIfPositive(positives, id, itemTitle(title, "interest"), domain.CategorySaving, row.Yield)
		positives = appendIfPositive(positives, id, itemTitle(title, "maturity"), domain.CategorySaving, row.Proceeds)
		negatives = appendIfPositive(negatives, id, itemTitle(title, "capital gains tax"), domain.CategoryTax, row.Tax)
	}

	for _, id := range plan.pensionIDs {
		acct, row := st.pensions[id].Step(year)
		st.pensions[id] = acct
		positives = appendIfPositive(positives, id, acct.pension.Title, domain.CategoryPension, row.Payout)
	}

	var held []domain.BalanceItem
	for _, id := range plan.holdingIDs {
		h, row := st.holdings[id].Step(year)
		st.holdings[id] = h
		positives = appendIfPositive(positives, id, itemTitle(h.title, "income"), h.category, row.Yield)
		positives = appendIfPositive(positives, id, itemTitle(h.title, "sale"), h.category, row.Proceeds)
		negatives = appendIfPositive(negatives, id, itemTitle(h.title, "capital gains tax"), domain.CategoryTax, row.Tax)
		if row.Held {
			held = append(held, domain.BalanceItem{EntityID: id, Title: h.title, SourceType: h.source, Amount: row.Value})
		}
	}

	flows := Aggregate(positives, negatives)
	var applied []domain.AppliedAllocation
	switch {
	case flows.NetCashFlow.IsPositive():
		if len(plan.withdrawals[year]) > 0 {
			ce.Logger.Debugf("%d: surplus of %s, withdrawal rules skipped", year, flows.NetCashFlow.StringFixed(2))
		}
		shares, err := AllocateSurplus(flows.NetCashFlow, plan.allocations[year])
		if err != nil {
			return prev, domain.YearSnapshot{}, err
		}
		if st, err = applyAllocations(year, st, shares); err != nil {
			return prev, domain.YearSnapshot{}, err
		}
		applied = shares
	case flows.NetCashFlow.IsNegative():
		if rules := plan.withdrawals[year]; len(rules) > 0 {
			var drawn []domain.LineItem
			var err error
			if st, drawn, err = applyWithdrawals(st, rules); err != nil {
				return prev, domain.YearSnapshot{}, err
			}
			flows = Aggregate(append(flows.Positives, drawn...), flows.Negatives)
		}
		st.cash = st.cash.Add(flows.NetCashFlow)
	}

	snap := domain.YearSnapshot{
		Year:        year,
		Age:         dateutil.Age(plan.profile.BirthYear, year),
		NetCashFlow: flows.NetCashFlow,
		Cash:        st.cash,
		Allocations: applied,
		Breakdown: domain.Breakdown{
			Positives:  flows.Positives,
			Negatives:  flows.Negatives,
			AssetItems: assetItems(plan, st, held),
			DebtItems:  debtItems(plan, year),
		},
	}
	for _, it := range snap.Breakdown.AssetItems {
		snap.TotalAssets = snap.TotalAssets.Add(it.Amount)
	}
	for _, it := range snap.Breakdown.DebtItems {
		snap.TotalDebt = snap.TotalDebt.Add(it.Amount)
	}
	snap.NetAssets = snap.TotalAssets.Sub(snap.TotalDebt)
	ce.Logger.Debugf("%d: net cash flow %s, net assets %s", year, snap.NetCashFlow.StringFixed(2), snap.NetAssets.StringFixed(2))
	return st, snap, nil
}

func appendIfPositive(items []domain.LineItem, id, title string, c domain.Category, amount decimal.Decimal) []domain.LineItem {
	if !amount.IsPositive() {
		return items
	}
	return append(items, domain.LineItem{EntityID: id, Title: title, Category: c, Amount: amount})
}

func assetItems(plan projectionPlan, st projectionState, held []domain.BalanceItem) []domain.BalanceItem {
	items := []domain.BalanceItem{{EntityID: string(domain.SourceCash), Title: "Cash", SourceType: domain.SourceCash, Amount: st.cash}}
	for _, id := range plan.savingIDs {
		acct := st.savings[id]
		if acct.Closed || acct.Balance.IsZero() {
			continue
		}
		items = append(items, domain.BalanceItem{EntityID: id, Title: acct.saving.Title, SourceType: domain.SourceSaving, Amount: acct.Balance})
	}
	for _, id := range plan.pensionIDs {
		acct := st.pensions[id]
		if acct.Balance.IsZero() {
			continue
		}
		items = append(items, domain.BalanceItem{EntityID: id, Title: acct.pension.Title, SourceType: domain.SourcePension, Amount: acct.Balance})
	}
	return append(items, held...)
}

func debtItems(plan projectionPlan, year int) []domain.BalanceItem {
	var items []domain.BalanceItem
	for _, s := range plan.streams {
		bal, ok := s.DebtBalance(year)
		if !ok {
			continue
		}
		items = append(items, domain.BalanceItem{
			EntityID:   s.entity.EntityID(),
			Title:      s.entity.EntityTitle(),
			SourceType: domain.SourceDebt,
			Amount:     bal,
		})
	}
	return items
}

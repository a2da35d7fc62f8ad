package calculation

import (
	"fmt"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

var fullAllocation = decimal.NewFromInt(100)

// YearFlows is the merged cash movement of one year.
type YearFlows struct {
	Positives   []domain.LineItem
	Negatives   []domain.LineItem
	NetCashFlow decimal.Decimal
}

// Aggregate merges line items and computes the net cash flow
// (sum of positives minus sum of negatives).
func Aggregate(positives, negatives []domain.LineItem) YearFlows {
	f := YearFlows{
		Positives: append([]domain.LineItem(nil), positives...),
		Negatives: append([]domain.LineItem(nil), negatives...),
	}
	net := decimal.Zero
	for _, it := range f.Positives {
		net = net.Add(it.Amount)
	}
	for _, it := range f.Negatives {
		net = net.Sub(it.Amount)
	}
	f.NetCashFlow = net
	return f
}

// ValidateAllocationRules checks that a year's ratios are positive and sum to exactly 100.
func ValidateAllocationRules(rules []domain.AllocationRule) error {
	total := decimal.Zero
	for i, r := range rules {
		if !r.Ratio.IsPositive() {
			return fmt.Errorf("%w: rule %d has non-positive ratio %s", ErrAllocationMismatch, i, r.Ratio.String())
		}
		switch r.TargetType {
		case domain.TargetCash:
		case domain.TargetSaving, domain.TargetPension:
			if r.TargetID == "" {
				return fmt.Errorf("%w: rule %d targets a %s without an id", ErrUnknownTarget, i, r.TargetType)
			}
		default:
			return fmt.Errorf("%w: rule %d has target type %q", ErrUnknownTarget, i, r.TargetType)
		}
		total = total.Add(r.Ratio)
	}
	if !total.Equal(fullAllocation) {
		return fmt.Errorf("%w: got %s", ErrAllocationMismatch, total.String())
	}
	return nil
}

// AllocateSurplus splits a positive surplus by the rules' ratios. Without
// rules the whole surplus goes to cash. The last share absorbs any decimal
// remainder so the shares always add up to the surplus.
func AllocateSurplus(surplus decimal.Decimal, rules []domain.AllocationRule) ([]domain.AppliedAllocation, error) {
	if len(rules) == 0 {
		return []domain.AppliedAllocation{{TargetType: domain.TargetCash, Ratio: fullAllocation, Amount: surplus}}, nil
	}
	if err := ValidateAllocationRules(rules); err != nil {
		return nil, err
	}
	out := make([]domain.AppliedAllocation, len(rules))
	remaining := surplus
	for i, r := range rules {
		share := remaining
		if i < len(rules)-1 {
			share = surplus.Mul(r.Ratio).Div(fullAllocation)
			remaining = remaining.Sub(share)
		}
		out[i] = domain.AppliedAllocation{TargetType: r.TargetType, TargetID: r.TargetID, Ratio: r.Ratio, Amount: share}
	}
	return out, nil
}

// applyAllocations routes surplus shares into cash, savings and pensions.
// Targets must exist and be open in year.
func applyAllocations(year int, st projectionState, shares []domain.AppliedAllocation) (projectionState, error) {
	for _, sh := range shares {
		switch sh.TargetType {
		case domain.TargetCash:
			st.cash = st.cash.Add(sh.Amount)
		case domain.TargetSaving:
			acct, ok := st.savings[sh.TargetID]
			if !ok || !acct.AcceptsDeposits(year) {
				return st, atEntity(sh.TargetID, fmt.Errorf("%w: saving is not open for deposits in %d", ErrUnknownTarget, year))
			}
			st.savings[sh.TargetID] = acct.Deposit(sh.Amount)
		case domain.TargetPension:
			acct, ok := st.pensions[sh.TargetID]
			if !ok || !acct.AcceptsDeposits(year) {
				return st, atEntity(sh.TargetID, fmt.Errorf("%w: pension is not accumulating in %d", ErrUnknownTarget, year))
			}
			st.pensions[sh.TargetID] = acct.Deposit(sh.Amount)
		}
	}
	return st, nil
}

// applyWithdrawals draws each rule's amount from its saving, returning the
// withdrawals as positive line items. A withdrawal larger than the saving's
// projected balance is rejected.
func applyWithdrawals(st projectionState, rules []domain.WithdrawalRule) (projectionState, []domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(rules))
	for _, r := range rules {
		if r.SourceType != domain.SourceSaving {
			return st, nil, atEntity(r.SourceID, fmt.Errorf("%w: withdrawals draw from savings only, got %q", ErrUnknownTarget, r.SourceType))
		}
		acct, ok := st.savings[r.SourceID]
		if !ok {
			return st, nil, atEntity(r.SourceID, fmt.Errorf("%w: no saving with this id", ErrUnknownTarget))
		}
		next, err := acct.Withdraw(r.Amount)
		if err != nil {
			return st, nil, atEntity(r.SourceID, err)
		}
		st.savings[r.SourceID] = next
		items = append(items, domain.LineItem{
			EntityID: r.SourceID,
			Title:    itemTitle(acct.saving.Title, "withdrawal"),
			Category: domain.CategorySaving,
			Amount:   r.Amount,
		})
	}
	return st, items, nil
}

package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	flows := Aggregate(
		[]domain.LineItem{{Amount: dec("1000")}, {Amount: dec("250")}},
		[]domain.LineItem{{Amount: dec("400")}},
	)
	assert.True(t, flows.NetCashFlow.Equal(dec("850")))
	assert.Len(t, flows.Positives, 2)
	assert.Len(t, flows.Negatives, 1)

	empty := Aggregate(nil, nil)
	assert.True(t, empty.NetCashFlow.IsZero())
}

func TestAllocateSurplus_DefaultsToCash(t *testing.T) {
	shares, err := AllocateSurplus(dec("1234.56"), nil)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, domain.TargetCash, shares[0].TargetType)
	assert.True(t, shares[0].Ratio.Equal(dec("100")))
	assert.True(t, shares[0].Amount.Equal(dec("1234.56")))
}

func TestAllocateSurplus_SplitsExactly(t *testing.T) {
	rules := []domain.AllocationRule{
		{TargetType: domain.TargetCash, Ratio: dec("33.33")},
		{TargetType: domain.TargetSaving, TargetID: "s1", Ratio: dec("33.33")},
		{TargetType: domain.TargetPension, TargetID: "p1", Ratio: dec("33.34")},
	}
	shares, err := AllocateSurplus(dec("1000.01"), rules)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	ratios, amounts := decimal.Zero, decimal.Zero
	for _, sh := range shares {
		ratios = ratios.Add(sh.Ratio)
		amounts = amounts.Add(sh.Amount)
	}
	assert.True(t, ratios.Equal(dec("100")))
	assert.True(t, amounts.Equal(dec("1000.01")), "shares must add up to the surplus, got %s", amounts)
	assert.Equal(t, "s1", shares[1].TargetID)
}

func TestAllocateSurplus_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		rules []domain.AllocationRule
		want  error
	}{
		{
			name: "under 100",
			rules: []domain.AllocationRule{
				{TargetType: domain.TargetCash, Ratio: dec("60")},
				{TargetType: domain.TargetSaving, TargetID: "s", Ratio: dec("30")},
			},
			want: ErrAllocationMismatch,
		},
		{
			name: "over 100",
			rules: []domain.AllocationRule{
				{TargetType: domain.TargetCash, Ratio: dec("60")},
				{TargetType: domain.TargetSaving, TargetID: "s", Ratio: dec("40.01")},
			},
			want: ErrAllocationMismatch,
		},
		{
			name:  "non-positive ratio",
			rules: []domain.AllocationRule{{TargetType: domain.TargetCash, Ratio: dec("100")}, {TargetType: domain.TargetCash, Ratio: dec("0")}},
			want:  ErrAllocationMismatch,
		},
		{
			name:  "saving without id",
			rules: []domain.AllocationRule{{TargetType: domain.TargetSaving, Ratio: dec("100")}},
			want:  ErrUnknownTarget,
		},
		{
			name:  "unknown target type",
			rules: []domain.AllocationRule{{TargetType: "crypto", TargetID: "x", Ratio: dec("100")}},
			want:  ErrUnknownTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AllocateSurplus(dec("1000"), tt.rules)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplyWithdrawals(t *testing.T) {
	acct, err := NewSavingAccount(domain.Saving{ID: "s", Title: "Deposit", Frequency: domain.FrequencyYearly,
		CurrentAmount: dec("5000"), StartYear: 2025, EndYear: 2040})
	require.NoError(t, err)
	st := projectionState{savings: map[string]SavingAccount{"s": acct}}

	next, items, err := applyWithdrawals(st.clone(), []domain.WithdrawalRule{{SourceType: domain.SourceSaving, SourceID: "s", Amount: dec("600")}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.CategorySaving, items[0].Category)
	assert.True(t, items[0].Amount.Equal(dec("600")))
	assert.True(t, next.savings["s"].Balance.Equal(dec("4400")))
	assert.True(t, st.savings["s"].Balance.Equal(dec("5000")), "source state must be untouched")

	_, _, err = applyWithdrawals(st.clone(), []domain.WithdrawalRule{{SourceType: domain.SourceSaving, SourceID: "s", Amount: dec("5000.01")}})
	assert.ErrorIs(t, err, ErrWithdrawalExceedsBalance)
	assert.Equal(t, "s", failingEntity(err))

	_, _, err = applyWithdrawals(st.clone(), []domain.WithdrawalRule{{SourceType: domain.SourceSaving, SourceID: "missing", Amount: dec("1")}})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

package calculation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profile2050 projects 2025 through 2050 (born 1961, life expectancy 90).
func profile2050() domain.Profile {
	return domain.Profile{BirthYear: 1961, RetirementAge: 65, CurrentYear: 2025}
}

func project(t *testing.T, h *domain.Household) []domain.YearSnapshot {
	t.Helper()
	snaps, err := NewProjectionEngine().GenerateProjection(context.Background(), h)
	require.NoError(t, err)
	return snaps
}

func pensionPayout(s domain.YearSnapshot, id string) decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Breakdown.Positives {
		if it.EntityID == id && it.Category == domain.CategoryPension {
			total = total.Add(it.Amount)
		}
	}
	return total
}

func TestProjection_SingleIncomeRoutesToCash(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("500"), Frequency: domain.FrequencyMonthly,
			StartYear: 2025, EndYear: 2050, GrowthRate: dec("3")}},
	}
	snaps := project(t, h)
	require.Len(t, snaps, 26)
	assert.Equal(t, 2025, snaps[0].Year)
	assert.Equal(t, 2050, snaps[25].Year)

	cash := decimal.Zero
	for _, s := range snaps {
		want := dec("6000").Mul(money.Compound(dec("0.03"), s.Year-2025))
		assert.True(t, s.NetCashFlow.Equal(want), "%d: net %s want %s", s.Year, s.NetCashFlow, want)

		require.Len(t, s.Allocations, 1)
		assert.Equal(t, domain.TargetCash, s.Allocations[0].TargetType)
		assert.True(t, s.Allocations[0].Amount.Equal(want))

		cash = cash.Add(want)
		assert.True(t, s.Cash.Equal(cash))
		assert.True(t, s.TotalAssets.Equal(cash))
		assert.True(t, s.NetAssets.Equal(cash))
		assert.Equal(t, s.Year-1961, s.Age)
	}
}

func TestProjection_EqualDebt(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Debts: []domain.Debt{{ID: "loan", Title: "Loan", DebtAmount: dec("10000"), InterestRate: dec("5"),
			DebtType: domain.DebtEqual, StartYear: 2025, EndYear: 2034}},
	}
	snaps := project(t, h)

	prev := dec("10000")
	for _, s := range snaps[:10] {
		var payment decimal.Decimal
		for _, it := range s.Breakdown.Negatives {
			if it.EntityID == "loan" {
				payment = it.Amount
			}
		}
		assert.Equal(t, "1295.05", payment.Round(2).StringFixed(2), "payment in %d", s.Year)

		require.Len(t, s.Breakdown.DebtItems, 1)
		bal := s.Breakdown.DebtItems[0].Amount
		assert.True(t, bal.LessThan(prev), "balance strictly decreasing in %d", s.Year)
		prev = bal
		assert.True(t, s.TotalDebt.Equal(bal))
	}
	assert.True(t, snaps[9].TotalDebt.IsZero(), "paid off in year 10")
	assert.Empty(t, snaps[10].Breakdown.DebtItems)

	// the loan proceeds arrive as cash in the first year
	assert.Equal(t, "8704.95", snaps[0].Cash.Round(2).StringFixed(2))
}

func TestProjection_SeveranceLumpSum(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Pensions: []domain.Pension{{ID: "sev", Title: "Severance", Type: domain.PensionSeverance,
			AverageSalary: dec("400"), YearsOfService: dec("20"), NoAdditionalContribution: true,
			PaymentStartYear: 2030, PaymentYears: 1}},
	}
	snaps := project(t, h)
	for _, s := range snaps {
		payout := pensionPayout(s, "sev")
		if s.Year == 2030 {
			assert.True(t, payout.Equal(dec("8000")), "payout %s", payout)
			continue
		}
		assert.True(t, payout.IsZero(), "%d: unexpected payout %s", s.Year, payout)
	}
	// the lump sum moves from the pension balance into cash
	before, _ := snaps[4].Balance("sev")
	assert.True(t, before.Equal(dec("8000")))
	_, held := snaps[5].Balance("sev")
	assert.False(t, held)
	assert.True(t, snaps[5].Cash.Equal(dec("8000")))
}

func TestProjection_SkipsStreamsOutsideTheirWindow(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		RealEstates: []domain.RealEstate{{ID: "flat", Title: "Flat", CurrentValue: dec("100000"),
			StartYear: 2025, EndYear: 2026,
			RentalIncomeStartYear: 2025, RentalIncomeEndYear: 2030, MonthlyRentalIncome: dec("100")}},
	}
	snaps := project(t, h)

	rent := func(s domain.YearSnapshot) decimal.Decimal {
		total := decimal.Zero
		for _, it := range s.Breakdown.Positives {
			if it.Title == "Flat (rent)" {
				total = total.Add(it.Amount)
			}
		}
		return total
	}
	assert.True(t, rent(snaps[0]).Equal(dec("1200")))
	assert.True(t, rent(snaps[1]).Equal(dec("1200")))
	for _, s := range snaps[2:6] {
		assert.True(t, rent(s).IsZero(), "%d: rent after the sale year", s.Year)
	}
}

func TestProjection_AllocationRule(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
			StartYear: 2025, EndYear: 2030}},
		Savings: []domain.Saving{{ID: "fund", Title: "Fund", Frequency: domain.FrequencyYearly,
			StartYear: 2025, EndYear: 2040}},
		AllocationRules: map[int][]domain.AllocationRule{
			2025: {
				{TargetType: domain.TargetCash, Ratio: dec("40")},
				{TargetType: domain.TargetSaving, TargetID: "fund", Ratio: dec("60")},
			},
		},
	}
	snaps := project(t, h)
	first := snaps[0]
	assert.True(t, first.Cash.Equal(dec("400")))
	bal, ok := first.Balance("fund")
	require.True(t, ok)
	assert.True(t, bal.Equal(dec("600")))

	ratios := decimal.Zero
	for _, a := range first.Allocations {
		ratios = ratios.Add(a.Ratio)
	}
	assert.True(t, ratios.Equal(dec("100")))

	// no rule in 2026: everything to cash
	assert.True(t, snaps[1].Cash.Equal(dec("1400")))
}

func TestProjection_WithdrawalCoversShortfall(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Expenses: []domain.Expense{{ID: "living", Title: "Living", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
			StartYear: 2025, EndYear: 2025}},
		Savings: []domain.Saving{{ID: "fund", Title: "Fund", Frequency: domain.FrequencyYearly,
			CurrentAmount: dec("5000"), StartYear: 2025, EndYear: 2040}},
		WithdrawalRules: map[int][]domain.WithdrawalRule{
			2025: {{SourceType: domain.SourceSaving, SourceID: "fund", Amount: dec("600")}},
		},
	}
	snaps := project(t, h)
	first := snaps[0]
	assert.True(t, first.NetCashFlow.Equal(dec("-400")))
	assert.True(t, first.Cash.Equal(dec("-400")), "residual shortfall is carried as negative cash")
	bal, _ := first.Balance("fund")
	assert.True(t, bal.Equal(dec("4400")))
	assert.True(t, first.CategoryTotal(domain.CategorySaving).Equal(dec("600")))
}

func TestProjection_ShortfallWithoutRuleGoesNegative(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Expenses: []domain.Expense{{ID: "living", Title: "Living", Amount: dec("100"), Frequency: domain.FrequencyMonthly,
			StartYear: 2025, EndYear: 2026}},
	}
	snaps := project(t, h)
	assert.True(t, snaps[0].Cash.Equal(dec("-1200")))
	assert.True(t, snaps[1].Cash.Equal(dec("-2400")))
	assert.True(t, snaps[1].NetAssets.Equal(dec("-2400")))
}

func TestProjection_AbortsWithYearAndEntity(t *testing.T) {
	tests := []struct {
		name   string
		h      *domain.Household
		year   int
		entity string
		want   error
	}{
		{
			name: "withdrawal exceeds balance",
			h: &domain.Household{
				Profile: profile2050(),
				Expenses: []domain.Expense{{ID: "living", Title: "Living", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
					StartYear: 2025, EndYear: 2050}},
				Savings: []domain.Saving{{ID: "fund", Title: "Fund", Frequency: domain.FrequencyYearly,
					CurrentAmount: dec("500"), StartYear: 2025, EndYear: 2040}},
				WithdrawalRules: map[int][]domain.WithdrawalRule{
					2027: {{SourceType: domain.SourceSaving, SourceID: "fund", Amount: dec("5000")}},
				},
			},
			year: 2027, entity: "fund", want: ErrWithdrawalExceedsBalance,
		},
		{
			name: "allocation ratios off",
			h: &domain.Household{
				Profile: profile2050(),
				Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
					StartYear: 2025, EndYear: 2050}},
				AllocationRules: map[int][]domain.AllocationRule{
					2026: {{TargetType: domain.TargetCash, Ratio: dec("60")}, {TargetType: domain.TargetCash, Ratio: dec("30")}},
				},
			},
			year: 2026, want: ErrAllocationMismatch,
		},
		{
			name: "allocation into a matured saving",
			h: &domain.Household{
				Profile: profile2050(),
				Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
					StartYear: 2025, EndYear: 2050}},
				Savings: []domain.Saving{{ID: "short", Title: "Short", Frequency: domain.FrequencyYearly,
					StartYear: 2025, EndYear: 2026}},
				AllocationRules: map[int][]domain.AllocationRule{
					2028: {{TargetType: domain.TargetSaving, TargetID: "short", Ratio: dec("100")}},
				},
			},
			year: 2028, entity: "short", want: ErrUnknownTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps, err := NewProjectionEngine().GenerateProjection(context.Background(), tt.h)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var pe *ProjectionError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.year, pe.Year)
			assert.Equal(t, tt.entity, pe.EntityID)

			// snapshots computed before the failing year are intact
			require.Len(t, snaps, tt.year-2025)
			for i, s := range snaps {
				assert.Equal(t, 2025+i, s.Year)
			}
		})
	}
}

func TestProjection_RejectsMalformedHouseholdUpFront(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Pensions: []domain.Pension{{ID: "p", Title: "Plan", Type: domain.PensionPersonal,
			CurrentAmount: dec("1000"), PaymentStartYear: 2030, PaymentYears: 0}},
	}
	snaps, err := NewProjectionEngine().GenerateProjection(context.Background(), h)
	assert.Empty(t, snaps)
	assert.ErrorIs(t, err, ErrDegenerateSchedule)
	var pe *ProjectionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.Year)
	assert.Equal(t, "p", pe.EntityID)
}

func TestProjection_PensionAllocationRaisesPayout(t *testing.T) {
	base := func() *domain.Household {
		return &domain.Household{
			Profile: profile2050(),
			Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
				StartYear: 2025, EndYear: 2025}},
			Pensions: []domain.Pension{{ID: "irp", Title: "IRP", Type: domain.PensionPersonal,
				CurrentAmount: dec("10000"), ReturnRate: dec("0"), PaymentStartYear: 2030, PaymentYears: 10}},
		}
	}
	plain := project(t, base())

	h := base()
	h.AllocationRules = map[int][]domain.AllocationRule{2025: {{TargetType: domain.TargetPension, TargetID: "irp", Ratio: dec("100")}}}
	boosted := project(t, h)

	assert.True(t, pensionPayout(plain[5], "irp").Equal(dec("1000")))
	assert.True(t, pensionPayout(boosted[5], "irp").Equal(dec("1100")))
}

func TestProjection_SavingMaturityAndTax(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Savings: []domain.Saving{{ID: "s", Title: "Fund", Amount: dec("100"), Frequency: domain.FrequencyYearly,
			CurrentAmount: dec("1000"), InterestRate: dec("10"), CapitalGainsTaxRate: dec("15"),
			StartYear: 2025, EndYear: 2026}},
	}
	snaps := project(t, h)
	// 2025: contribution of 100 is paid from cash into the saving
	assert.True(t, snaps[0].Cash.Equal(dec("-100")))
	assert.True(t, snaps[0].TotalAssets.Equal(dec("1100")))
	// 2026: -100 contribution, +1420 maturity, -33 tax
	assert.True(t, snaps[1].NetCashFlow.Equal(dec("1287")))
	assert.True(t, snaps[1].CategoryTotal(domain.CategoryTax).Equal(dec("-33")))
	_, held := snaps[1].Balance("s")
	assert.False(t, held)
}

func TestProjection_UsesClockWhenCurrentYearUnset(t *testing.T) {
	SetNowFunc(func() time.Time { return time.Date(2040, 6, 1, 0, 0, 0, 0, time.UTC) })
	defer SetNowFunc(time.Now)

	p := profile2050()
	p.CurrentYear = 0
	snaps := project(t, &domain.Household{Profile: p})
	require.Len(t, snaps, 11)
	assert.Equal(t, 2040, snaps[0].Year)
}

func TestProjection_IsReentrant(t *testing.T) {
	h := &domain.Household{
		Profile: profile2050(),
		Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("3000"), Frequency: domain.FrequencyMonthly,
			StartYear: 2025, EndYear: 2035, GrowthRate: dec("2")}},
		Savings: []domain.Saving{{ID: "fund", Title: "Fund", Amount: dec("200"), Frequency: domain.FrequencyMonthly,
			CurrentAmount: dec("10000"), InterestRate: dec("4"), StartYear: 2025, EndYear: 2045}},
	}
	first := project(t, h)
	second := project(t, h)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].NetAssets.String(), second[i].NetAssets.String())
	}

	// snapshots own their slices
	first[0].Breakdown.Positives[0].Amount = dec("0")
	third := project(t, h)
	assert.Equal(t, second[0].Breakdown.Positives[0].Amount.String(), third[0].Breakdown.Positives[0].Amount.String())
}

func TestProjection_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewProjectionEngine().GenerateProjection(ctx, &domain.Household{Profile: profile2050()})
	assert.ErrorIs(t, err, context.Canceled)
}

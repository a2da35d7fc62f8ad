package calculation

import (
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retirementPension() domain.Pension {
	return domain.Pension{
		ID: "p1", Title: "Company plan", Type: domain.PensionRetirement,
		ContributionAmount: dec("100"), ContributionFrequency: domain.FrequencyMonthly,
		ContributionStartYear: 2025, ContributionEndYear: 2029,
		ReturnRate:       dec("5"),
		PaymentStartYear: 2030, PaymentYears: 10,
	}
}

func TestPensionSchedule_AccumulationAndPayout(t *testing.T) {
	rows, err := PensionSchedule(retirementPension())
	require.NoError(t, err)
	require.Len(t, rows, 15)

	// accumulation: balance = balance*(1+r) + 1200
	expected := decimal.Zero
	for _, row := range rows[:5] {
		expected = expected.Mul(dec("1.05")).Add(dec("1200"))
		assert.Equal(t, PhaseAccumulation, row.Phase)
		assert.True(t, row.Contribution.Equal(dec("1200")))
		assert.True(t, row.Balance.Equal(expected), "year %d: %s vs %s", row.Year, row.Balance, expected)
	}

	payout := rows[5].Payout
	for _, row := range rows[5:] {
		assert.Equal(t, PhasePayout, row.Phase)
		assert.False(t, row.Balance.IsNegative(), "year %d", row.Year)
		assert.True(t, row.Payout.Sub(payout).Abs().LessThan(dec("0.01")), "level payout in %d", row.Year)
	}
	assert.True(t, rows[14].Balance.IsZero())
}

func TestPensionSchedule_AnnuityDueExhaustsBalance(t *testing.T) {
	p := retirementPension()
	p.AnnuityDue = true
	rows, err := PensionSchedule(p)
	require.NoError(t, err)
	ordinary, _ := PensionSchedule(retirementPension())

	assert.True(t, rows[5].Payout.LessThan(ordinary[5].Payout), "paying earlier means smaller payments")
	for _, row := range rows {
		assert.False(t, row.Balance.IsNegative())
	}
	assert.True(t, rows[len(rows)-1].Balance.IsZero())
}

func TestPensionSchedule_ZeroReturn(t *testing.T) {
	p := retirementPension()
	p.ReturnRate = decimal.Zero
	rows, err := PensionSchedule(p)
	require.NoError(t, err)
	assert.True(t, rows[4].Balance.Equal(dec("6000")))
	for _, row := range rows[5:] {
		assert.True(t, row.Payout.Equal(dec("600")), "year %d: %s", row.Year, row.Payout)
	}
}

func TestPensionSchedule_National(t *testing.T) {
	rows, err := PensionSchedule(domain.Pension{
		ID: "n", Title: "National", Type: domain.PensionNational,
		MonthlyAmount: dec("100"), InflationRate: dec("2"),
		StartYear: 2030, EndYear: 2032,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Payout.Equal(dec("1200")))
	assert.True(t, rows[1].Payout.Equal(dec("1224")))
	assert.True(t, rows[2].Payout.Equal(dec("1248.48")))
	for _, row := range rows {
		assert.True(t, row.Balance.IsZero())
	}
}

func TestPensionSchedule_SeveranceLumpSum(t *testing.T) {
	rows, err := PensionSchedule(domain.Pension{
		ID: "sev", Title: "Severance", Type: domain.PensionSeverance,
		AverageSalary: dec("400"), YearsOfService: dec("20"),
		NoAdditionalContribution: true,
		ReturnRate:               dec("4"),
		PaymentStartYear:         2030, PaymentYears: 5,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2030, rows[0].Year)
	assert.True(t, rows[0].Payout.Equal(dec("8000")), "got %s", rows[0].Payout)
	assert.True(t, rows[0].Balance.IsZero())
}

func TestPensionSchedule_SeveranceWithContributions(t *testing.T) {
	rows, err := PensionSchedule(domain.Pension{
		ID: "sev", Title: "Severance", Type: domain.PensionSeverance,
		AverageSalary: dec("400"), YearsOfService: dec("20"),
		ContributionAmount: dec("100"), ContributionFrequency: domain.FrequencyYearly,
		ContributionStartYear: 2025, ContributionEndYear: 2026,
		PaymentStartYear: 2027, PaymentYears: 1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Balance.Equal(dec("8100")), "got %s", rows[0].Balance)
	assert.True(t, rows[1].Balance.Equal(dec("8200")), "got %s", rows[1].Balance)
	assert.Equal(t, PhasePayout, rows[2].Phase)
	assert.True(t, rows[2].Payout.Equal(dec("8200")), "got %s", rows[2].Payout)
	assert.True(t, rows[2].Balance.IsZero())
}

func TestPensionSchedule_SeveranceWithContributionsCompounds(t *testing.T) {
	rows, err := PensionSchedule(domain.Pension{
		ID: "sev", Title: "Severance", Type: domain.PensionSeverance,
		AverageSalary: dec("400"), YearsOfService: dec("20"),
		ContributionAmount: dec("100"), ContributionFrequency: domain.FrequencyYearly,
		ContributionStartYear: 2025, ContributionEndYear: 2025, ReturnRate: dec("10"),
		PaymentStartYear: 2026, PaymentYears: 1,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// 8000 × 1.1 + 100
	assert.True(t, rows[0].Balance.Equal(dec("8900")), "got %s", rows[0].Balance)
}

func TestPensionSchedule_NoContributionPhaseStartsFromCurrentAmount(t *testing.T) {
	rows, err := PensionSchedule(domain.Pension{
		ID: "pp", Title: "Personal", Type: domain.PensionPersonal,
		CurrentAmount: dec("10000"), ReturnRate: dec("5"),
		PaymentStartYear: 2030, PaymentYears: 10,
	})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, "1295.05", rows[0].Payout.Round(2).StringFixed(2))
	assert.True(t, rows[9].Balance.IsZero())
}

func TestNewPensionAccount_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Pension)
		want   error
	}{
		{"zero payment years", func(p *domain.Pension) { p.PaymentYears = 0 }, ErrDegenerateSchedule},
		{"negative payment years", func(p *domain.Pension) { p.PaymentYears = -2 }, ErrDegenerateSchedule},
		{"payout overlaps contributions", func(p *domain.Pension) { p.PaymentStartYear = 2029 }, ErrDegenerateSchedule},
		{"inverted contribution window", func(p *domain.Pension) { p.ContributionStartYear = 2031 }, ErrMalformedEntity},
		{"missing payment start", func(p *domain.Pension) { p.PaymentStartYear = 0 }, ErrMalformedEntity},
		{"unknown type", func(p *domain.Pension) { p.Type = "military" }, ErrMalformedEntity},
		{"unknown frequency", func(p *domain.Pension) { p.ContributionFrequency = "weekly" }, ErrMalformedEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := retirementPension()
			tt.mutate(&p)
			_, err := NewPensionAccount(p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPensionAccount_Phases(t *testing.T) {
	p := retirementPension()
	p.ContributionStartYear = 2026
	p.PaymentStartYear = 2032
	acct, err := NewPensionAccount(p)
	require.NoError(t, err)

	assert.Equal(t, PhasePending, acct.Phase(2025))
	assert.Equal(t, PhaseAccumulation, acct.Phase(2027))
	assert.Equal(t, PhaseDeferral, acct.Phase(2031))
	assert.Equal(t, PhasePayout, acct.Phase(2032))
	assert.Equal(t, PhaseClosed, acct.Phase(2042))

	assert.True(t, acct.AcceptsDeposits(2031))
	assert.False(t, acct.AcceptsDeposits(2033))

	deposited := acct.Deposit(dec("500"))
	assert.True(t, deposited.Balance.Equal(dec("500")))
	assert.True(t, acct.Balance.IsZero(), "Deposit must not modify the receiver")
}

package calculation

import (
	"context"
	"fmt"
	"testing"

	"github.com/rpgo/household-planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debugf(format string, args ...any) { r.add("DEBUG", format, args) }
func (r *recordingLogger) Infof(format string, args ...any)  { r.add("INFO", format, args) }
func (r *recordingLogger) Warnf(format string, args ...any)  { r.add("WARN", format, args) }
func (r *recordingLogger) Errorf(format string, args ...any) { r.add("ERROR", format, args) }

func (r *recordingLogger) add(level, format string, args []any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func snapshotsWithNetAssets(start int, values ...string) []domain.YearSnapshot {
	out := make([]domain.YearSnapshot, len(values))
	for i, v := range values {
		out[i] = domain.YearSnapshot{Year: start + i, NetAssets: dec(v), Cash: dec(v)}
	}
	return out
}

func TestSummarize(t *testing.T) {
	profile := domain.Profile{Name: "Kim", BirthYear: 1970, RetirementAge: 60, TargetAssets: dec("500")}
	snaps := snapshotsWithNetAssets(2025, "100", "-50", "600", "900", "700")

	s := Summarize(profile, snaps)
	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, "Kim", s.Name)
	assert.Equal(t, 2025, s.FirstYear)
	assert.Equal(t, 2029, s.LastYear)
	assert.Equal(t, 2030, s.RetirementYear)
	assert.True(t, s.PeakNetAssets.Equal(dec("900")))
	assert.Equal(t, 2028, s.PeakNetAssetsYear)
	assert.True(t, s.FinalNetAssets.Equal(dec("700")))
	require.NotNil(t, s.TargetReachedYear)
	assert.Equal(t, 2027, *s.TargetReachedYear)
	require.NotNil(t, s.FirstNegativeCashYear)
	assert.Equal(t, 2026, *s.FirstNegativeCashYear)

	snap, ok := s.SnapshotFor(2027)
	require.True(t, ok)
	assert.Equal(t, 2027, snap.Year)
	_, ok = s.SnapshotFor(2030)
	assert.False(t, ok)
}

func TestSummarize_NoTargetAndNoSnapshots(t *testing.T) {
	s := Summarize(domain.Profile{BirthYear: 1970}, snapshotsWithNetAssets(2025, "10", "20"))
	assert.Nil(t, s.TargetReachedYear)
	assert.Nil(t, s.FirstNegativeCashYear)

	empty := Summarize(domain.Profile{BirthYear: 1970}, nil)
	assert.Zero(t, empty.FirstYear)
	assert.Empty(t, empty.Snapshots)
}

func TestSummarize_RunIDsAreUnique(t *testing.T) {
	snaps := snapshotsWithNetAssets(2025, "1")
	a := Summarize(domain.Profile{BirthYear: 1970}, snaps)
	b := Summarize(domain.Profile{BirthYear: 1970}, snaps)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRunProjection(t *testing.T) {
	ce := NewProjectionEngine()
	rec := &recordingLogger{}
	ce.SetLogger(rec)

	h := &domain.Household{
		Profile: domain.Profile{Name: "Lee", BirthYear: 1990, RetirementAge: 60, CurrentYear: 2025,
			LifeExpectancy: 40, CurrentCash: dec("1000"), TargetAssets: dec("3000")},
		Incomes: []domain.Income{{ID: "job", Title: "Job", Amount: dec("1000"), Frequency: domain.FrequencyYearly,
			StartYear: 2025, EndYear: 2029}},
	}
	summary, err := ce.RunProjection(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, 2025, summary.FirstYear)
	assert.Equal(t, 2029, summary.LastYear)
	require.Len(t, summary.Snapshots, 5)
	assert.True(t, summary.FinalNetAssets.Equal(dec("6000")))
	require.NotNil(t, summary.TargetReachedYear)
	assert.Equal(t, 2026, *summary.TargetReachedYear)

	require.NotEmpty(t, rec.lines)
	assert.Contains(t, rec.lines[len(rec.lines)-1], "INFO projection "+summary.RunID)
}

func TestRunProjection_Errors(t *testing.T) {
	ce := NewProjectionEngine()
	_, err := ce.RunProjection(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMalformedEntity)

	h := &domain.Household{
		Profile: domain.Profile{BirthYear: 1990, CurrentYear: 2025, LifeExpectancy: 40},
		Incomes: []domain.Income{{ID: "dup", Title: "A", Frequency: domain.FrequencyYearly, StartYear: 2025, EndYear: 2026},
			{ID: "dup", Title: "B", Frequency: domain.FrequencyYearly, StartYear: 2025, EndYear: 2026}},
	}
	summary, err := ce.RunProjection(context.Background(), h)
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrMalformedEntity)
	assert.Contains(t, err.Error(), "dup")
}

func TestSetLogger_NilFallsBackToNop(t *testing.T) {
	ce := NewProjectionEngine()
	ce.SetLogger(nil)
	assert.IsType(t, NopLogger{}, ce.Logger)
}

func TestEngineSolveGross(t *testing.T) {
	ce := NewProjectionEngine()
	rec := &recordingLogger{}
	ce.SetLogger(rec)

	sol, err := ce.SolveGross(dec("3000000"))
	require.NoError(t, err)
	assert.True(t, sol.Converged)
	assert.Contains(t, rec.lines[0], "converged")

	ce.Solver.MaxIterations = 1
	_, err = ce.SolveGross(dec("3000000"))
	assert.ErrorIs(t, err, ErrToleranceExceeded)
	assert.Contains(t, rec.lines[1], "WARN")
}

func TestEngineStandaloneSchedules(t *testing.T) {
	ce := NewProjectionEngine()

	rows, summary, err := ce.AmortizeDebt(DebtTerms{Amount: dec("10000"), InterestRate: dec("5"),
		StartYear: 2025, EndYear: 2034, Type: domain.DebtEqual})
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, "1295.05", summary.FirstPayment.Round(2).StringFixed(2))
	assert.True(t, summary.TotalPaid.Sub(summary.TotalInterest).Round(6).Equal(dec("10000")))

	_, _, err = ce.AmortizeDebt(DebtTerms{Amount: dec("100"), StartYear: 2025, EndYear: 2026,
		Type: domain.DebtGrace, GracePeriod: 2})
	assert.ErrorIs(t, err, ErrDegenerateSchedule)

	pension, err := ce.PensionSchedule(retirementPension())
	require.NoError(t, err)
	assert.NotEmpty(t, pension)
	assert.True(t, pension[len(pension)-1].Balance.IsZero())

	_, err = ce.PensionSchedule(domain.Pension{Type: domain.PensionPersonal, PaymentStartYear: 2030})
	assert.ErrorIs(t, err, ErrDegenerateSchedule)
}

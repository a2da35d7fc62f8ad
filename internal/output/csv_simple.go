package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/household-planner/internal/domain"
)

// CSVSummarizer writes one row per projected year.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

func (c CSVSummarizer) Format(summary *domain.ProjectionSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Age", "Inflows", "Outflows", "NetCashFlow", "Cash", "TotalAssets", "TotalDebt", "NetAssets"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, s := range summary.Snapshots {
		row := []string{
			intToString(s.Year),
			intToString(s.Age),
			s.TotalPositives().StringFixed(2),
			s.TotalNegatives().StringFixed(2),
			s.NetCashFlow.StringFixed(2),
			s.Cash.StringFixed(2),
			s.TotalAssets.StringFixed(2),
			s.TotalDebt.StringFixed(2),
			s.NetAssets.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

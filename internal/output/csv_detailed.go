package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/household-planner/internal/domain"
)

// CSVDetailedExporter writes every line item and balance of every year, one per row.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string      { return "detailed-csv" }
func (c CSVDetailedExporter) Extension() string { return "csv" }

func (c CSVDetailedExporter) Format(summary *domain.ProjectionSummary) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Year", "Section", "EntityID", "Title", "Type", "Amount"}); err != nil {
		return nil, err
	}
	for _, s := range summary.Snapshots {
		year := intToString(s.Year)
		var rows [][]string
		for _, it := range s.Breakdown.Positives {
			rows = append(rows, []string{year, "inflow", it.EntityID, it.Title, string(it.Category), it.Amount.StringFixed(2)})
		}
		for _, it := range s.Breakdown.Negatives {
			rows = append(rows, []string{year, "outflow", it.EntityID, it.Title, string(it.Category), it.Amount.StringFixed(2)})
		}
		for _, it := range s.Breakdown.AssetItems {
			rows = append(rows, []string{year, "asset", it.EntityID, it.Title, string(it.SourceType), it.Amount.StringFixed(2)})
		}
		for _, it := range s.Breakdown.DebtItems {
			rows = append(rows, []string{year, "debt", it.EntityID, it.Title, string(it.SourceType), it.Amount.StringFixed(2)})
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

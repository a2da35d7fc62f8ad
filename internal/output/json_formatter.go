package output

import (
	"github.com/goccy/go-json"
	"github.com/rpgo/household-planner/internal/domain"
)

// JSONFormatter serializes the projection summary as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string      { return "json" }
func (j JSONFormatter) Extension() string { return "json" }

func (j JSONFormatter) Format(summary *domain.ProjectionSummary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

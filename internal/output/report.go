package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/household-planner/internal/domain"
)

// GenerateReport renders summary with the named formatter and writes it to w.
func GenerateReport(summary *domain.ProjectionSummary, format string, w io.Writer) error {
	f := GetFormatterByName(format)
	if f == nil {
		// enrich error with available formatters and aliases
		return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	if summary == nil {
		return fmt.Errorf("no projection to report")
	}
	data, err := f.Format(summary)
	if err != nil {
		return fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

package integration

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputGeneration_AllFormats(t *testing.T) {
	_, summary := runFixture(t)

	for _, name := range output.AvailableFormatterNames() {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, output.GenerateReport(summary, name, &buf))
			assert.NotEmpty(t, buf.String())
		})
	}
}

func TestOutputGeneration_CSVHasOneRowPerYear(t *testing.T) {
	_, summary := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, output.GenerateReport(summary, "csv", &buf))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(summary.Snapshots)+1)
	assert.Equal(t, "Year", records[0][0])
	for i, rec := range records[1:] {
		year, err := strconv.Atoi(rec[0])
		require.NoError(t, err)
		assert.Equal(t, summary.Snapshots[i].Year, year)
	}
}

func TestOutputGeneration_JSONRoundTrip(t *testing.T) {
	_, summary := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, output.GenerateReport(summary, "json", &buf))

	var decoded domain.ProjectionSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, summary.RunID, decoded.RunID)
	require.Len(t, decoded.Snapshots, len(summary.Snapshots))
	assert.True(t, decoded.FinalNetAssets.Equal(summary.FinalNetAssets))
	assert.True(t, decoded.Snapshots[10].Cash.Equal(summary.Snapshots[10].Cash))
}

func TestOutputGeneration_ConsoleNamesHousehold(t *testing.T) {
	_, summary := runFixture(t)

	var buf bytes.Buffer
	require.NoError(t, output.GenerateReport(summary, "table", &buf))
	assert.Contains(t, buf.String(), "Kim household")
	assert.Contains(t, buf.String(), "2059")
}

func TestOutputGeneration_WritesFile(t *testing.T) {
	_, summary := runFixture(t)

	path, err := output.WriteFormatted(output.GetFormatterByName("detailed-csv"), summary, t.TempDir())
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}

func TestOutputGeneration_UnknownFormat(t *testing.T) {
	_, summary := runFixture(t)

	err := output.GenerateReport(summary, "html", &bytes.Buffer{})
	assert.ErrorIs(t, err, output.ErrUnsupportedFormat)
}

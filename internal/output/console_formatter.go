package output

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(26)
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cellStyle     = lipgloss.NewStyle().Width(20).Align(lipgloss.Right)
	yearCellStyle = lipgloss.NewStyle().Width(6)
	ageCellStyle  = lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
)

// ConsoleFormatter renders a styled summary followed by a year-by-year table.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(summary *domain.ProjectionSummary) ([]byte, error) {
	var buf bytes.Buffer
	title := "HOUSEHOLD PROJECTION"
	if summary.Name != "" {
		title += ": " + summary.Name
	}
	fmt.Fprintln(&buf, titleStyle.Render(title))
	fmt.Fprintln(&buf, mutedStyle.Render("run "+summary.RunID))
	fmt.Fprintln(&buf)

	line := func(label, value string) {
		fmt.Fprintln(&buf, labelStyle.Render(label)+value)
	}
	line("Projection years", fmt.Sprintf("%d-%d", summary.FirstYear, summary.LastYear))
	line("Retirement year", intToString(summary.RetirementYear))
	line("Peak net assets", fmt.Sprintf("%s (%d)", styledAmount(summary.PeakNetAssets), summary.PeakNetAssetsYear))
	line("Final net assets", styledAmount(summary.FinalNetAssets))
	if summary.TargetAssets.IsPositive() {
		line("Target net assets", styledAmount(summary.TargetAssets))
		line("Target reached", optionalYear(summary.TargetReachedYear))
	}
	line("First negative cash", optionalYear(summary.FirstNegativeCashYear))

	h := AnalyzeProjection(summary)
	if h.RetirementCovered {
		line("Net assets at retirement", styledAmount(h.RetirementNetAssets))
	}
	line("Shortfall years", intToString(h.ShortfallYears))
	if len(summary.Snapshots) > 0 {
		line("Lowest cash", fmt.Sprintf("%s (%d)", styledAmount(h.DeepestCash), h.DeepestCashYear))
	}
	if h.TargetGap.IsPositive() {
		line("Short of target by", styledAmount(h.TargetGap))
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, yearCellStyle.Render(headerStyle.Render("Year"))+
		ageCellStyle.Render(headerStyle.Render("Age"))+
		cellStyle.Render(headerStyle.Render("Net cash flow"))+
		cellStyle.Render(headerStyle.Render("Cash"))+
		cellStyle.Render(headerStyle.Render("Assets"))+
		cellStyle.Render(headerStyle.Render("Debt"))+
		cellStyle.Render(headerStyle.Render("Net assets")))
	for _, s := range summary.Snapshots {
		fmt.Fprintln(&buf, yearCellStyle.Render(intToString(s.Year))+
			ageCellStyle.Render(intToString(s.Age))+
			cellStyle.Render(styledAmount(s.NetCashFlow))+
			cellStyle.Render(styledAmount(s.Cash))+
			cellStyle.Render(styledAmount(s.TotalAssets))+
			cellStyle.Render(styledAmount(s.TotalDebt))+
			cellStyle.Render(styledAmount(s.NetAssets)))
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, headerStyle.Render("Assumptions"))
	for _, a := range ModelAssumptions {
		fmt.Fprintln(&buf, mutedStyle.Render("  - "+a))
	}
	return buf.Bytes(), nil
}

func styledAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return negativeStyle.Render(FormatCurrency(d))
	}
	return FormatCurrency(d)
}

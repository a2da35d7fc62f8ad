package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/rpgo/household-planner/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func simulateCmd() *cobra.Command {
	var (
		runs       int
		seed       int64
		volatility string
		workers    int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <household.yaml>",
		Short: "Run a Monte Carlo simulation over growth and return rates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vol, err := decimal.NewFromString(volatility)
			if err != nil {
				return fmt.Errorf("invalid --volatility %q: %w", volatility, err)
			}
			h, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			res, err := newEngine().SimulateReturns(cmd.Context(), h, calculation.MonteCarloConfig{
				NumSimulations: runs,
				Seed:           seed,
				Volatility:     vol,
				Workers:        workers,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			w := cmd.OutOrStdout()
			label := lipgloss.NewStyle().Width(22)
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Monte Carlo: %d runs, volatility %s pts, seed %d", res.NumSimulations, res.Volatility, res.Seed)))
			fmt.Fprintln(w, label.Render("Success rate")+output.FormatPercentage(money.Percent(res.SuccessRate)))
			fmt.Fprintln(w, label.Render("Target reached")+output.FormatPercentage(money.Percent(res.TargetRate)))
			fmt.Fprintln(w, label.Render("Aborted projections")+fmt.Sprint(res.Aborted))
			p := res.PercentileRanges
			for _, row := range []struct {
				name  string
				value decimal.Decimal
			}{
				{"Final net assets P10", p.P10},
				{"Final net assets P25", p.P25},
				{"Final net assets P50", p.P50},
				{"Final net assets P75", p.P75},
				{"Final net assets P90", p.P90},
			} {
				fmt.Fprintln(w, label.Render(row.name)+amountStyle.Render(output.FormatCurrency(row.value)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 500, "number of simulations")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().StringVar(&volatility, "volatility", "5", "standard deviation of each rate shift, in percentage points")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent projections (default 10)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a summary")
	return cmd
}

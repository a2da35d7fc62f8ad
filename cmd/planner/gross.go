package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func grossCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gross <monthly-net>",
		Short: "Solve the monthly gross salary that yields a net salary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			net, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid net amount %q: %w", args[0], err)
			}
			sol, err := newEngine().SolveGross(net)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			label := lipgloss.NewStyle().Width(16)
			d := sol.Deductions
			fmt.Fprintln(w, headerStyle.Render("Net to gross"))
			for _, row := range []struct {
				name  string
				value decimal.Decimal
			}{
				{"Gross", sol.Gross},
				{"Pension", d.Pension},
				{"Health", d.Health},
				{"Long-term care", d.LongTermCare},
				{"Employment", d.Employment},
				{"Income tax", d.IncomeTax},
				{"Local tax", d.LocalTax},
				{"Net", d.Net},
			} {
				fmt.Fprintln(w, label.Render(row.name)+amountStyle.Render(output.FormatCurrency(row.value)))
			}
			fmt.Fprintf(w, "converged in %d iterations (residual %s)\n", sol.Iterations, sol.Residual.StringFixed(2))
			return nil
		},
	}
}

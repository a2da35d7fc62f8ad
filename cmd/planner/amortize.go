package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func amortizeCmd() *cobra.Command {
	var (
		amount, rate, debtType string
		grace, start, end      int
		asJSON                 bool
	)
	cmd := &cobra.Command{
		Use:   "amortize",
		Short: "Print a debt amortization schedule",
		Example: `  planner amortize --amount 300000000 --rate 4.5 --type equal --start 2025 --end 2054
  planner amortize --amount 100000000 --rate 5 --type grace --grace 3 --start 2025 --end 2034`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			terms := calculation.DebtTerms{
				StartYear:   start,
				EndYear:     end,
				Type:        domain.DebtType(debtType),
				GracePeriod: grace,
			}
			var err error
			if terms.Amount, err = decimal.NewFromString(amount); err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			if terms.InterestRate, err = decimal.NewFromString(rate); err != nil {
				return fmt.Errorf("invalid --rate %q: %w", rate, err)
			}

			rows, summary, err := newEngine().AmortizeDebt(terms)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"schedule": rows, "summary": summary})
			}
			printDebtSchedule(cmd.OutOrStdout(), rows, summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "principal borrowed")
	cmd.Flags().StringVar(&rate, "rate", "0", "annual interest rate in percent")
	cmd.Flags().StringVar(&debtType, "type", string(domain.DebtEqual), "repayment scheme (bullet, equal, principal, grace)")
	cmd.Flags().IntVar(&grace, "grace", 0, "interest-only years for the grace scheme")
	cmd.Flags().IntVar(&start, "start", 0, "first repayment year")
	cmd.Flags().IntVar(&end, "end", 0, "last repayment year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func printDebtSchedule(w io.Writer, rows []calculation.DebtYear, summary calculation.DebtSummary) {
	fmt.Fprintln(w, yearStyle.Render(headerStyle.Render("Year"))+
		amountStyle.Render(headerStyle.Render("Interest"))+
		amountStyle.Render(headerStyle.Render("Principal"))+
		amountStyle.Render(headerStyle.Render("Payment"))+
		amountStyle.Render(headerStyle.Render("Balance")))
	for _, r := range rows {
		fmt.Fprintln(w, yearStyle.Render(fmt.Sprint(r.Year))+
			amountStyle.Render(output.FormatCurrency(r.Interest))+
			amountStyle.Render(output.FormatCurrency(r.Principal))+
			amountStyle.Render(output.FormatCurrency(r.Payment))+
			amountStyle.Render(output.FormatCurrency(r.RemainingBalance)))
	}
	fmt.Fprintf(w, "\ntotal paid %s, of which interest %s\n",
		output.FormatCurrency(summary.TotalPaid), output.FormatCurrency(summary.TotalInterest))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

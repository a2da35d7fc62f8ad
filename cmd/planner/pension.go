package main

import (
	"fmt"
	"io"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/rpgo/household-planner/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func pensionCmd() *cobra.Command {
	var (
		p       domain.Pension
		pType   string
		amounts = map[string]*string{}
		asJSON  bool
	)
	decimalFlag := func(cmd *cobra.Command, name, usage string) {
		v := new(string)
		amounts[name] = v
		cmd.Flags().StringVar(v, name, "0", usage)
	}

	cmd := &cobra.Command{
		Use:   "pension",
		Short: "Print a pension accumulation and payout schedule",
		Example: `  planner pension --type national --monthly 1000000 --inflation 2 --start 2050 --end 2075
  planner pension --type retirement --contribution 300000 --contrib-start 2025 --contrib-end 2044 \
      --return 4 --payment-start 2045 --payment-years 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p.Title = "pension"
			p.Type = domain.PensionType(pType)
			targets := map[string]*decimal.Decimal{
				"monthly":          &p.MonthlyAmount,
				"inflation":        &p.InflationRate,
				"contribution":     &p.ContributionAmount,
				"return":           &p.ReturnRate,
				"current":          &p.CurrentAmount,
				"average-salary":   &p.AverageSalary,
				"years-of-service": &p.YearsOfService,
			}
			for name, dst := range targets {
				v, err := decimal.NewFromString(*amounts[name])
				if err != nil {
					return fmt.Errorf("invalid --%s %q: %w", name, *amounts[name], err)
				}
				*dst = v
			}

			rows, err := newEngine().PensionSchedule(p)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			printPensionSchedule(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&pType, "type", string(domain.PensionRetirement), "pension type (national, retirement, personal, severance)")
	decimalFlag(cmd, "monthly", "national: monthly amount")
	decimalFlag(cmd, "inflation", "national: yearly indexation in percent")
	cmd.Flags().IntVar(&p.StartYear, "start", 0, "national: first payment year")
	cmd.Flags().IntVar(&p.EndYear, "end", 0, "national: last payment year")

	decimalFlag(cmd, "contribution", "contribution per period")
	cmd.Flags().StringVar((*string)(&p.ContributionFrequency), "frequency", string(domain.FrequencyMonthly), "contribution frequency (monthly, yearly)")
	cmd.Flags().IntVar(&p.ContributionStartYear, "contrib-start", 0, "first contribution year")
	cmd.Flags().IntVar(&p.ContributionEndYear, "contrib-end", 0, "last contribution year")
	decimalFlag(cmd, "return", "annual return in percent")
	decimalFlag(cmd, "current", "opening balance")
	cmd.Flags().IntVar(&p.PaymentStartYear, "payment-start", 0, "first payout year")
	cmd.Flags().IntVar(&p.PaymentYears, "payment-years", 0, "number of payout years")
	cmd.Flags().BoolVar(&p.AnnuityDue, "due", false, "pay at the start of each year")

	decimalFlag(cmd, "average-salary", "severance: average monthly salary")
	decimalFlag(cmd, "years-of-service", "severance: years of service")
	cmd.Flags().BoolVar(&p.NoAdditionalContribution, "lump-sum", false, "severance: pay the accrued amount once")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printPensionSchedule(w io.Writer, rows []calculation.PensionYear) {
	fmt.Fprintln(w, yearStyle.Render(headerStyle.Render("Year"))+
		phaseStyle.Render(headerStyle.Render("Phase"))+
		amountStyle.Render(headerStyle.Render("Contribution"))+
		amountStyle.Render(headerStyle.Render("Payout"))+
		amountStyle.Render(headerStyle.Render("Balance")))
	for _, r := range rows {
		fmt.Fprintln(w, yearStyle.Render(fmt.Sprint(r.Year))+
			phaseStyle.Render(string(r.Phase))+
			amountStyle.Render(output.FormatCurrency(r.Contribution))+
			amountStyle.Render(output.FormatCurrency(r.Payout))+
			amountStyle.Render(output.FormatCurrency(r.Balance)))
	}
}
